package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/slidekit/pkg/api"
	"github.com/matzehuels/slidekit/pkg/pipeline"
)

const apiCacheScope = "api:"

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newScopedRunner(ctx, noCache, apiCacheScope)
			if err != nil {
				return err
			}
			defer runner.Close()

			caps := runner.Capabilities(ctx)
			printKeyValue("address", addr)
			printKeyValue("formats", joinFormats(caps.Formats))
			if !caps.Graphviz {
				printWarning("graphviz unavailable, /v1/dot?svg=1 is disabled")
			}

			srv := api.New(runner,
				api.WithLogger(c.Logger),
				api.WithDefaults(pipeline.Options{
					Palette: c.Config.Palette,
					Strict:  c.Config.Strict,
					Formats: c.Config.Formats,
				}))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+`":8080"`+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
