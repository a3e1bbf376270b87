package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/pipeline"
	"github.com/matzehuels/slidekit/pkg/render/nodelink"
)

// dotCommand prints the logical diagram as Graphviz DOT, a quick preview
// that ignores slide placement.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		flags    layoutFlags
		output   string
		asSVG    bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot [diagram.json|diagram.toml]",
		Short: "Print a Graphviz preview of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := readSpec(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			d, err := pipeline.Build(spec, c.options(flags))
			if err != nil {
				return err
			}
			out := []byte(nodelink.ToDOT(d, nodelink.Options{Detailed: detailed}))

			if asSVG {
				if !nodelink.Available(cmd.Context()) {
					return errors.New(errors.ErrCodeUnsupported, "graphviz is not available")
				}
				if out, err = nodelink.RenderSVG(cmd.Context(), string(out)); err != nil {
					return fmt.Errorf("render dot: %w", err)
				}
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.opts.Strategy, "layout", "l", "", "layout strategy override (sets rank direction)")
	cmd.Flags().StringVar(&flags.opts.Palette, "palette", "", "palette override")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&asSVG, "svg", false, "render the preview to SVG with Graphviz")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add shape kind and group to labels")
	return cmd
}
