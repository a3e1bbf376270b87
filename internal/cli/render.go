package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/pipeline"
	"github.com/matzehuels/slidekit/pkg/render/sink"
)

// layoutSuffix marks files written by the layout command.
const layoutSuffix = ".layout.json"

// renderCommand creates the render command. It accepts a diagram, which
// runs the whole pipeline, or a layout file, which skips straight to the
// layout gate.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      layoutFlags
		formatsStr string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "render [diagram.json|diagram.toml|diagram.layout.json]",
		Short: "Render a diagram to SVG, PDF, XLSX or JSON",
		Long: `Render a diagram to SVG, PDF, XLSX or JSON.

All three quality gates run: the definition and layout gates before
rendering, and the render gate on every output written.

Output files are named <input>.<format> unless -o is given. With several
formats, -o is used as the base name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatsStr != "" {
				formats, err := sink.ParseFormats(formatsStr)
				if err != nil {
					return err
				}
				flags.opts.Formats = formatNames(formats)
			}
			return c.runRender(cmd.Context(), cmd, args[0], flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, xlsx, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().BoolVar(&flags.opts.Chamfers, "chamfers", false, "draw connector corners as 45° cuts instead of arcs (svg)")
	cmd.Flags().IntVar(&flags.opts.PixelWidth, "pixel-width", 0, "svg width attribute in pixels (default: canvas width at 96 dpi)")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, flags layoutFlags, output string) error {
	opts := c.options(flags)
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spin.start()

	var res *pipeline.Result
	if strings.HasSuffix(input, layoutSuffix) {
		var l *diagram.LayoutResult
		if l, err = diagram.ReadLayoutFile(input); err == nil {
			res, err = runner.RenderLayout(ctx, l, opts)
		}
	} else {
		var spec diagram.Spec
		if spec, err = readSpec(input, cmd.InOrStdin()); err == nil {
			res, err = runner.Execute(ctx, spec, opts)
		}
	}
	if err != nil {
		spin.fail("Render failed")
	} else {
		spin.stop()
	}

	if res != nil {
		printReports(res.Reports, opts.Formats)
	}
	if err != nil {
		return err
	}

	paths := outputPaths(input, output, opts.Formats)
	for _, f := range opts.Formats {
		if err := os.WriteFile(paths[f], res.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
	}
	prog.rendered(res, opts.Formats)

	printSuccess("Render complete")
	for _, f := range opts.Formats {
		printFile(paths[f])
	}
	printStats(res.Stats, res.CacheInfo.RenderHit)
	return nil
}

// outputPaths names the file of every format.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = outputBase(input)
		if input == "-" {
			base = "diagram"
		}
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func formatNames(formats []sink.Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

func joinFormats(formats []sink.Format) string {
	return strings.Join(formatNames(formats), ", ")
}
