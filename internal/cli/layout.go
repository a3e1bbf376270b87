package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slidekit/pkg/diagram"
)

// layoutCommand creates the layout command: diagram in, placed layout out.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.toml]",
		Short: "Place a diagram on the slide canvas",
		Long: `Place a diagram on the slide canvas.

The diagram is checked by the definition gate, laid out with its strategy
and checked again by the layout gate. The placed result is written as
<diagram>.layout.json and can be rendered later with 'slidekit render'.

Use "-" to read a JSON diagram from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args[0], flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, input string, flags layoutFlags, output string) error {
	spec, err := readSpec(input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Layout(ctx, spec, c.options(flags))
	if res != nil {
		printReports(res.Reports, nil)
	}
	if err != nil {
		return err
	}

	if output == "" {
		output = outputBase(input) + ".layout.json"
		if input == "-" {
			output = "diagram.layout.json"
		}
	}
	if err := diagram.WriteLayoutFile(res.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.laidOut(res)

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats, res.CacheInfo.LayoutHit)
	printNextStep("Render", appName+" render "+output)
	return nil
}
