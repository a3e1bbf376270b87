package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// validateCommand runs the definition and layout gates without writing
// anything.
func (c *CLI) validateCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "validate [diagram.json|diagram.toml]",
		Short: "Check a diagram against the definition and layout gates",
		Long: `Check a diagram against the definition and layout gates.

Every finding is printed. The command fails when a gate finds a fatal
problem (a duplicate or dangling id), or on any warning with --strict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), cmd, args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, cmd *cobra.Command, input string, flags layoutFlags) error {
	spec, err := readSpec(input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Layout(ctx, spec, c.options(flags))
	if res != nil {
		printReports(res.Reports, nil)
	}
	return err
}
