package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/minithon/internal/driver"
)

// icgFlags are the code generation switches shared by build and repl.
type icgFlags struct {
	reuseRegisters  bool
	stackLoopLabels bool
	guardBranches   bool
}

func (f *icgFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.reuseRegisters, "reuse-registers", false, "restart register numbering after each block")
	cmd.Flags().BoolVar(&f.stackLoopLabels, "stack-loop-labels", false, "restore enclosing loop labels after a nested loop")
	cmd.Flags().BoolVar(&f.guardBranches, "guard-branches", false, "jump past branch bodies when no condition holds")
}

// options returns the configured pipeline options with explicitly set
// flags applied on top.
func (f *icgFlags) options(cmd *cobra.Command, a *app) driver.Options {
	opts := driver.OptionsFromConfig(a.cfg)
	if cmd.Flags().Changed("reuse-registers") {
		opts.ICG.ReuseRegisters = f.reuseRegisters
	}
	if cmd.Flags().Changed("stack-loop-labels") {
		opts.ICG.StackLoopLabels = f.stackLoopLabels
	}
	if cmd.Flags().Changed("guard-branches") {
		opts.ICG.GuardBranches = f.guardBranches
	}
	return opts
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		output string
		flags  icgFlags
	)

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a source file to three-address code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			res, err := a.driver(flags.options(cmd, a)).Compile(src)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), res.Code)
				return err
			}
			if err := os.WriteFile(output, []byte(res.Code), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			a.logger.Info("wrote output", "file", output, "bytes", len(res.Code))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	flags.register(cmd)
	return cmd
}
