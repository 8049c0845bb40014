// Package cmd implements the minithonc subcommands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/minithon/internal/config"
	"github.com/you-not-fish/minithon/internal/diag"
	"github.com/you-not-fish/minithon/internal/driver"
	"github.com/you-not-fish/minithon/internal/logging"
	"github.com/you-not-fish/minithon/internal/syntax"
)

// errReported is returned by commands that already printed their errors.
var errReported = errors.New("errors reported")

// app holds the state shared by all subcommands of one invocation.
type app struct {
	cfgFile     string
	verbose     bool
	noColor     bool
	stopOnError bool

	cfg     *config.Config
	logger  *slog.Logger
	printer *diag.Printer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minithonc",
		Short: "minithon compiler front end",
		Long: `minithonc turns minithon source into labeled three-address code.

Stages:
  tokens   - lexical analysis
  ast      - recursive-descent parsing
  build    - intermediate code generation`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (TOML or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log pipeline stages")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored diagnostics")
	rootCmd.PersistentFlags().BoolVar(&a.stopOnError, "stop-on-error", false, "stop at the first unrecognized token")

	rootCmd.AddCommand(
		newTokensCmd(a),
		newASTCmd(a),
		newBuildCmd(a),
		newReplCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the configuration and applies the global flags on top of it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.cfgFile != "" {
		var err error
		if cfg, err = config.Load(a.cfgFile); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("stop-on-error") {
		cfg.Lexer.StopOnError = a.stopOnError
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if a.noColor {
		cfg.Output.Color = "never"
	}
	a.cfg = cfg

	mode, err := diag.ParseMode(cfg.Output.Color)
	if err != nil {
		return err
	}
	a.printer = diag.NewPrinter(cmd.ErrOrStderr(), mode)
	a.logger = logging.New(logging.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}, cmd.ErrOrStderr())
	return nil
}

// driver returns a pipeline driver for the configured options.
func (a *app) driver(opts driver.Options) *driver.Driver {
	return driver.New(opts, a.logger)
}

// readSource reads the named file, or standard input for "-".
func readSource(cmd *cobra.Command, name string) (*syntax.Source, error) {
	if name == "-" {
		return syntax.ReadSource("<stdin>", cmd.InOrStdin())
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return syntax.ReadSource(name, f)
}

// run executes minithonc with args and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		if a.printer != nil {
			a.printer.Print(err)
		} else {
			fmt.Fprintln(stderr, "error:", err)
		}
	}
	return 1
}

// Execute runs the root command on the process arguments.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
