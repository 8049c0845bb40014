package cmd

import (
	"fmt"
	"io"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/you-not-fish/minithon/internal/driver"
	"github.com/you-not-fish/minithon/internal/syntax"
)

// dumpOptions prints AST nodes including their unexported positions.
var dumpOptions = litter.Options{
	StripPackageNames: true,
	Separator:         " ",
}

func newASTCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Parse a source file and print its syntax tree",
		Long: `Parse a source file and print its syntax tree.

Formats:
  text  - indented tree with byte offsets
  json  - JSON document
  dump  - Go value dump of the node structs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			res, err := a.driver(driver.OptionsFromConfig(a.cfg)).Parse(src)
			if err != nil {
				return err
			}
			return printAST(cmd.OutOrStdout(), res.Program, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or dump")
	return cmd
}

func printAST(w io.Writer, prog *syntax.Program, format string) error {
	switch format {
	case "text":
		syntax.Fprint(w, prog)
		return nil
	case "json":
		return syntax.FprintJSON(w, prog)
	case "dump":
		_, err := fmt.Fprintln(w, dumpOptions.Sdump(prog))
		return err
	}
	return fmt.Errorf("unknown AST format %q", format)
}
