package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/minithon/internal/driver"
	"github.com/you-not-fish/minithon/internal/syntax"
)

func newTokensCmd(a *app) *cobra.Command {
	var whitespace bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a source file",
		Long: `Scan a source file and print every token with its position.

Unrecognized characters are reported after the table. With --stop-on-error
the scan ends at the first of them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			opts := driver.OptionsFromConfig(a.cfg)
			toks, lexErr := a.driver(opts).Tokenize(src)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s %-12s %-10s %s\n", "POSITION", "TOKEN", "CLASS", "LITERAL")
			fmt.Fprintf(out, "%-20s %-12s %-10s %s\n", "--------", "-----", "-----", "-------")
			for _, tok := range toks {
				if tok.Kind == syntax.WHITESPACE && !whitespace {
					continue
				}
				fmt.Fprintf(out, "%-20s %-12s %-10s %s\n", src.Position(tok.Pos), tok.Kind, tokenClass(tok.Kind), formatLiteral(tok.Lit))
			}

			if lexErr != nil {
				a.printer.Print(lexErr)
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&whitespace, "whitespace", false, "include WHITESPACE tokens")
	return cmd
}

// tokenClass names the lexical class of k.
func tokenClass(k syntax.Kind) string {
	switch {
	case k.IsKeyword():
		return "keyword"
	case k.IsOperator():
		return "operator"
	case k.IsLiteral():
		return "literal"
	case k.IsTrivia():
		return "trivia"
	case k == syntax.IDENTIFIER:
		return "name"
	case k == syntax.EOF:
		return "-"
	}
	return "punct"
}

var literalEscaper = strings.NewReplacer(
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
	`\`, `\\`,
	`"`, `\"`,
	"\x00", `\0`,
)

// formatLiteral quotes a lexeme with control characters made visible.
func formatLiteral(lit string) string {
	return `"` + literalEscaper.Replace(lit) + `"`
}
