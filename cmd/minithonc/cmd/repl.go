package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/you-not-fish/minithon/internal/diag"
	"github.com/you-not-fish/minithon/internal/driver"
	"github.com/you-not-fish/minithon/internal/syntax"
)

const (
	promptMain  = ">>> "
	promptCont  = "... "
	historyFile = ".minithon_history"
	replName    = "<repl>"

	relistMarker = "--- full listing ---"
)

const replHelp = `Enter statements to see the code generated for them.
A line ending in ':' opens a block; finish it with an empty line.

Commands:
  :code   print all code generated in this session
  :reset  forget every statement entered so far
  :quit   leave the REPL`

func newReplCmd(a *app) *cobra.Command {
	var flags icgFlags

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Compile statements interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "minithonc %s REPL. Type :help for help.\n", Version)

			home, _ := os.UserHomeDir()
			histPath := filepath.Join(home, historyFile)

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if f, err := os.Open(histPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			s := newSession(a.driver(flags.options(cmd, a)), out)
			replLoop(ln, s, a.printer)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// prompter reads one line of input.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// historian records accepted input.
type historian interface {
	AppendHistory(item string)
}

// session accumulates the statements entered in a REPL. The whole text is
// recompiled on every chunk so that earlier bindings stay visible.
type session struct {
	drv  *driver.Driver
	out  io.Writer
	text string
	code string
}

func newSession(drv *driver.Driver, out io.Writer) *session {
	return &session{drv: drv, out: out}
}

// eval compiles chunk after the session text and prints the instructions
// it added. A chunk continuing an earlier if chain rewrites code that was
// already printed; the whole listing is printed again after relistMarker.
// A failing chunk leaves the session unchanged.
func (s *session) eval(chunk string) error {
	text := s.text + chunk
	res, err := s.drv.Compile(syntax.NewSource(replName, text))
	if err != nil {
		return err
	}
	s.text = text
	if strings.HasPrefix(res.Code, s.code) {
		fmt.Fprint(s.out, res.Code[len(s.code):])
	} else {
		fmt.Fprintln(s.out, relistMarker)
		fmt.Fprint(s.out, res.Code)
	}
	s.code = res.Code
	return nil
}

func (s *session) reset() {
	s.text = ""
	s.code = ""
}

// command runs a colon command and reports whether the REPL should exit.
func (s *session) command(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.reset()
	case ":code":
		fmt.Fprint(s.out, s.code)
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for help.")
	}
	return false
}

func replLoop(p prompter, s *session, pr *diag.Printer) {
	for {
		chunk, ok := readChunk(p)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}

		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed) {
				return
			}
			continue
		}

		if err := s.eval(chunk); err != nil {
			pr.Print(err)
			continue
		}
		if h, ok := p.(historian); ok {
			for _, line := range strings.Split(strings.TrimRight(chunk, "\n"), "\n") {
				h.AppendHistory(line)
			}
		}
	}
}

// readChunk reads one statement. A first line ending in ':' starts a block
// that continues until an empty line. The result is false at end of input.
func readChunk(p prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending chunk.
			return "", true
		}

		if b.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, ":") {
				return line, true
			}
			b.WriteString(line)
			b.WriteByte('\n')
			if !strings.HasSuffix(trimmed, ":") {
				return b.String(), true
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
