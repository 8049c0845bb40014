// Package diag renders compiler diagnostics for the terminal.
package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/you-not-fish/minithon/internal/syntax"
)

// Colors
var (
	colorError  = lipgloss.Color("#EF4444")
	colorAccent = lipgloss.Color("#F59E0B")
	colorMuted  = lipgloss.Color("#6B7280")
)

// Mode selects when output is colored.
type Mode int

const (
	Auto   Mode = iota // color when writing to a terminal
	Always             // always color
	Never              // never color
)

// ParseMode parses "auto", "always" or "never".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "always":
		return Always, nil
	case "never":
		return Never, nil
	}
	return Auto, fmt.Errorf("invalid color mode: %q", s)
}

// Printer writes diagnostics to a writer.
type Printer struct {
	w     io.Writer
	color bool

	msgStyle   lipgloss.Style
	tokenStyle lipgloss.Style
	lineStyle  lipgloss.Style
	caretStyle lipgloss.Style
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, mode Mode) *Printer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case Always:
		r.SetColorProfile(termenv.ANSI256)
	case Never:
		r.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		w:     w,
		color: r.ColorProfile() != termenv.Ascii,

		msgStyle: r.NewStyle().
			Bold(true).
			Foreground(colorError),
		tokenStyle: r.NewStyle().
			Foreground(colorAccent),
		lineStyle: r.NewStyle().
			Foreground(colorMuted).
			TabWidth(lipgloss.NoTabConversion),
		caretStyle: r.NewStyle().
			Bold(true).
			Foreground(colorError),
	}
}

// Render formats d. Without color the result is d.String().
func (p *Printer) Render(d syntax.Diagnostic) string {
	if !p.color {
		return d.String()
	}

	var b strings.Builder
	b.WriteString(p.msgStyle.Render(d.Msg))
	if d.Token != "" {
		b.WriteString(" " + p.tokenStyle.Render(fmt.Sprintf("%q", d.Token)))
	}
	fmt.Fprintf(&b, " at line %d:\n", d.Position.Line())
	if d.Line != "" {
		b.WriteString(p.lineStyle.Render(d.Line))
	}
	b.WriteString("\n" + p.caretStyle.Render(d.Caret))
	return b.String()
}

// Print writes err followed by a newline. Errors carrying diagnostics are
// rendered with their source excerpt; a list of lexical errors is printed
// one diagnostic after another.
func (p *Printer) Print(err error) {
	if err == nil {
		return
	}

	var list syntax.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			fmt.Fprintln(p.w, p.Render(e.Diagnostic()))
		}
		return
	}

	var d syntax.Diagnosed
	if errors.As(err, &d) {
		fmt.Fprintln(p.w, p.Render(d.Diagnostic()))
		return
	}

	if p.color {
		fmt.Fprintln(p.w, p.msgStyle.Render("error:"), err)
		return
	}
	fmt.Fprintln(p.w, "error:", err)
}
