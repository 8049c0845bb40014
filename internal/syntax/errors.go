package syntax

import (
	"fmt"
	"strings"
)

// Diagnostic is the presentable form of an error: the message, the
// offending source line with a caret underline, and the line number.
type Diagnostic struct {
	Msg      string
	Pos      Pos
	Position Position
	Token    string // offending text, up to the next blank
	Line     string // source line containing Pos
	Caret    string // blanks up to Pos, then one ^ per byte of Token
}

// String renders the diagnostic as plain text.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Msg)
	if d.Token != "" {
		fmt.Fprintf(&b, " %q", d.Token)
	}
	fmt.Fprintf(&b, " at line %d:\n%s\n%s", d.Position.Line(), d.Line, d.Caret)
	return b.String()
}

// Diagnosed is implemented by every error that carries a Diagnostic.
type Diagnosed interface {
	error
	Diagnostic() Diagnostic
}

// LexError reports an unrecognized span of source text.
type LexError struct {
	Diag Diagnostic
	Len  int // length of the unrecognized span in bytes
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Diag.Position, e.Diag.Msg, e.Diag.Token)
}

// Diagnostic returns the diagnostic of e.
func (e *LexError) Diagnostic() Diagnostic { return e.Diag }

// ErrorList is the list of lexical errors collected during a
// non-fail-fast tokenization.
type ErrorList []*LexError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns an error equivalent to this list, or nil if the list is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// SyntaxError represents a syntax error.
type SyntaxError struct {
	Diag Diagnostic
}

func (e *SyntaxError) Error() string {
	return e.Diag.Position.String() + ": " + e.Diag.Msg
}

// Diagnostic returns the diagnostic of e.
func (e *SyntaxError) Diagnostic() Diagnostic { return e.Diag }
