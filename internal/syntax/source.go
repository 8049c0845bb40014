package syntax

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Pos is a byte offset into the source text.
type Pos int

// Position is an offset resolved to a 1-based line and column.
type Position struct {
	filename string
	line     uint32
	col      uint32 // byte offset in line
}

// String returns "filename:line:col", or "line:col" without a filename.
func (p Position) String() string {
	if p.filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.filename, p.line, p.col)
	}
	return fmt.Sprintf("%d:%d", p.line, p.col)
}

// Line returns the 1-based line number.
func (p Position) Line() uint32 { return p.line }

// Source is a source text with line bookkeeping.
// It maps byte offsets to line/column positions and builds diagnostics.
type Source struct {
	name  string
	text  string
	lines []int // offset of the first byte of each line
}

// NewSource creates a Source for text. The name is used in positions only.
func NewSource(name, text string) *Source {
	s := &Source{name: name, text: text, lines: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
	return s
}

// ReadSource reads the entire content of r into a new Source.
func ReadSource(name string, r io.Reader) (*Source, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewSource(name, string(buf)), nil
}

// Name returns the source name.
func (s *Source) Name() string { return s.name }

// Text returns the complete source text.
func (s *Source) Text() string { return s.text }

// Len returns the length of the source in bytes.
func (s *Source) Len() int { return len(s.text) }

// Position resolves an offset. Offsets past the end clamp to the end.
func (s *Source) Position(p Pos) Position {
	off := s.clamp(p)
	// index of the last line starting at or before off
	i := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > off }) - 1
	return Position{filename: s.name, line: uint32(i + 1), col: uint32(off - s.lines[i] + 1)}
}

// Line returns the text of the line containing p, without its newline.
func (s *Source) Line(p Pos) string {
	start, end := s.lineBounds(s.clamp(p))
	return s.text[start:end]
}

func (s *Source) clamp(p Pos) int {
	off := int(p)
	if off < 0 {
		return 0
	}
	if off > len(s.text) {
		return len(s.text)
	}
	return off
}

func (s *Source) lineBounds(off int) (start, end int) {
	start = strings.LastIndexByte(s.text[:off], '\n') + 1
	end = len(s.text)
	if i := strings.IndexByte(s.text[off:], '\n'); i >= 0 {
		end = off + i
	}
	return start, end
}

// Diagnose builds the diagnostic for msg reported at p. The offending token
// is the text from p up to the next blank on the same line.
func (s *Source) Diagnose(p Pos, msg string) Diagnostic {
	off := s.clamp(p)
	start, end := s.lineBounds(off)
	line := s.text[start:end]
	col := off - start

	tok, _, _ := strings.Cut(line[col:], " ")
	width := len(tok)
	if width == 0 {
		width = 1
	}

	return Diagnostic{
		Msg:      msg,
		Pos:      Pos(off),
		Position: s.Position(Pos(off)),
		Token:    tok,
		Line:     line,
		Caret:    strings.Repeat(" ", col) + strings.Repeat("^", width),
	}
}
