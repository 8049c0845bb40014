package syntax

import (
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// rules is the ordered token table. The first rule matching at the current
// offset wins, even when a later rule would match a longer span, so
// two-character operators precede their one-character prefixes, floats
// precede integers and keywords precede identifiers.
var rules = []lexer.Rule{
	{Name: "COMMENT", Pattern: `#[^\n]*`},

	{Name: "IF", Pattern: `\bif\b`},
	{Name: "ELSE", Pattern: `\belse\b`},
	{Name: "ELIF", Pattern: `\belif\b`},
	{Name: "WHILE", Pattern: `\bwhile\b`},
	{Name: "BREAK", Pattern: `\bbreak\b`},
	{Name: "CONTINUE", Pattern: `\bcontinue\b`},

	{Name: "ADD", Pattern: `\+`},
	{Name: "SUBTRACT", Pattern: `-`},
	{Name: "MULTIPLY", Pattern: `\*`},
	{Name: "DIVIDE", Pattern: `/`},
	{Name: "MODULUS", Pattern: `%`},

	{Name: "EQUAL", Pattern: `==`},
	{Name: "GREATER_THAN_OR_EQUAL", Pattern: `>=`},
	{Name: "LESS_THAN_OR_EQUAL", Pattern: `<=`},
	{Name: "NOT_EQUAL", Pattern: `!=`},
	{Name: "GREATER_THAN", Pattern: `>`},
	{Name: "LESS_THAN", Pattern: `<`},
	{Name: "ASSIGN", Pattern: `=`},

	{Name: "AND", Pattern: `\band\b`},
	{Name: "OR", Pattern: `\bor\b`},
	{Name: "NOT", Pattern: `\bnot\b`},

	{Name: "BOOL_TRUE", Pattern: `\bTrue\b`},
	{Name: "BOOL_FALSE", Pattern: `\bFalse\b`},
	{Name: "FLOAT", Pattern: `\d+\.\d+`},
	{Name: "INTEGER", Pattern: `\d+`},
	{Name: "STRING", Pattern: `"[^"\n]*"|'[^'\n]*'`},

	{Name: "LPAREN", Pattern: `\(`},
	{Name: "RPAREN", Pattern: `\)`},
	{Name: "COLON", Pattern: `:`},
	{Name: "NEWLINE", Pattern: `\n`},
	{Name: "WHITESPACE", Pattern: `[\t\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}]`},

	{Name: "PASS", Pattern: `\bpass\b`},
	{Name: "IDENTIFIER", Pattern: `[a-zA-Z_]\w*`},
}

var (
	definition  = lexer.MustStateful(lexer.Rules{"Root": rules})
	symbolKinds = kindsBySymbol(definition.Symbols())
)

// kindsBySymbol maps the rule token types back to kinds by name.
func kindsBySymbol(symbols map[string]lexer.TokenType) map[lexer.TokenType]Kind {
	m := make(map[lexer.TokenType]Kind, len(symbols))
	for k := ILLEGAL + 1; k < kindCount; k++ {
		if t, ok := symbols[k.String()]; ok {
			m[t] = k
		}
	}
	m[lexer.EOF] = EOF
	return m
}

// scanner drives the rule table over a Source. After an unrecognized span
// it restarts the rule lexer just past the span.
type scanner struct {
	src         *Source
	stopOnError bool

	lex  lexer.Lexer
	base int // offset at which lex was started
	pos  int // end of the last token

	toks []Token
	errs ErrorList
}

// Tokenize splits the source into tokens. Comments, whitespace and
// newlines are kept; the last token is always EOF.
//
// With stopOnError set, the first unrecognized span is returned as a
// *LexError and no tokens are returned. Otherwise scanning continues past
// every bad span; the tokens are returned together with an ErrorList of all
// collected errors (nil if there were none).
func Tokenize(src *Source, stopOnError bool) ([]Token, error) {
	s := &scanner{src: src, stopOnError: stopOnError}
	if err := s.restart(0); err != nil {
		return nil, err
	}

	for {
		t, err := s.lex.Next()
		if err != nil {
			if err := s.skip(); err != nil {
				return nil, err
			}
			continue
		}

		kind := symbolKinds[t.Type]
		if kind == EOF {
			s.toks = append(s.toks, Token{Kind: EOF, Pos: Pos(s.src.Len())})
			break
		}

		tok := Token{Kind: kind, Lit: t.Value, Pos: Pos(s.base + t.Pos.Offset)}
		if isWord(kind) && s.followsWordChar(int(tok.Pos)) {
			// the rule's leading \b cannot see the text before the token
			tok.Kind = IDENTIFIER
		}
		s.toks = append(s.toks, tok)
		s.pos = int(tok.End())
	}

	return s.toks, s.errs.Err()
}

// isWord reports whether k is matched only as a whole word.
func isWord(k Kind) bool {
	return k.IsKeyword() || k >= AND && k <= BOOL_FALSE
}

// followsWordChar reports whether the rune before off is a letter, a digit
// or an underscore.
func (s *scanner) followsWordChar(off int) bool {
	if off == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s.src.Text()[:off])
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// restart starts a fresh rule lexer at off.
func (s *scanner) restart(off int) error {
	lex, err := definition.LexString(s.src.Name(), s.src.Text()[off:])
	if err != nil {
		return err
	}
	s.lex = lex
	s.base = off
	s.pos = off
	return nil
}

// skip handles an unrecognized span starting at s.pos. The span extends
// rune by rune until some rule matches again or the input ends.
func (s *scanner) skip() error {
	start := s.pos
	end := s.next(start)
	for end < s.src.Len() && !s.matchesAt(end) {
		end = s.next(end)
	}

	lerr := &LexError{
		Diag: s.src.Diagnose(Pos(start), "Unrecognized token"),
		Len:  end - start,
	}
	if s.stopOnError {
		return lerr
	}
	s.errs = append(s.errs, lerr)
	return s.restart(end)
}

// next returns the offset of the rune following the one at off.
func (s *scanner) next(off int) int {
	_, w := utf8.DecodeRuneInString(s.src.Text()[off:])
	if w == 0 {
		w = 1
	}
	return off + w
}

// matchesAt reports whether any rule matches at off.
func (s *scanner) matchesAt(off int) bool {
	lex, err := definition.LexString(s.src.Name(), s.src.Text()[off:])
	if err != nil {
		return false
	}
	_, err = lex.Next()
	return err == nil
}
