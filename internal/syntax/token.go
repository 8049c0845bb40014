// Package syntax implements lexical and syntactic analysis for the minithon language.
package syntax

import "fmt"

// Kind represents the type of a lexical token.
type Kind uint

const (
	ILLEGAL Kind = iota // invalid token, never produced by the lexer

	COMMENT // # ...

	// Keywords
	IF
	ELSE
	ELIF
	WHILE
	BREAK
	CONTINUE

	// Arithmetic operators
	ADD      // +
	SUBTRACT // -
	MULTIPLY // *
	DIVIDE   // /
	MODULUS  // %

	// Comparison operators, two-character forms first
	EQUAL                 // ==
	GREATER_THAN_OR_EQUAL // >=
	LESS_THAN_OR_EQUAL    // <=
	NOT_EQUAL             // !=
	GREATER_THAN          // >
	LESS_THAN             // <
	ASSIGN                // =

	// Logical operators
	AND // and
	OR  // or
	NOT // not

	// Literals
	BOOL_TRUE  // True
	BOOL_FALSE // False
	FLOAT      // 3.14
	INTEGER    // 42
	STRING     // "abc" or 'abc'

	// Punctuation
	LPAREN     // (
	RPAREN     // )
	COLON      // :
	NEWLINE    // \n
	WHITESPACE // one blank character

	PASS
	IDENTIFIER
	EOF

	kindCount
)

// kindNames maps kinds to their string representation.
var kindNames = [...]string{
	ILLEGAL: "ILLEGAL",

	COMMENT: "COMMENT",

	IF:       "IF",
	ELSE:     "ELSE",
	ELIF:     "ELIF",
	WHILE:    "WHILE",
	BREAK:    "BREAK",
	CONTINUE: "CONTINUE",

	ADD:      "ADD",
	SUBTRACT: "SUBTRACT",
	MULTIPLY: "MULTIPLY",
	DIVIDE:   "DIVIDE",
	MODULUS:  "MODULUS",

	EQUAL:                 "EQUAL",
	GREATER_THAN_OR_EQUAL: "GREATER_THAN_OR_EQUAL",
	LESS_THAN_OR_EQUAL:    "LESS_THAN_OR_EQUAL",
	NOT_EQUAL:             "NOT_EQUAL",
	GREATER_THAN:          "GREATER_THAN",
	LESS_THAN:             "LESS_THAN",
	ASSIGN:                "ASSIGN",

	AND: "AND",
	OR:  "OR",
	NOT: "NOT",

	BOOL_TRUE:  "BOOL_TRUE",
	BOOL_FALSE: "BOOL_FALSE",
	FLOAT:      "FLOAT",
	INTEGER:    "INTEGER",
	STRING:     "STRING",

	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COLON:      "COLON",
	NEWLINE:    "NEWLINE",
	WHITESPACE: "WHITESPACE",

	PASS:       "PASS",
	IDENTIFIER: "IDENTIFIER",
	EOF:        "EOF",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsKeyword reports whether k is a statement keyword.
func (k Kind) IsKeyword() bool {
	return k >= IF && k <= CONTINUE || k == PASS
}

// IsOperator reports whether k is a binary operator or the assignment operator.
func (k Kind) IsOperator() bool {
	return k >= ADD && k <= NOT
}

// IsLiteral reports whether k is a boolean, numeric or string literal.
func (k Kind) IsLiteral() bool {
	return k >= BOOL_TRUE && k <= STRING
}

// IsTrivia reports whether k carries no syntactic meaning of its own.
// The parser skips such tokens while matching.
func (k Kind) IsTrivia() bool {
	return k == COMMENT || k == NEWLINE || k == WHITESPACE
}

// Token is a classified lexeme.
type Token struct {
	Kind Kind
	Lit  string // lexeme, exactly as in the source
	Pos  Pos    // byte offset of the first character
}

// End returns the offset immediately after the token.
func (t Token) End() Pos {
	return t.Pos + Pos(len(t.Lit))
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Lit)
}
