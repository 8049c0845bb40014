package syntax

import "strings"

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 2 main classes of nodes: Operands (the parts of an expression) and
// Statements. Blocks and the Program hold statements. All nodes implement the
// Node interface; the variant sets are closed by unexported marker methods.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // offset of the first token belonging to the node
	aNode()   // marker method to restrict implementations to this package
}

// Operand is the interface for the operands of an expression: an *Atom
// or a nested *Expr.
type Operand interface {
	Node
	aOperand()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

// stmt is embedded in all statement nodes.
type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Program and blocks

// Program is the root of the tree.
type Program struct {
	node
	Block *Block // top-level block, nil for an empty program
}

// Block is a run of statements sharing one indentation depth.
type Block struct {
	node
	Stmts  []Stmt // never empty
	ID     int    // assigned in parse order, starting at 1
	Indent int    // indentation depth in whitespace characters
}

// ----------------------------------------------------------------------------
// Expressions

// Atom is a leaf operand: a literal or an identifier.
type Atom struct {
	node
	Tok Token
}

func (*Atom) aOperand() {}

// Expr is an expression. A leaf expression holds only Left; a binary
// expression has both Op and Right set.
type Expr struct {
	node
	Left  Operand
	Op    *Token // nil for a leaf
	Right Operand
}

func (*Expr) aOperand() {}

// IsBinary reports whether x applies an operator.
func (x *Expr) IsBinary() bool {
	return x.Op != nil && x.Right != nil
}

// String returns the expression as a flat token sequence, without the
// grouping parentheses of nested operands.
func (x *Expr) String() string {
	var b strings.Builder
	writeFlat(&b, x)
	return b.String()
}

func writeFlat(b *strings.Builder, op Operand) {
	switch op := op.(type) {
	case *Atom:
		b.WriteString(op.Tok.Lit)
	case *Expr:
		writeFlat(b, op.Left)
		if op.IsBinary() {
			b.WriteString(" " + op.Op.Lit + " ")
			writeFlat(b, op.Right)
		}
	}
}

// ExprString returns op with every binary operation parenthesized,
// making the grouping chosen by the parser explicit: "(a + (b * c))".
func ExprString(op Operand) string {
	switch op := op.(type) {
	case *Atom:
		return op.Tok.Lit
	case *Expr:
		if !op.IsBinary() {
			return ExprString(op.Left)
		}
		return "(" + ExprString(op.Left) + " " + op.Op.Lit + " " + ExprString(op.Right) + ")"
	}
	return "<nil>"
}

// ----------------------------------------------------------------------------
// Statements

// Assignment represents: Name = Value
type Assignment struct {
	stmt
	Name  Token // IDENTIFIER
	Value *Expr
}

// GenericStmt is a single-token statement: break, continue, pass or a comment.
type GenericStmt struct {
	stmt
	Tok Token
}

// Kind returns the kind of the statement's token.
func (s *GenericStmt) Kind() Kind { return s.Tok.Kind }

// ControlFlowBlock represents a keyword, an optional condition and a body:
// while, if and elif blocks, and the condition-less else block.
type ControlFlowBlock struct {
	stmt
	Keyword Token
	Cond    *Expr // nil only for else
	Body    *Block
}

// IfChain represents an if block with its elif and else blocks.
type IfChain struct {
	stmt
	If    *ControlFlowBlock
	Elifs []*ControlFlowBlock
	Else  *ControlFlowBlock // nil if absent
}
