package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
// Positions are printed as byte offsets.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) print(node Node) {
	if isNil(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		p.printf("PROGRAM\n")
		p.indent++
		if n.Block != nil {
			p.print(n.Block)
		}
		p.indent--

	case *Block:
		p.printf("BLOCK #%d @%d indent=%d\n", n.ID, n.pos, n.Indent)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *Assignment:
		p.printf("ASSIGN_STMT @%d %s\n", n.pos, n.Name.Lit)
		p.indent++
		p.print(n.Value)
		p.indent--

	case *GenericStmt:
		p.printf("%s @%d\n", n.Tok.Kind, n.pos)

	case *ControlFlowBlock:
		if n.Cond != nil {
			p.printf("%s @%d %s:\n", n.Keyword.Lit, n.pos, n.Cond)
		} else {
			p.printf("%s @%d:\n", n.Keyword.Lit, n.pos)
		}
		p.indent++
		if n.Cond != nil {
			p.printf("Cond:\n")
			p.indent++
			p.print(n.Cond)
			p.indent--
		}
		p.print(n.Body)
		p.indent--

	case *IfChain:
		p.printf("IF_STMT_BLOCK @%d\n", n.pos)
		p.indent++
		p.print(n.If)
		for _, e := range n.Elifs {
			p.print(e)
		}
		if n.Else != nil {
			p.print(n.Else)
		}
		p.indent--

	case *Expr:
		if !n.IsBinary() {
			p.print(n.Left)
			return
		}
		p.printf("BinaryOp @%d %s\n", n.pos, n.Op.Lit)
		p.indent++
		p.printf("X:\n")
		p.indent++
		p.print(n.Left)
		p.indent--
		p.printf("Y:\n")
		p.indent++
		p.print(n.Right)
		p.indent--
		p.indent--

	case *Atom:
		p.printf("%s @%d %s\n", n.Tok.Kind, n.pos, n.Tok.Lit)

	default:
		p.printf("%T\n", node)
	}
}
