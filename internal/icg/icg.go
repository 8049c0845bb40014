// Package icg generates three-address intermediate code from a minithon
// syntax tree.
//
// Values live in pseudo-registers r1, r2, ... and control flow is expressed
// with labels L1, L2, ... and jumps:
//
//	r3 = 42
//	r4 = r1 + r3
//	r1 = r4
//	L2:
//	goto L2
//	if (r4) goto L2
//	if (!r4) goto L2
//
// Every read of a variable copies its register into a fresh one. Bindings
// made inside a block are dropped when the block ends.
package icg

import (
	"fmt"
	"io"
	"strings"

	"github.com/you-not-fish/minithon/internal/syntax"
)

// Options controls code generation.
type Options struct {
	// ReuseRegisters resets the register counter at the end of every block,
	// so sibling blocks reuse the same register numbers.
	ReuseRegisters bool

	// StackLoopLabels restores the enclosing loop's break and continue
	// targets after a nested while loop. When unset the innermost loop
	// entered last stays the target until another loop is entered.
	StackLoopLabels bool

	// GuardBranches emits a jump past the branch bodies of an if chain when
	// no condition holds: to the else body if there is one, else to the
	// exit. When unset control falls through into the first branch.
	GuardBranches bool
}

// generator holds the state of one code generation run.
type generator struct {
	e    *emitter
	src  *syntax.Source
	opts Options

	regs   int // last register allocated
	labels int // last label allocated

	vars map[string]int // identifier -> bound register

	continueLabel int // 0 outside of any loop
	breakLabel    int
}

// Generate returns the intermediate code for prog, one instruction per
// line. src is the source prog was parsed from; it is used for diagnostics.
// An empty program yields the empty string.
func Generate(prog *syntax.Program, src *syntax.Source, opts Options) (string, error) {
	var b strings.Builder
	if err := Fprint(&b, prog, src, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Fprint writes the intermediate code for prog to w. On error the output
// written so far is incomplete.
func Fprint(w io.Writer, prog *syntax.Program, src *syntax.Source, opts Options) error {
	if src == nil {
		src = syntax.NewSource("", "")
	}
	g := &generator{
		e:    &emitter{w: w},
		src:  src,
		opts: opts,
		vars: make(map[string]int),
	}
	if prog != nil && prog.Block != nil {
		if err := g.block(prog.Block); err != nil {
			return err
		}
	}
	return g.e.err
}

func (g *generator) newReg() int {
	g.regs++
	return g.regs
}

func (g *generator) newLabel() int {
	g.labels++
	return g.labels
}

// ----------------------------------------------------------------------------
// Statements

// block generates the statements of b. Identifiers bound to registers
// allocated inside b are unbound afterwards.
func (g *generator) block(b *syntax.Block) error {
	entry := g.regs
	for _, s := range b.Stmts {
		if err := g.stmt(s); err != nil {
			return err
		}
	}

	for name, r := range g.vars {
		if r > entry && r <= g.regs {
			delete(g.vars, name)
		}
	}
	if g.opts.ReuseRegisters {
		g.regs = entry
	}
	return nil
}

func (g *generator) stmt(s syntax.Stmt) error {
	switch s := s.(type) {
	case *syntax.Assignment:
		return g.assignment(s)
	case *syntax.IfChain:
		return g.ifChain(s)
	case *syntax.ControlFlowBlock:
		return g.while(s)
	case *syntax.GenericStmt:
		g.generic(s)
		return nil
	}
	return fmt.Errorf("icg: unexpected statement %T", s)
}

// assignment evaluates the value into a new register. A previously bound
// register receives a copy, then the name is rebound to the new register.
func (g *generator) assignment(s *syntax.Assignment) error {
	r, err := g.expr(s.Value)
	if err != nil {
		return err
	}
	name := s.Name.Lit
	if old, ok := g.vars[name]; ok {
		g.e.emitCopy(old, r)
	}
	g.vars[name] = r
	return nil
}

// generic handles break and continue. Both do nothing outside of a loop;
// pass and comments never emit anything.
func (g *generator) generic(s *syntax.GenericStmt) {
	if g.continueLabel == 0 || g.breakLabel == 0 {
		return
	}
	switch s.Kind() {
	case syntax.CONTINUE:
		g.e.emitGoto(g.continueLabel)
	case syntax.BREAK:
		g.e.emitGoto(g.breakLabel)
	}
}

// while generates:
//
//	Ltop:
//	<cond>
//	if (!rc) goto Lexit
//	<body>
//	goto Ltop
//	Lexit:
func (g *generator) while(s *syntax.ControlFlowBlock) error {
	top := g.newLabel()
	savedContinue, savedBreak := g.continueLabel, g.breakLabel
	g.continueLabel = top

	g.e.emitLabel(top)
	cond, err := g.expr(s.Cond)
	if err != nil {
		return err
	}
	exit := g.newLabel()
	g.breakLabel = exit
	g.e.emitIfNot(cond, exit)

	if err := g.block(s.Body); err != nil {
		return err
	}
	g.e.emitGoto(top)
	g.e.emitLabel(exit)

	if g.opts.StackLoopLabels {
		g.continueLabel, g.breakLabel = savedContinue, savedBreak
	}
	return nil
}

// ifChain emits all condition checks first, then the bodies in source
// order:
//
//	<cond1>
//	if (r1) goto L1
//	<cond2>
//	if (r2) goto L2
//	L1:
//	<body1>
//	goto Lexit
//	L2:
//	<body2>
//	goto Lexit
//	<else body>
//	Lexit:
func (g *generator) ifChain(s *syntax.IfChain) error {
	exit := g.newLabel()

	type branch struct {
		label int
		body  *syntax.Block
	}
	var branches []branch

	clauses := append([]*syntax.ControlFlowBlock{s.If}, s.Elifs...)
	for _, c := range clauses {
		cond, err := g.expr(c.Cond)
		if err != nil {
			return err
		}
		l := g.newLabel()
		g.e.emitIf(cond, l)
		branches = append(branches, branch{label: l, body: c.Body})
	}

	elseLabel := 0
	if g.opts.GuardBranches {
		if s.Else != nil {
			elseLabel = g.newLabel()
			g.e.emitGoto(elseLabel)
		} else {
			g.e.emitGoto(exit)
		}
	}

	for _, b := range branches {
		g.e.emitLabel(b.label)
		if err := g.block(b.body); err != nil {
			return err
		}
		g.e.emitGoto(exit)
	}

	if s.Else != nil {
		if elseLabel != 0 {
			g.e.emitLabel(elseLabel)
		}
		if err := g.block(s.Else.Body); err != nil {
			return err
		}
	}

	g.e.emitLabel(exit)
	return nil
}

// ----------------------------------------------------------------------------
// Expressions

// opSymbols maps the logical operators to their instruction symbols. Every
// other operator is emitted as written.
var opSymbols = map[syntax.Kind]string{
	syntax.AND: "&",
	syntax.OR:  "|",
	syntax.NOT: "!",
}

// expr evaluates x and returns the register holding its value. The left
// operand is evaluated before the right one; the result register is
// allocated after both.
func (g *generator) expr(x *syntax.Expr) (int, error) {
	left, err := g.operand(x.Left)
	if err != nil {
		return 0, err
	}
	if !x.IsBinary() {
		return left, nil
	}
	right, err := g.operand(x.Right)
	if err != nil {
		return 0, err
	}

	op, ok := opSymbols[x.Op.Kind]
	if !ok {
		op = x.Op.Lit
	}
	dst := g.newReg()
	g.e.emit("%s = %s %s %s", regName(dst), regName(left), op, regName(right))
	return dst, nil
}

func (g *generator) operand(op syntax.Operand) (int, error) {
	switch op := op.(type) {
	case *syntax.Atom:
		if op.Tok.Kind != syntax.IDENTIFIER {
			return g.load(op.Tok.Lit), nil
		}
		bound, ok := g.vars[op.Tok.Lit]
		if !ok {
			return 0, &UndefinedVariableError{
				Name: op.Tok.Lit,
				Diag: g.src.Diagnose(op.Tok.Pos, "Undefined variable"),
			}
		}
		return g.load(regName(bound)), nil
	case *syntax.Expr:
		return g.expr(op)
	}
	return 0, fmt.Errorf("icg: unexpected operand %T", op)
}

// load copies val, a literal or a register, into a new register.
func (g *generator) load(val string) int {
	r := g.newReg()
	g.e.emit("%s = %s", regName(r), val)
	return r
}
