package syntax

// Parser performs syntax analysis on a token sequence produced by Tokenize.
//
// The parser is a backtracking recursive-descent parser over a single token
// cursor. Alternatives are tried by matching a token and rewinding the cursor
// on failure; once an alternative has committed (its first token matched),
// a missing required token is a fatal *SyntaxError. There is no recovery.
type Parser struct {
	toks []Token
	src  *Source

	idx     int // index of the current token, -1 before the first
	blockID int // id of the last block allocated
}

// NewParser creates a new Parser for toks, which were scanned from src.
func NewParser(toks []Token, src *Source) *Parser {
	return &Parser{toks: toks, src: src, idx: -1}
}

// Parse parses toks into a Program.
func Parse(toks []Token, src *Source) (*Program, error) {
	return NewParser(toks, src).Parse()
}

// ----------------------------------------------------------------------------
// Token navigation

// cur returns the current token: the last token consumed.
func (p *Parser) cur() Token {
	switch {
	case len(p.toks) == 0:
		return Token{Kind: EOF, Pos: Pos(p.src.Len())}
	case p.idx < 0:
		return p.toks[0]
	}
	return p.toks[p.idx]
}

// match advances to the next token that is not skipped and consumes it if
// it has kind k. Comments are always skipped unless k is COMMENT; newlines
// and whitespace are skipped when the respective flag is set. On mismatch
// the cursor is left where it was.
func (p *Parser) match(k Kind, skipNewline, skipWhitespace bool) bool {
	save := p.idx
	for p.idx+1 < len(p.toks) {
		p.idx++
		t := p.toks[p.idx].Kind
		if t == COMMENT && k != COMMENT || skipNewline && t == NEWLINE || skipWhitespace && t == WHITESPACE {
			continue
		}
		if t == k {
			return true
		}
		break
	}
	p.idx = save
	return false
}

// got is match skipping both newlines and whitespace.
func (p *Parser) got(k Kind) bool {
	return p.match(k, true, true)
}

// gotAny consumes the first of kinds that matches.
func (p *Parser) gotAny(kinds []Kind) bool {
	for _, k := range kinds {
		if p.got(k) {
			return true
		}
	}
	return false
}

// peek returns the next token that is not trivia without consuming it.
func (p *Parser) peek() (Token, bool) {
	for i := p.idx + 1; i < len(p.toks); i++ {
		if !p.toks[i].Kind.IsTrivia() {
			return p.toks[i], true
		}
	}
	return Token{}, false
}

// indent measures the indentation of the next non-blank line without
// moving the cursor. Blank and comment-only lines are discarded.
func (p *Parser) indent() int {
	save := p.idx
	defer func() { p.idx = save }()

	for p.match(NEWLINE, false, false) {
	}
	n := 0
	for p.match(WHITESPACE, false, false) {
		n++
		for p.match(NEWLINE, false, false) {
			n = 0
		}
	}
	return n
}

// ----------------------------------------------------------------------------
// Error handling

// errorf returns a syntax error at the current token.
func (p *Parser) errorf(msg string) error {
	return p.errorAt(p.cur().Pos, msg)
}

// errorAt returns a syntax error at a specific offset.
func (p *Parser) errorAt(pos Pos, msg string) error {
	return &SyntaxError{Diag: p.src.Diagnose(pos, msg)}
}

// ----------------------------------------------------------------------------
// Parsing entry point

// Parse parses the complete token sequence. Tokens left over after the
// top-level block are an error.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}

	b, err := p.block(-1)
	if err != nil {
		return nil, err
	}
	prog.Block = b
	if b != nil {
		prog.pos = b.pos
	}

	if t, ok := p.peek(); ok && t.Kind != EOF {
		return nil, p.errorAt(t.Pos, "Unexpected token")
	}
	return prog, nil
}

// ----------------------------------------------------------------------------
// Blocks and statements

// block parses the statements of a block that must be indented deeper than
// prevIndent. It returns nil if no statement could be parsed; the block id
// allocated for the attempt is then given back.
func (p *Parser) block(prevIndent int) (*Block, error) {
	indent := p.indent()
	if indent <= prevIndent {
		return nil, p.errorf("Expected an indented block")
	}

	p.blockID++
	b := &Block{ID: p.blockID, Indent: indent}

	for {
		s, err := p.statement(indent)
		if err != nil {
			return nil, err
		}
		if s == nil {
			break
		}
		b.Stmts = append(b.Stmts, s)

		// A less indented line belongs to an enclosing block.
		if p.indent() < indent {
			break
		}
	}

	if len(b.Stmts) == 0 {
		p.blockID--
		return nil, nil
	}
	b.pos = b.Stmts[0].Pos()
	return b, nil
}

// statement parses one statement, trying each form in turn.
// It returns nil if no form matches.
func (p *Parser) statement(indent int) (Stmt, error) {
	for _, k := range []Kind{BREAK, CONTINUE, PASS, COMMENT} {
		if s := p.genericStmt(k); s != nil {
			return s, nil
		}
	}

	a, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}

	w, err := p.controlFlowBlock(WHILE, indent, true)
	if err != nil {
		return nil, err
	}
	if w != nil {
		return w, nil
	}

	c, err := p.ifChain(indent)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	return nil, nil
}

// genericStmt parses a single-token statement of kind k.
func (p *Parser) genericStmt(k Kind) *GenericStmt {
	if !p.got(k) {
		return nil
	}
	s := &GenericStmt{Tok: p.cur()}
	s.pos = s.Tok.Pos
	return s
}

// assignment parses: IDENTIFIER = Expr
func (p *Parser) assignment() (*Assignment, error) {
	if !p.got(IDENTIFIER) {
		return nil, nil
	}
	s := &Assignment{Name: p.cur()}
	s.pos = s.Name.Pos

	if !p.got(ASSIGN) {
		return nil, p.errorf("Expected assignment operator")
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	if x == nil {
		return nil, p.errorf("Expected expression")
	}
	s.Value = x
	return s, nil
}

// controlFlowBlock parses: keyword [Expr] : NEWLINE Block
// The statements of the body must be indented deeper than indent.
func (p *Parser) controlFlowBlock(keyword Kind, indent int, hasCond bool) (*ControlFlowBlock, error) {
	if !p.got(keyword) {
		return nil, nil
	}
	s := &ControlFlowBlock{Keyword: p.cur()}
	s.pos = s.Keyword.Pos

	if hasCond {
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if x == nil {
			return nil, p.errorf("Expected expression")
		}
		s.Cond = x
	}

	if !p.got(COLON) {
		return nil, p.errorf("Expected colon")
	}
	if !p.match(NEWLINE, false, true) {
		return nil, p.errorf("Expected newline")
	}

	body, err := p.block(indent)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, p.errorf("Expected code block")
	}
	s.Body = body
	return s, nil
}

// ifChain parses: if-block {elif-block} [else-block]
func (p *Parser) ifChain(indent int) (*IfChain, error) {
	first, err := p.controlFlowBlock(IF, indent, true)
	if err != nil || first == nil {
		return nil, err
	}
	s := &IfChain{If: first}
	s.pos = first.pos

	for {
		elif, err := p.controlFlowBlock(ELIF, indent, true)
		if err != nil {
			return nil, err
		}
		if elif == nil {
			break
		}
		s.Elifs = append(s.Elifs, elif)
	}

	s.Else, err = p.controlFlowBlock(ELSE, indent, false)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ----------------------------------------------------------------------------
// Expressions

// atomKinds lists the leaf operand kinds in the order they are tried.
var atomKinds = []Kind{BOOL_TRUE, BOOL_FALSE, IDENTIFIER, STRING, INTEGER, FLOAT}

// binaryOps lists the binary operators in the order they are tried.
var binaryOps = []Kind{
	OR, AND, NOT,
	DIVIDE, MULTIPLY, ADD, SUBTRACT,
	EQUAL, NOT_EQUAL, MODULUS,
	GREATER_THAN, LESS_THAN, GREATER_THAN_OR_EQUAL, LESS_THAN_OR_EQUAL,
}

// expr parses: Operand [op Expr]
//
// Operators have no precedence. The right operand is always a complete
// expression, so a + b * c groups as a + (b * c) and a * b + c groups as
// a * (b + c). It returns nil if no operand starts here.
func (p *Parser) expr() (*Expr, error) {
	x := &Expr{}

	if p.got(LPAREN) {
		x.pos = p.cur().Pos
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, p.errorf("Expected expression")
		}
		if !p.got(RPAREN) {
			return nil, p.errorf("Expected closing parenthesis")
		}
		x.Left = inner
	} else {
		if !p.gotAny(atomKinds) {
			return nil, nil
		}
		a := &Atom{Tok: p.cur()}
		a.pos = a.Tok.Pos
		x.Left = a
		x.pos = a.pos
	}

	if p.gotAny(binaryOps) {
		op := p.cur()
		right, err := p.expr()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.errorf("Expected expression")
		}
		x.Op = &op
		x.Right = right
	}
	return x, nil
}
