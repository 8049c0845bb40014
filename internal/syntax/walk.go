package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if isNil(node) || !v(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		if n.Block != nil {
			Walk(n.Block, v)
		}

	case *Block:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *Assignment:
		Walk(n.Value, v)

	case *GenericStmt:
		// leaf

	case *ControlFlowBlock:
		if n.Cond != nil {
			Walk(n.Cond, v)
		}
		Walk(n.Body, v)

	case *IfChain:
		Walk(n.If, v)
		for _, e := range n.Elifs {
			Walk(e, v)
		}
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case *Expr:
		Walk(n.Left, v)
		if n.Right != nil {
			Walk(n.Right, v)
		}

	case *Atom:
		// leaf
	}
}

// isNil reports whether node is nil or a typed nil pointer.
func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *Program:
		return n == nil
	case *Block:
		return n == nil
	case *Expr:
		return n == nil
	case *ControlFlowBlock:
		return n == nil
	}
	return false
}
