package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w.
// Positions are byte offsets.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

func toJSON(node Node) interface{} {
	if isNil(node) {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		m := map[string]interface{}{
			"type": "Program",
			"pos":  n.pos,
		}
		if n.Block != nil {
			m["block"] = toJSON(n.Block)
		}
		return m

	case *Block:
		return map[string]interface{}{
			"type":   "Block",
			"pos":    n.pos,
			"id":     n.ID,
			"indent": n.Indent,
			"stmts":  mapSlice(n.Stmts, func(s Stmt) interface{} { return toJSON(s) }),
		}

	case *Assignment:
		return map[string]interface{}{
			"type":  "Assignment",
			"pos":   n.pos,
			"name":  n.Name.Lit,
			"value": toJSON(n.Value),
		}

	case *GenericStmt:
		return map[string]interface{}{
			"type": "GenericStmt",
			"pos":  n.pos,
			"kind": n.Tok.Kind.String(),
			"text": n.Tok.Lit,
		}

	case *ControlFlowBlock:
		m := map[string]interface{}{
			"type":    "ControlFlowBlock",
			"pos":     n.pos,
			"keyword": n.Keyword.Lit,
			"body":    toJSON(n.Body),
		}
		if n.Cond != nil {
			m["cond"] = toJSON(n.Cond)
		}
		return m

	case *IfChain:
		m := map[string]interface{}{
			"type":  "IfChain",
			"pos":   n.pos,
			"if":    toJSON(n.If),
			"elifs": mapSlice(n.Elifs, func(b *ControlFlowBlock) interface{} { return toJSON(b) }),
		}
		if n.Else != nil {
			m["else"] = toJSON(n.Else)
		}
		return m

	case *Expr:
		m := map[string]interface{}{
			"type": "Expr",
			"pos":  n.pos,
			"left": toJSON(n.Left),
		}
		if n.IsBinary() {
			m["op"] = n.Op.Lit
			m["right"] = toJSON(n.Right)
		}
		return m

	case *Atom:
		return map[string]interface{}{
			"type":  "Atom",
			"pos":   n.pos,
			"kind":  n.Tok.Kind.String(),
			"value": n.Tok.Lit,
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}
}

// Helper functions to map slices

func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}
