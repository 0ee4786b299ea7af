package ast

import (
	"islet/internal/span"
	"islet/internal/symbol"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "decls", declSlice(n.Decls))

	// ---- Expressions ----
	case *VarExpr:
		return m("VarExpr", n.Span, "name", n.Name.Name())
	case *IntLit:
		return m("IntLit", n.Span, "value", n.Value)
	case *StringLit:
		return m("StringLit", n.Span, "value", n.Value)
	case *BoolLit:
		return m("BoolLit", n.Span, "value", n.Value)
	case *AppExpr:
		return m("AppExpr", n.Span,
			"fn", NodeToMap(n.Fn),
			"args", exprSlice(n.Args))
	case *LambdaExpr:
		return m("LambdaExpr", n.Span,
			"formals", symbolNames(n.Formals),
			"body", NodeToMap(n.Body))
	case *LocalExpr:
		return m("LocalExpr", n.Span,
			"decls", declSlice(n.Decls),
			"body", NodeToMap(n.Body))
	case *CondExpr:
		clauses := make([]interface{}, len(n.Clauses))
		for i, c := range n.Clauses {
			clause := map[string]interface{}{
				"answer": NodeToMap(c.Answer),
			}
			if c.Question != nil {
				clause["question"] = NodeToMap(c.Question)
			} else {
				clause["else"] = true
			}
			clauses[i] = clause
		}
		return m("CondExpr", n.Span, "clauses", clauses)

	// ---- Declarations ----
	case *DefineVar:
		return m("DefineVar", n.Span,
			"name", n.Name.Name(),
			"rhs", NodeToMap(n.Rhs))
	case *DefineFun:
		return m("DefineFun", n.Span,
			"name", n.Name.Name(),
			"formals", symbolNames(n.Formals),
			"body", NodeToMap(n.Body))
	case *DefineStruct:
		return m("DefineStruct", n.Span,
			"name", n.Name.Name(),
			"fields", symbolNames(n.Fields))
	case *ExprDecl:
		return m("ExprDecl", n.Span, "expr", NodeToMap(n.Expr))

	default:
		return m("Unknown", node.GetSpan())
	}
}

// ---- helpers ----

// m builds a node map with kind, span, and alternating key/value pairs.
func m(kind string, s span.Span, kv ...interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"kind": kind,
		"span": map[string]interface{}{
			"start": s.Start.String(),
			"end":   s.End.String(),
		},
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1]
	}
	return out
}

func exprSlice(exprs []Expr) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = NodeToMap(e)
	}
	return out
}

func declSlice(decls []Decl) []interface{} {
	out := make([]interface{}, len(decls))
	for i, d := range decls {
		out[i] = NodeToMap(d)
	}
	return out
}

func symbolNames(syms []symbol.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name()
	}
	return out
}
