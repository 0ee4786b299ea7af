// Package ast defines the abstract syntax tree for islet programs.
//
// A program is a sequence of declarations. Expressions are the ISL core:
// variable references, applications, lambda, local, cond, and literals.
package ast

import (
	"islet/internal/span"
	"islet/internal/symbol"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Decl is the interface for declaration nodes.
type Decl interface {
	Node
	declNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// DeclBase is embedded by all declaration nodes.
type DeclBase struct{ NodeBase }

func (DeclBase) declNode() {}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program is a whole source file or REPL entry: declarations in order.
type Program struct {
	NodeBase
	Decls []Decl
}

// ============================================================
// Expressions
// ============================================================

// VarExpr is a variable reference.
type VarExpr struct {
	ExprBase
	Name symbol.Symbol
}

// AppExpr is a function application: (fn arg ...).
type AppExpr struct {
	ExprBase
	Fn   Expr
	Args []Expr
}

// LambdaExpr is an anonymous function: (lambda (x ...) body).
type LambdaExpr struct {
	ExprBase
	Formals []symbol.Symbol
	Body    Expr
}

// LocalExpr is a block with local definitions: (local [defn ...] body).
type LocalExpr struct {
	ExprBase
	Decls []Decl
	Body  Expr
}

// CondClause is one [question answer] pair of a cond. Question is nil for
// an else clause.
type CondClause struct {
	Question Expr
	Answer   Expr
	Span     span.Span
}

// CondExpr is a multi-way conditional: (cond [q a] ... [else a]).
type CondExpr struct {
	ExprBase
	Clauses []CondClause
}

// IntLit is an integer literal.
type IntLit struct {
	ExprBase
	Value int64
}

// StringLit is a string literal.
type StringLit struct {
	ExprBase
	Value string
}

// BoolLit is #true or #false.
type BoolLit struct {
	ExprBase
	Value bool
}

// ============================================================
// Declarations
// ============================================================

// DefineVar binds a name to the value of an expression:
// (define name expr).
type DefineVar struct {
	DeclBase
	Name symbol.Symbol
	Rhs  Expr
}

// DefineFun binds a name to a function:
// (define (name formal ...) body).
type DefineFun struct {
	DeclBase
	Name    symbol.Symbol
	Formals []symbol.Symbol
	Body    Expr
}

// DefineStruct introduces a structure type and its derived operations:
// (define-struct name (field ...)).
type DefineStruct struct {
	DeclBase
	Name   symbol.Symbol
	Fields []symbol.Symbol
}

// ExprDecl is a bare expression at declaration position, evaluated for its
// value (printed by the REPL).
type ExprDecl struct {
	DeclBase
	Expr Expr
}
