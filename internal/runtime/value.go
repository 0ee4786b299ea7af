// Package runtime implements the evaluator and runtime value system for
// islet.
package runtime

import (
	"fmt"
	"strings"

	"islet/internal/ast"
	"islet/internal/env"
	"islet/internal/symbol"
)

// Environment is the binding substrate for evaluation: a persistent chain
// of symbol-to-value bindings. Entering a function body or a local block
// extends the chain; definitions write through it with Update.
type Environment = env.Env[Value]

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// IntVal represents an integer value.
type IntVal int64

func (v IntVal) TypeName() string { return "number" }
func (v IntVal) String() string   { return fmt.Sprintf("%d", int64(v)) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return fmt.Sprintf("%q", string(v)) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string {
	return "boolean"
}

func (v BoolVal) String() string {
	if v {
		return "#true"
	}
	return "#false"
}

// UndefVal is the placeholder a definition's binding holds between the
// moment the name is brought into scope and the moment its right-hand side
// has been evaluated. Reading it is an error; it exists so that recursive
// and mutually recursive definitions can see their own names.
type UndefVal struct {
	Name symbol.Symbol
}

func (v UndefVal) TypeName() string { return "undefined" }
func (v UndefVal) String() string   { return "#<undefined:" + v.Name.Name() + ">" }

// ---- Callable values ----

// FuncVal represents a user-defined function together with the environment
// handle it closed over.
type FuncVal struct {
	Name    symbol.Symbol // zero for anonymous lambdas
	Formals []symbol.Symbol
	Body    ast.Expr
	Env     Environment
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string {
	if v.Name.Name() == "" {
		return "#<lambda>"
	}
	return "#<function:" + v.Name.Name() + ">"
}

// BuiltinFn is the Go signature for primitive operations.
type BuiltinFn func(args []Value) (Value, error)

// BuiltinVal represents a primitive operation.
type BuiltinVal struct {
	Name string
	Fn   BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "function" }
func (v *BuiltinVal) String() string   { return "#<builtin:" + v.Name + ">" }

// ---- Lists ----

// EmptyVal is the empty list.
type EmptyVal struct{}

func (v EmptyVal) TypeName() string { return "empty" }
func (v EmptyVal) String() string   { return "empty" }

// ConsVal is a non-empty list cell.
type ConsVal struct {
	First Value
	Rest  Value
}

func (v *ConsVal) TypeName() string { return "cons" }

func (v *ConsVal) String() string {
	var parts []string
	cur := Value(v)
	for {
		cell, ok := cur.(*ConsVal)
		if !ok {
			break
		}
		parts = append(parts, cell.First.String())
		cur = cell.Rest
	}
	return "(list " + strings.Join(parts, " ") + ")"
}

// ---- Structures ----

// StructType describes a define-struct declaration. All instances of one
// declaration share the same *StructType, so the predicate and selectors
// check identity rather than name.
type StructType struct {
	Name   symbol.Symbol
	Fields []symbol.Symbol
}

// StructVal is an instance of a structure type.
type StructVal struct {
	Type   *StructType
	Fields []Value
}

func (v *StructVal) TypeName() string { return v.Type.Name.Name() }

func (v *StructVal) String() string {
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.String()
	}
	if len(parts) == 0 {
		return "(make-" + v.Type.Name.Name() + ")"
	}
	return "(make-" + v.Type.Name.Name() + " " + strings.Join(parts, " ") + ")"
}

// ---- Equality ----

// Equal reports structural equality of two values: numbers, booleans, and
// strings by value, lists and structures element-wise, functions by
// identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case IntVal:
		bv, ok := b.(IntVal)
		return ok && av == bv
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av == bv
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv
	case EmptyVal:
		_, ok := b.(EmptyVal)
		return ok
	case *ConsVal:
		bv, ok := b.(*ConsVal)
		return ok && Equal(av.First, bv.First) && Equal(av.Rest, bv.Rest)
	case *StructVal:
		bv, ok := b.(*StructVal)
		if !ok || av.Type != bv.Type {
			return false
		}
		for i := range av.Fields {
			if !Equal(av.Fields[i], bv.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// IsList reports whether v is a proper list (empty or cons cells ending in
// empty). Cons cells always hold proper lists in their Rest, so only the
// top constructor needs checking.
func IsList(v Value) bool {
	switch v.(type) {
	case EmptyVal, *ConsVal:
		return true
	default:
		return false
	}
}
