package runtime

import (
	"fmt"
	"io"

	"islet/internal/ast"
	"islet/internal/env"
	"islet/internal/span"
	"islet/internal/symbol"
)

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error raised during evaluation.
type RuntimeError struct {
	Message string
	Span    span.Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func runtimeErr(s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter evaluates programs against a persistent environment that it
// threads from one Run call to the next, so a REPL keeps its definitions.
type Interpreter struct {
	env    Environment
	output io.Writer
}

// NewInterpreter creates an interpreter whose starting environment holds
// the primitive operations.
func NewInterpreter(output io.Writer) *Interpreter {
	return &Interpreter{
		env:    BaseEnvironment(),
		output: output,
	}
}

// Env returns the current environment handle.
func (in *Interpreter) Env() Environment {
	return in.env
}

// Run evaluates every declaration of prog in order, extending the
// interpreter's environment. Values of bare expressions are printed to the
// output writer.
func (in *Interpreter) Run(prog *ast.Program) error {
	newEnv, err := in.evalProgram(prog, in.env)
	if err != nil {
		return err
	}
	in.env = newEnv
	return nil
}

// evalProgram evaluates decls against e and returns the extended
// environment. All names are brought into scope before any right-hand side
// runs, so definitions may be mutually recursive regardless of their
// textual order. e itself is never modified structurally; callers that
// keep their old handle keep their old scope.
func (in *Interpreter) evalProgram(prog *ast.Program, e Environment) (Environment, error) {
	for _, decl := range prog.Decls {
		e = extendDecl(decl, e)
	}
	for _, decl := range prog.Decls {
		value, err := in.evalDecl(decl, e)
		if err != nil {
			return in.env, err
		}
		if value != nil {
			fmt.Fprintln(in.output, value.String())
		}
	}
	return e, nil
}

// ============================================================
// Declarations
// ============================================================
//
// Declarations are evaluated in two phases. extendDecl brings every name
// the declaration introduces into scope, bound to an undefined
// placeholder. evalDecl then computes the actual values and writes them
// through Update. Splitting the phases is what lets a function's body (and
// a local's later definitions) refer to names that are still being
// defined: the closure captures the already-extended chain, and the Update
// is visible through that shared node once the definition completes.

// extendDecl returns e extended with a placeholder binding for every name
// decl introduces.
func extendDecl(decl ast.Decl, e Environment) Environment {
	switch d := decl.(type) {
	case *ast.DefineVar:
		return e.Extend(d.Name, UndefVal{Name: d.Name})
	case *ast.DefineFun:
		return e.Extend(d.Name, UndefVal{Name: d.Name})
	case *ast.DefineStruct:
		for _, name := range structNames(d) {
			e = e.Extend(name, UndefVal{Name: name})
		}
		return e
	case *ast.ExprDecl:
		return e
	default:
		return e
	}
}

// evalDecl completes a declaration whose names extendDecl already bound,
// writing the computed values in place. For a bare expression it returns
// the expression's value; for definitions it returns nil.
func (in *Interpreter) evalDecl(decl ast.Decl, e Environment) (Value, error) {
	switch d := decl.(type) {
	case *ast.DefineVar:
		value, err := in.evalExpr(d.Rhs, e)
		if err != nil {
			return nil, err
		}
		if err := e.Update(d.Name, value); err != nil {
			return nil, runtimeErr(d.Span, "%s", err)
		}
		return nil, nil

	case *ast.DefineFun:
		// The closure captures e itself, which already contains the
		// function's own binding: recursion falls out of the sharing.
		fn := &FuncVal{Name: d.Name, Formals: d.Formals, Body: d.Body, Env: e}
		if err := e.Update(d.Name, fn); err != nil {
			return nil, runtimeErr(d.Span, "%s", err)
		}
		return nil, nil

	case *ast.DefineStruct:
		return nil, fillStructOps(d, e)

	case *ast.ExprDecl:
		return in.evalExpr(d.Expr, e)

	default:
		return nil, runtimeErr(decl.GetSpan(), "unexpected declaration type: %T", decl)
	}
}

// structNames lists the derived names of a define-struct, in the order
// extendDecl binds them: constructor, predicate, then one selector per
// field.
func structNames(d *ast.DefineStruct) []symbol.Symbol {
	base := d.Name.Name()
	names := []symbol.Symbol{
		symbol.Intern("make-" + base),
		symbol.Intern(base + "?"),
	}
	for _, field := range d.Fields {
		names = append(names, symbol.Intern(base+"-"+field.Name()))
	}
	return names
}

// fillStructOps builds the constructor, predicate, and selectors for a
// define-struct and writes them over their placeholders.
func fillStructOps(d *ast.DefineStruct, e Environment) error {
	st := &StructType{Name: d.Name, Fields: d.Fields}
	base := d.Name.Name()
	names := structNames(d)

	ops := make([]Value, 0, len(names))
	ops = append(ops, makeConstructor(st, base))
	ops = append(ops, makePredicate(st, base))
	for i := range d.Fields {
		ops = append(ops, makeSelector(st, base, i))
	}

	for i, name := range names {
		if err := e.Update(name, ops[i]); err != nil {
			return runtimeErr(d.Span, "%s", err)
		}
	}
	return nil
}

func makeConstructor(st *StructType, base string) *BuiltinVal {
	name := "make-" + base
	return &BuiltinVal{
		Name: name,
		Fn: func(args []Value) (Value, error) {
			if len(args) != len(st.Fields) {
				return nil, fmt.Errorf("%s: expects %d arguments, but found %d", name, len(st.Fields), len(args))
			}
			fields := make([]Value, len(args))
			copy(fields, args)
			return &StructVal{Type: st, Fields: fields}, nil
		},
	}
}

func makePredicate(st *StructType, base string) *BuiltinVal {
	name := base + "?"
	return &BuiltinVal{
		Name: name,
		Fn: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: expects 1 argument, but found %d", name, len(args))
			}
			sv, ok := args[0].(*StructVal)
			return BoolVal(ok && sv.Type == st), nil
		},
	}
}

func makeSelector(st *StructType, base string, index int) *BuiltinVal {
	name := base + "-" + st.Fields[index].Name()
	return &BuiltinVal{
		Name: name,
		Fn: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: expects 1 argument, but found %d", name, len(args))
			}
			sv, ok := args[0].(*StructVal)
			if !ok || sv.Type != st {
				return nil, fmt.Errorf("%s: expects a %s, given %s", name, base, args[0].String())
			}
			return sv.Fields[index], nil
		},
	}
}

// ============================================================
// Expressions
// ============================================================

func (in *Interpreter) evalExpr(expr ast.Expr, e Environment) (Value, error) {
	switch x := expr.(type) {
	case *ast.IntLit:
		return IntVal(x.Value), nil
	case *ast.StringLit:
		return StringVal(x.Value), nil
	case *ast.BoolLit:
		return BoolVal(x.Value), nil
	case *ast.VarExpr:
		return in.evalVar(x, e)
	case *ast.LambdaExpr:
		return &FuncVal{Formals: x.Formals, Body: x.Body, Env: e}, nil
	case *ast.AppExpr:
		return in.evalApp(x, e)
	case *ast.LocalExpr:
		return in.evalLocal(x, e)
	case *ast.CondExpr:
		return in.evalCond(x, e)
	default:
		return nil, runtimeErr(expr.GetSpan(), "unexpected expression type: %T", expr)
	}
}

func (in *Interpreter) evalVar(x *ast.VarExpr, e Environment) (Value, error) {
	value, err := e.Lookup(x.Name)
	if err != nil {
		if env.IsNotFound(err) {
			return nil, runtimeErr(x.Span, "%s: this variable is not defined", x.Name.Name())
		}
		return nil, runtimeErr(x.Span, "%s", err)
	}
	if _, undefined := value.(UndefVal); undefined {
		return nil, runtimeErr(x.Span, "%s: variable used before its definition", x.Name.Name())
	}
	return value, nil
}

func (in *Interpreter) evalApp(x *ast.AppExpr, e Environment) (Value, error) {
	fn, err := in.evalExpr(x.Fn, e)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(x.Args))
	for i, argExpr := range x.Args {
		arg, err := in.evalExpr(argExpr, e)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	switch callee := fn.(type) {
	case *FuncVal:
		return in.applyFunc(callee, args, x.Span)
	case *BuiltinVal:
		result, err := callee.Fn(args)
		if err != nil {
			if re, ok := err.(*RuntimeError); ok {
				return nil, re
			}
			return nil, runtimeErr(x.Span, "%s", err)
		}
		return result, nil
	default:
		return nil, runtimeErr(x.Fn.GetSpan(), "function application: not a function: %s", fn.String())
	}
}

// applyFunc binds the actuals over the closure's captured environment and
// evaluates the body there. The caller's environment plays no part; that
// is what makes scoping lexical.
func (in *Interpreter) applyFunc(fn *FuncVal, args []Value, s span.Span) (Value, error) {
	if len(args) != len(fn.Formals) {
		name := fn.Name.Name()
		if name == "" {
			name = "lambda"
		}
		return nil, runtimeErr(s, "%s: expects %d arguments, but found %d", name, len(fn.Formals), len(args))
	}
	callEnv := fn.Env
	for i, formal := range fn.Formals {
		callEnv = callEnv.Extend(formal, args[i])
	}
	return in.evalExpr(fn.Body, callEnv)
}

// evalLocal evaluates (local [defn ...] body): the definitions extend a
// fresh handle off the current one, the body runs against that handle, and
// the outer environment is untouched once the call returns.
func (in *Interpreter) evalLocal(x *ast.LocalExpr, e Environment) (Value, error) {
	localEnv := e
	for _, decl := range x.Decls {
		localEnv = extendDecl(decl, localEnv)
	}
	for _, decl := range x.Decls {
		if _, err := in.evalDecl(decl, localEnv); err != nil {
			return nil, err
		}
	}
	return in.evalExpr(x.Body, localEnv)
}

func (in *Interpreter) evalCond(x *ast.CondExpr, e Environment) (Value, error) {
	for _, clause := range x.Clauses {
		if clause.Question == nil {
			return in.evalExpr(clause.Answer, e)
		}
		q, err := in.evalExpr(clause.Question, e)
		if err != nil {
			return nil, err
		}
		b, ok := q.(BoolVal)
		if !ok {
			return nil, runtimeErr(clause.Span, "cond: question result is not true or false: %s", q.String())
		}
		if bool(b) {
			return in.evalExpr(clause.Answer, e)
		}
	}
	return nil, runtimeErr(x.Span, "cond: all question results were false")
}
