package runtime

import (
	"bytes"
	"strings"
	"testing"

	"islet/internal/lexer"
	"islet/internal/parser"
)

// runSource parses and executes source, returning printed output and any
// error.
func runSource(source string) (string, error) {
	l := lexer.New(source, "test.rkt")
	tokens, _ := l.Tokenize()
	p := parser.New(tokens)
	prog, _ := p.ParseProgram()

	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	err := interp.Run(prog)
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source, contains string) {
	t.Helper()
	_, err := runSource(source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
}

// ---- Tests ----

func TestLiterals(t *testing.T) {
	expectOutput(t, `42`, "42\n")
	expectOutput(t, `"hello"`, "\"hello\"\n")
	expectOutput(t, `#true`, "#true\n")
	expectOutput(t, `#false`, "#false\n")
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, `(+ 1 2)`, "3\n")
	expectOutput(t, `(+ 1 2 3 4)`, "10\n")
	expectOutput(t, `(- 10 3)`, "7\n")
	expectOutput(t, `(- 5)`, "-5\n")
	expectOutput(t, `(* 2 3 4)`, "24\n")
	expectOutput(t, `(quotient 10 3)`, "3\n")
	expectOutput(t, `(remainder 10 3)`, "1\n")
	expectOutput(t, `(add1 41)`, "42\n")
	expectOutput(t, `(sub1 43)`, "42\n")
	expectOutput(t, `(abs -7)`, "7\n")
}

func TestComparison(t *testing.T) {
	expectOutput(t, `(= 1 1)`, "#true\n")
	expectOutput(t, `(< 1 2 3)`, "#true\n")
	expectOutput(t, `(< 1 3 2)`, "#false\n")
	expectOutput(t, `(>= 3 3 2)`, "#true\n")
	expectOutput(t, `(zero? 0)`, "#true\n")
	expectOutput(t, `(zero? 5)`, "#false\n")
}

func TestDefineVar(t *testing.T) {
	expectOutput(t, `
(define x 10)
(+ x 5)
`, "15\n")
}

func TestDefineShadowsBase(t *testing.T) {
	// A user definition shadows a primitive of the same name without
	// destroying it for the base environment.
	expectOutput(t, `
(define empty 99)
empty
`, "99\n")
}

func TestDefineFun(t *testing.T) {
	expectOutput(t, `
(define (add a b) (+ a b))
(add 3 4)
`, "7\n")
}

func TestRecursion(t *testing.T) {
	expectOutput(t, `
(define (fact n)
  (cond [(zero? n) 1]
        [else (* n (fact (sub1 n)))]))
(fact 10)
`, "3628800\n")
}

func TestMutualRecursion(t *testing.T) {
	// my-even? refers to my-odd? defined after it: every name is brought
	// into scope before any body runs.
	expectOutput(t, `
(define (my-even? n)
  (cond [(zero? n) #true]
        [else (my-odd? (sub1 n))]))
(define (my-odd? n)
  (cond [(zero? n) #false]
        [else (my-even? (sub1 n))]))
(my-even? 10)
(my-odd? 10)
`, "#true\n#false\n")
}

func TestLambda(t *testing.T) {
	expectOutput(t, `((lambda (x) (* x x)) 7)`, "49\n")
}

func TestClosureCapture(t *testing.T) {
	expectOutput(t, `
(define (make-adder n) (lambda (m) (+ n m)))
(define add5 (make-adder 5))
(define add10 (make-adder 10))
(add5 3)
(add10 3)
`, "8\n13\n")
}

func TestSiblingClosuresShareBinding(t *testing.T) {
	expectOutput(t, `
(define base 10)
(define double-base (lambda () (* 2 base)))
(define triple-base (lambda () (* 3 base)))
(double-base)
(triple-base)
`, "20\n30\n")
}

func TestLocal(t *testing.T) {
	expectOutput(t, `
(local [(define x 5)
        (define (f y) (+ x y))]
  (f 1))
`, "6\n")
}

func TestLocalDoesNotLeak(t *testing.T) {
	expectError(t, `
(local [(define hidden 5)] hidden)
hidden
`, "hidden: this variable is not defined")
}

func TestLocalShadowsOuter(t *testing.T) {
	expectOutput(t, `
(define x 1)
(local [(define x 2)] x)
x
`, "2\n1\n")
}

func TestCond(t *testing.T) {
	expectOutput(t, `
(define (sign n)
  (cond [(< n 0) "negative"]
        [(> n 0) "positive"]
        [else "zero"]))
(sign -5)
(sign 3)
(sign 0)
`, "\"negative\"\n\"positive\"\n\"zero\"\n")
}

func TestCondAllFalse(t *testing.T) {
	expectError(t, `(cond [(> 1 2) "no"])`, "all question results were false")
}

func TestCondNonBooleanQuestion(t *testing.T) {
	expectError(t, `(cond [5 "yes"])`, "question result is not true or false: 5")
}

func TestLists(t *testing.T) {
	expectOutput(t, `(cons 1 (cons 2 empty))`, "(list 1 2)\n")
	expectOutput(t, `(list 1 2 3)`, "(list 1 2 3)\n")
	expectOutput(t, `(first (list 1 2 3))`, "1\n")
	expectOutput(t, `(rest (list 1 2 3))`, "(list 2 3)\n")
	expectOutput(t, `(empty? empty)`, "#true\n")
	expectOutput(t, `(empty? (list 1))`, "#false\n")
	expectOutput(t, `(length (list 1 2 3))`, "3\n")
}

func TestListRecursion(t *testing.T) {
	expectOutput(t, `
(define (sum lst)
  (cond [(empty? lst) 0]
        [else (+ (first lst) (sum (rest lst)))]))
(sum (list 1 2 3 4 5))
`, "15\n")
}

func TestStrings(t *testing.T) {
	expectOutput(t, `(string-append "foo" "bar")`, "\"foobar\"\n")
	expectOutput(t, `(string=? "a" "a")`, "#true\n")
	expectOutput(t, `(string=? "a" "b")`, "#false\n")
	expectOutput(t, `(string-length "hello")`, "5\n")
	expectOutput(t, `(number->string 42)`, "\"42\"\n")
}

func TestBooleans(t *testing.T) {
	expectOutput(t, `(not #true)`, "#false\n")
	expectOutput(t, `(boolean=? #true #true)`, "#true\n")
	expectOutput(t, `(number? 1)`, "#true\n")
	expectOutput(t, `(string? 1)`, "#false\n")
	expectOutput(t, `(function? add1)`, "#true\n")
}

func TestEqual(t *testing.T) {
	expectOutput(t, `(equal? (list 1 2) (list 1 2))`, "#true\n")
	expectOutput(t, `(equal? (list 1 2) (list 2 1))`, "#false\n")
	expectOutput(t, `(equal? "a" "a")`, "#true\n")
}

func TestDefineStruct(t *testing.T) {
	expectOutput(t, `
(define-struct posn (x y))
(define p (make-posn 3 4))
(posn? p)
(posn? 5)
(posn-x p)
(posn-y p)
p
`, "#true\n#false\n3\n4\n(make-posn 3 4)\n")
}

func TestStructSelectorWrongType(t *testing.T) {
	expectError(t, `
(define-struct posn (x y))
(posn-x 5)
`, "posn-x: expects a posn, given 5")
}

func TestStructTypesAreDistinct(t *testing.T) {
	expectOutput(t, `
(define-struct cat (name))
(define-struct dog (name))
(cat? (make-dog "rex"))
`, "#false\n")
}

func TestUnboundVariable(t *testing.T) {
	expectError(t, `(+ x 1)`, "x: this variable is not defined")
}

func TestUseBeforeDefinition(t *testing.T) {
	expectError(t, `
(define x y)
(define y 1)
`, "y: variable used before its definition")
}

func TestNotAFunction(t *testing.T) {
	expectError(t, `(5 1 2)`, "not a function")
}

func TestArityMismatch(t *testing.T) {
	expectError(t, `
(define (f a b) (+ a b))
(f 1)
`, "f: expects 2 arguments, but found 1")
}

func TestDivisionByZero(t *testing.T) {
	expectError(t, `(quotient 1 0)`, "division by zero")
	expectError(t, `(remainder 1 0)`, "division by zero")
}

func TestErrorBuiltin(t *testing.T) {
	expectError(t, `(error "boom")`, "error: boom")
}

func TestConsRequiresList(t *testing.T) {
	expectError(t, `(cons 1 2)`, "second argument must be a list")
}

func TestTypeErrors(t *testing.T) {
	expectError(t, `(+ 1 "two")`, "+: expects a number")
	expectError(t, `(not 5)`, "not: expects a boolean")
	expectError(t, `(first empty)`, "first: expects a non-empty list")
}

func TestEnvironmentPersistsAcrossRuns(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)

	run := func(source string) {
		t.Helper()
		l := lexer.New(source, "<repl>")
		tokens, _ := l.Tokenize()
		p := parser.New(tokens)
		prog, _ := p.ParseProgram()
		if err := interp.Run(prog); err != nil {
			t.Fatalf("runtime error: %v", err)
		}
	}

	run(`(define x 10)`)
	run(`(define (double n) (* 2 n))`)
	run(`(double x)`)

	if got := strings.TrimRight(buf.String(), "\n"); got != "20" {
		t.Errorf("expected 20, got %q", got)
	}
}

func TestFailedRunLeavesEnvironmentIntact(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)

	l := lexer.New(`(define x 10)`, "<repl>")
	tokens, _ := l.Tokenize()
	p := parser.New(tokens)
	prog, _ := p.ParseProgram()
	if err := interp.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}

	// A failing entry must not keep its partial definitions.
	l = lexer.New(`(define y nonsense)`, "<repl>")
	tokens, _ = l.Tokenize()
	p = parser.New(tokens)
	prog, _ = p.ParseProgram()
	if err := interp.Run(prog); err == nil {
		t.Fatal("expected error")
	}

	l = lexer.New(`x`, "<repl>")
	tokens, _ = l.Tokenize()
	p = parser.New(tokens)
	prog, _ = p.ParseProgram()
	if err := interp.Run(prog); err != nil {
		t.Fatalf("x lost after failed entry: %v", err)
	}
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if out[len(out)-1] != "10" {
		t.Errorf("expected 10, got %q", out[len(out)-1])
	}
}
