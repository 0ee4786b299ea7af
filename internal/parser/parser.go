// Package parser implements syntax analysis for islet. The grammar is
// s-expressions, so parsing is recursive descent over parenthesized forms,
// with special forms (define, define-struct, lambda, local, cond)
// recognized by their head keyword.
package parser

import (
	"fmt"
	"strconv"

	"islet/internal/ast"
	"islet/internal/diag"
	"islet/internal/span"
	"islet/internal/symbol"
	"islet/internal/token"
)

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseProgram parses the entire input and returns the AST root and
// diagnostics. Declarations that failed to parse are omitted from the
// result; callers must check the diagnostics before evaluating.
func (p *Parser) ParseProgram() (*ast.Program, []diag.Diagnostic) {
	prog := &ast.Program{}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() {
		decl := p.parseDecl()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
	}

	endPos := p.peek().Span.End
	prog.Span = span.Span{Start: startPos, End: endPos}
	return prog, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

// peekAt returns the token n positions ahead of the current one.
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, format string, args ...interface{}) {
	p.diags = append(p.diags, diag.Errorf(code, s, format, args...))
}

// closerFor returns the closing kind matching an opening delimiter.
func closerFor(open token.Kind) token.Kind {
	if open == token.LBRACKET {
		return token.RBRACKET
	}
	return token.RPAREN
}

// expectClose consumes the closer matching open, diagnosing a mismatched or
// missing one. Returns the closing token for span construction.
func (p *Parser) expectClose(open token.Token) token.Token {
	want := closerFor(open.Kind)
	if p.check(want) {
		return p.advance()
	}
	tok := p.peek()
	if tok.Kind.IsClose() {
		p.error("E2002", tok.Span, "mismatched delimiter: '%s' opened at %s is closed by '%s'",
			open.Kind, open.Span.Start, tok.Kind)
		return p.advance()
	}
	p.error("E2001", tok.Span, "expected '%s' to close '%s' opened at %s, got '%s'",
		want, open.Kind, open.Span.Start, tok.Kind)
	return tok
}

// skipForm discards tokens through the end of the current form, whose
// opener has already been consumed. Used for error recovery so one
// malformed form yields one diagnostic.
func (p *Parser) skipForm() {
	depth := 1
	for depth > 0 && !p.isAtEnd() {
		tok := p.advance()
		switch {
		case tok.Kind.IsOpen():
			depth++
		case tok.Kind.IsClose():
			depth--
		}
	}
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) parseDecl() ast.Decl {
	if p.peekKind().IsOpen() {
		switch p.peekAt(1).Kind {
		case token.KW_DEFINE:
			return p.parseDefine()
		case token.KW_DEFINE_STRUCT:
			return p.parseDefineStruct()
		}
	}

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return &ast.ExprDecl{
		DeclBase: ast.DeclBase{NodeBase: ast.NodeBase{Span: expr.GetSpan()}},
		Expr:     expr,
	}
}

// parseDefine handles both forms:
//
//	(define name expr)
//	(define (name formal ...) body)
func (p *Parser) parseDefine() ast.Decl {
	open := p.advance() // opening delimiter
	p.advance()         // 'define'

	switch {
	case p.check(token.IDENT):
		nameTok := p.advance()
		rhs := p.parseExpr()
		if rhs == nil {
			p.skipForm()
			return nil
		}
		closeTok := p.expectClose(open)
		return &ast.DefineVar{
			DeclBase: declSpan(open, closeTok),
			Name:     symbol.Intern(nameTok.Lexeme),
			Rhs:      rhs,
		}

	case p.peekKind().IsOpen():
		header := p.advance()
		nameTok, ok := p.expectIdent("function name")
		if !ok {
			p.skipForm()
			p.skipForm()
			return nil
		}
		formals, ok := p.parseFormals(header)
		if !ok {
			p.skipForm()
			return nil
		}
		if len(formals) == 0 {
			p.error("E2005", header.Span, "function '%s' has no parameters; use (define %s ...) instead",
				nameTok.Lexeme, nameTok.Lexeme)
		}
		body := p.parseExpr()
		if body == nil {
			p.skipForm()
			return nil
		}
		closeTok := p.expectClose(open)
		return &ast.DefineFun{
			DeclBase: declSpan(open, closeTok),
			Name:     symbol.Intern(nameTok.Lexeme),
			Formals:  formals,
			Body:     body,
		}

	default:
		p.error("E2003", p.peek().Span, "define expects a name or a (name formal ...) header, got '%s'",
			p.peekKind())
		p.skipForm()
		return nil
	}
}

// parseDefineStruct handles (define-struct name (field ...)).
func (p *Parser) parseDefineStruct() ast.Decl {
	open := p.advance() // opening delimiter
	p.advance()         // 'define-struct'

	nameTok, ok := p.expectIdent("structure name")
	if !ok {
		p.skipForm()
		return nil
	}
	if !p.peekKind().IsOpen() {
		p.error("E2004", p.peek().Span, "define-struct expects a (field ...) list, got '%s'", p.peekKind())
		p.skipForm()
		return nil
	}
	fieldsOpen := p.advance()
	fields, ok := p.parseFormals(fieldsOpen)
	if !ok {
		p.skipForm()
		return nil
	}
	closeTok := p.expectClose(open)
	return &ast.DefineStruct{
		DeclBase: declSpan(open, closeTok),
		Name:     symbol.Intern(nameTok.Lexeme),
		Fields:   fields,
	}
}

// parseFormals reads identifiers until the closer of open, rejecting
// duplicates. The opener has already been consumed.
func (p *Parser) parseFormals(open token.Token) ([]symbol.Symbol, bool) {
	var formals []symbol.Symbol
	seen := make(map[symbol.Symbol]bool)
	for !p.peekKind().IsClose() && !p.isAtEnd() {
		tok, ok := p.expectIdent("parameter name")
		if !ok {
			return nil, false
		}
		sym := symbol.Intern(tok.Lexeme)
		if seen[sym] {
			p.error("E2006", tok.Span, "duplicate parameter name '%s'", tok.Lexeme)
		}
		seen[sym] = true
		formals = append(formals, sym)
	}
	p.expectClose(open)
	return formals, true
}

func (p *Parser) expectIdent(what string) (token.Token, bool) {
	if p.check(token.IDENT) {
		return p.advance(), true
	}
	tok := p.peek()
	if tok.Kind.IsKeyword() {
		p.error("E2007", tok.Span, "'%s' is a keyword and cannot be used as a %s", tok.Lexeme, what)
		p.advance()
		return tok, false
	}
	p.error("E2001", tok.Span, "expected %s, got '%s'", what, tok.Kind)
	return tok, false
}

// ============================================================
// Expressions
// ============================================================

func (p *Parser) parseExpr() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.INT:
		p.advance()
		return p.intLit(tok)
	case token.STRING:
		p.advance()
		return &ast.StringLit{ExprBase: exprSpan(tok.Span), Value: tok.Lexeme}
	case token.BOOLEAN:
		p.advance()
		return &ast.BoolLit{ExprBase: exprSpan(tok.Span), Value: tok.Lexeme == "#true"}
	case token.IDENT:
		p.advance()
		return &ast.VarExpr{ExprBase: exprSpan(tok.Span), Name: symbol.Intern(tok.Lexeme)}
	case token.LPAREN, token.LBRACKET:
		return p.parseForm()
	case token.RPAREN, token.RBRACKET:
		p.error("E2008", tok.Span, "unexpected '%s'", tok.Kind)
		p.advance()
		return nil
	case token.ILLEGAL:
		// Already diagnosed by the lexer.
		p.advance()
		return nil
	case token.EOF:
		p.error("E2009", tok.Span, "unexpected end of input")
		return nil
	default:
		p.error("E2010", tok.Span, "'%s' is not allowed here", tok.Lexeme)
		p.advance()
		return nil
	}
}

func (p *Parser) intLit(tok token.Token) ast.Expr {
	value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		p.error("E2011", tok.Span, "integer literal %s out of range", tok.Lexeme)
		return nil
	}
	return &ast.IntLit{ExprBase: exprSpan(tok.Span), Value: value}
}

// parseForm dispatches a parenthesized form on its head token.
func (p *Parser) parseForm() ast.Expr {
	open := p.advance()

	switch p.peekKind() {
	case token.KW_LAMBDA:
		return p.parseLambda(open)
	case token.KW_LOCAL:
		return p.parseLocal(open)
	case token.KW_COND:
		return p.parseCond(open)
	case token.KW_DEFINE, token.KW_DEFINE_STRUCT:
		p.diags = append(p.diags, diag.Diagnostic{
			Code:     "E2012",
			Severity: diag.Error,
			Message:  fmt.Sprintf("'%s' is not allowed inside an expression", p.peek().Lexeme),
			Span:     p.peek().Span,
			Hint:     "wrap definitions in (local [...] ...)",
		})
		p.skipForm()
		return nil
	case token.KW_ELSE:
		p.error("E2013", p.peek().Span, "'else' is only allowed as the last cond clause")
		p.skipForm()
		return nil
	case token.RPAREN, token.RBRACKET:
		p.error("E2014", p.peek().Span, "empty application: a form needs a function position")
		p.expectClose(open)
		return nil
	default:
		return p.parseApp(open)
	}
}

// parseApp reads (fn arg ...) after the opener has been consumed.
func (p *Parser) parseApp(open token.Token) ast.Expr {
	fn := p.parseExpr()
	if fn == nil {
		p.skipForm()
		return nil
	}
	var args []ast.Expr
	for !p.peekKind().IsClose() && !p.isAtEnd() {
		arg := p.parseExpr()
		if arg == nil {
			p.skipForm()
			return nil
		}
		args = append(args, arg)
	}
	closeTok := p.expectClose(open)
	return &ast.AppExpr{
		ExprBase: exprSpanJoin(open, closeTok),
		Fn:       fn,
		Args:     args,
	}
}

// parseLambda reads (lambda (formal ...) body) after the opener.
func (p *Parser) parseLambda(open token.Token) ast.Expr {
	p.advance() // 'lambda'

	if !p.peekKind().IsOpen() {
		p.error("E2015", p.peek().Span, "lambda expects a (formal ...) list, got '%s'", p.peekKind())
		p.skipForm()
		return nil
	}
	formalsOpen := p.advance()
	formals, ok := p.parseFormals(formalsOpen)
	if !ok {
		p.skipForm()
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		p.skipForm()
		return nil
	}
	closeTok := p.expectClose(open)
	return &ast.LambdaExpr{
		ExprBase: exprSpanJoin(open, closeTok),
		Formals:  formals,
		Body:     body,
	}
}

// parseLocal reads (local [defn ...] body) after the opener.
func (p *Parser) parseLocal(open token.Token) ast.Expr {
	p.advance() // 'local'

	if !p.peekKind().IsOpen() {
		p.error("E2016", p.peek().Span, "local expects a [definition ...] list, got '%s'", p.peekKind())
		p.skipForm()
		return nil
	}
	declsOpen := p.advance()
	var decls []ast.Decl
	for !p.peekKind().IsClose() && !p.isAtEnd() {
		decl := p.parseDecl()
		if decl == nil {
			p.skipForm()
			return nil
		}
		if _, ok := decl.(*ast.ExprDecl); ok {
			p.error("E2017", decl.GetSpan(), "local definitions must be define or define-struct forms")
		}
		decls = append(decls, decl)
	}
	p.expectClose(declsOpen)

	body := p.parseExpr()
	if body == nil {
		p.skipForm()
		return nil
	}
	closeTok := p.expectClose(open)
	return &ast.LocalExpr{
		ExprBase: exprSpanJoin(open, closeTok),
		Decls:    decls,
		Body:     body,
	}
}

// parseCond reads (cond [question answer] ... [else answer]) after the
// opener. An else clause must be last.
func (p *Parser) parseCond(open token.Token) ast.Expr {
	condTok := p.advance() // 'cond'

	var clauses []ast.CondClause
	sawElse := false
	for !p.peekKind().IsClose() && !p.isAtEnd() {
		if !p.peekKind().IsOpen() {
			p.error("E2018", p.peek().Span, "cond expects [question answer] clauses, got '%s'", p.peekKind())
			p.skipForm()
			return nil
		}
		clauseOpen := p.advance()

		var question ast.Expr
		if p.check(token.KW_ELSE) {
			p.advance()
			if sawElse {
				p.error("E2013", clauseOpen.Span, "cond may have at most one else clause")
			}
			sawElse = true
		} else {
			question = p.parseExpr()
			if question == nil {
				p.skipForm()
				return nil
			}
			if sawElse {
				p.error("E2013", clauseOpen.Span, "'else' is only allowed as the last cond clause")
			}
		}
		answer := p.parseExpr()
		if answer == nil {
			p.skipForm()
			return nil
		}
		clauseClose := p.expectClose(clauseOpen)
		clauses = append(clauses, ast.CondClause{
			Question: question,
			Answer:   answer,
			Span:     span.Join(clauseOpen.Span, clauseClose.Span),
		})
	}
	if len(clauses) == 0 {
		p.error("E2019", condTok.Span, "cond needs at least one clause")
	}
	closeTok := p.expectClose(open)
	return &ast.CondExpr{
		ExprBase: exprSpanJoin(open, closeTok),
		Clauses:  clauses,
	}
}

// ---- span helpers ----

func exprSpan(s span.Span) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: s}}
}

func exprSpanJoin(open, close token.Token) ast.ExprBase {
	return exprSpan(span.Join(open.Span, close.Span))
}

func declSpan(open, close token.Token) ast.DeclBase {
	return ast.DeclBase{NodeBase: ast.NodeBase{Span: span.Join(open.Span, close.Span)}}
}
