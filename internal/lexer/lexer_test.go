package lexer

import (
	"testing"

	"islet/internal/token"
)

func tokenize(t *testing.T, source string) []token.Token {
	t.Helper()
	l := New(source, "test.rkt")
	tokens, diags := l.Tokenize()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return tokens
}

func expectKinds(t *testing.T, tokens []token.Token, expected ...token.Kind) {
	t.Helper()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeSimple(t *testing.T) {
	tokens := tokenize(t, `(+ 1 2)`)
	expectKinds(t, tokens,
		token.LPAREN, token.IDENT, token.INT, token.INT, token.RPAREN, token.EOF)
	if tokens[1].Lexeme != "+" {
		t.Errorf("expected lexeme %q, got %q", "+", tokens[1].Lexeme)
	}
}

func TestTokenizeKeywords(t *testing.T) {
	tokens := tokenize(t, `define define-struct lambda local cond else`)
	expectKinds(t, tokens,
		token.KW_DEFINE, token.KW_DEFINE_STRUCT, token.KW_LAMBDA,
		token.KW_LOCAL, token.KW_COND, token.KW_ELSE, token.EOF)
}

func TestTokenizeBrackets(t *testing.T) {
	tokens := tokenize(t, `(cond [else 1])`)
	expectKinds(t, tokens,
		token.LPAREN, token.KW_COND, token.LBRACKET, token.KW_ELSE,
		token.INT, token.RBRACKET, token.RPAREN, token.EOF)
}

func TestTokenizeSchemeIdentifiers(t *testing.T) {
	tokens := tokenize(t, `string=? posn-x add1 even? number->string <=`)
	expectKinds(t, tokens,
		token.IDENT, token.IDENT, token.IDENT, token.IDENT, token.IDENT,
		token.IDENT, token.EOF)
	want := []string{"string=?", "posn-x", "add1", "even?", "number->string", "<="}
	for i, w := range want {
		if tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected lexeme %q, got %q", i, w, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := tokenize(t, `42 -7 +3 0`)
	expectKinds(t, tokens, token.INT, token.INT, token.INT, token.INT, token.EOF)
	want := []string{"42", "-7", "+3", "0"}
	for i, w := range want {
		if tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected lexeme %q, got %q", i, w, tokens[i].Lexeme)
		}
	}
}

func TestMinusAloneIsIdentifier(t *testing.T) {
	tokens := tokenize(t, `(- 5 2)`)
	expectKinds(t, tokens,
		token.LPAREN, token.IDENT, token.INT, token.INT, token.RPAREN, token.EOF)
	if tokens[1].Lexeme != "-" {
		t.Errorf("expected lexeme %q, got %q", "-", tokens[1].Lexeme)
	}
}

func TestTokenizeBooleans(t *testing.T) {
	tokens := tokenize(t, `#true #false #t #f`)
	expectKinds(t, tokens,
		token.BOOLEAN, token.BOOLEAN, token.BOOLEAN, token.BOOLEAN, token.EOF)
	want := []string{"#true", "#false", "#true", "#false"}
	for i, w := range want {
		if tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected lexeme %q, got %q", i, w, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeString(t *testing.T) {
	tokens := tokenize(t, `"hello world"`)
	expectKinds(t, tokens, token.STRING, token.EOF)
	if tokens[0].Lexeme != "hello world" {
		t.Errorf("expected lexeme %q, got %q", "hello world", tokens[0].Lexeme)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens := tokenize(t, `"a\nb\t\"c\\"`)
	expectKinds(t, tokens, token.STRING, token.EOF)
	if tokens[0].Lexeme != "a\nb\t\"c\\" {
		t.Errorf("unexpected decoded string: %q", tokens[0].Lexeme)
	}
}

func TestTokenizeComment(t *testing.T) {
	tokens := tokenize(t, "(define x 1) ; the binding\n(+ x 1)")
	expectKinds(t, tokens,
		token.LPAREN, token.KW_DEFINE, token.IDENT, token.INT, token.RPAREN,
		token.LPAREN, token.IDENT, token.IDENT, token.INT, token.RPAREN, token.EOF)
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`, "test.rkt")
	tokens, diags := l.Tokenize()
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for unterminated string")
	}
	if diags[0].Code != "E0003" {
		t.Errorf("expected code E0003, got %s", diags[0].Code)
	}
	if tokens[0].Kind != token.ILLEGAL {
		t.Errorf("expected ILLEGAL token, got %s", tokens[0].Kind)
	}
}

func TestMalformedNumber(t *testing.T) {
	l := New(`12abc`, "test.rkt")
	tokens, diags := l.Tokenize()
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for malformed number")
	}
	if diags[0].Code != "E0002" {
		t.Errorf("expected code E0002, got %s", diags[0].Code)
	}
	if tokens[0].Kind != token.ILLEGAL {
		t.Errorf("expected ILLEGAL token, got %s", tokens[0].Kind)
	}
}

func TestUnknownHashLiteral(t *testing.T) {
	l := New(`#banana`, "test.rkt")
	_, diags := l.Tokenize()
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for unknown # literal")
	}
	if diags[0].Code != "E0005" {
		t.Errorf("expected code E0005, got %s", diags[0].Code)
	}
}

func TestSpans(t *testing.T) {
	tokens := tokenize(t, "(a\n b)")
	// 'b' is on line 2, column 2.
	b := tokens[2]
	if b.Span.Start.Line != 2 || b.Span.Start.Column != 2 {
		t.Errorf("expected b at 2:2, got %s", b.Span.Start)
	}
}
