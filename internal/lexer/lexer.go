// Package lexer implements tokenization of islet source text.
package lexer

import (
	"islet/internal/diag"
	"islet/internal/span"
	"islet/internal/token"
)

// Lexer tokenizes s-expression source into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The token slice always ends with an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to the current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

// skipBlanks skips whitespace and ; line comments.
func (l *Lexer) skipBlanks() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case ';':
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// addError records a diagnostic error.
func (l *Lexer) addError(code string, s span.Span, format string, args ...interface{}) {
	l.diags = append(l.diags, diag.Errorf(code, s, format, args...))
}

// isDigit reports whether ch is an ASCII digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isSymbolChar reports whether ch may appear in an identifier. The charset
// is the usual Scheme one: names like add1, string=?, posn-x, and < are all
// single identifiers.
func isSymbolChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', isDigit(ch):
		return true
	}
	switch ch {
	case '+', '-', '*', '/', '<', '>', '=', '?', '!', '.', '_', '%', '&', '^', '~':
		return true
	}
	return false
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	l.skipBlanks()

	start := l.curPos()
	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Span: l.makeSpan(start)}
	}

	ch := l.peek()
	switch {
	case ch == '(':
		l.advance()
		return token.Token{Kind: token.LPAREN, Lexeme: "(", Span: l.makeSpan(start)}
	case ch == ')':
		l.advance()
		return token.Token{Kind: token.RPAREN, Lexeme: ")", Span: l.makeSpan(start)}
	case ch == '[':
		l.advance()
		return token.Token{Kind: token.LBRACKET, Lexeme: "[", Span: l.makeSpan(start)}
	case ch == ']':
		l.advance()
		return token.Token{Kind: token.RBRACKET, Lexeme: "]", Span: l.makeSpan(start)}
	case ch == '"':
		return l.readString(start)
	case ch == '#':
		return l.readHash(start)
	case isDigit(ch):
		return l.readNumber(start)
	case (ch == '+' || ch == '-') && isDigit(l.peekNext()):
		return l.readNumber(start)
	case isSymbolChar(ch):
		return l.readIdent(start)
	default:
		l.advance()
		s := l.makeSpan(start)
		l.addError("E0001", s, "unexpected character %q", string(ch))
		return token.Token{Kind: token.ILLEGAL, Lexeme: string(ch), Span: s}
	}
}

// readNumber scans an integer literal, with an optional leading sign.
func (l *Lexer) readNumber(start span.Position) token.Token {
	if ch := l.peek(); ch == '+' || ch == '-' {
		l.advance()
	}
	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}
	// A digit run followed by more symbol characters is a malformed number,
	// not an identifier: reject 1x rather than lexing it as a name.
	if l.pos < len(l.source) && isSymbolChar(l.peek()) {
		for l.pos < len(l.source) && isSymbolChar(l.peek()) {
			l.advance()
		}
		s := l.makeSpan(start)
		lexeme := l.source[start.Offset:l.pos]
		l.addError("E0002", s, "malformed number %q", lexeme)
		return token.Token{Kind: token.ILLEGAL, Lexeme: lexeme, Span: s}
	}
	return token.Token{
		Kind:   token.INT,
		Lexeme: l.source[start.Offset:l.pos],
		Span:   l.makeSpan(start),
	}
}

// readIdent scans an identifier or keyword.
func (l *Lexer) readIdent(start span.Position) token.Token {
	for l.pos < len(l.source) && isSymbolChar(l.peek()) {
		l.advance()
	}
	lexeme := l.source[start.Offset:l.pos]
	return token.Token{
		Kind:   token.LookupIdent(lexeme),
		Lexeme: lexeme,
		Span:   l.makeSpan(start),
	}
}

// readString scans a double-quoted string literal. The returned lexeme is
// the decoded string contents, without the quotes.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // opening quote
	var out []byte
	for {
		if l.pos >= len(l.source) || l.peek() == '\n' {
			s := l.makeSpan(start)
			l.addError("E0003", s, "unterminated string literal")
			return token.Token{Kind: token.ILLEGAL, Lexeme: string(out), Span: s}
		}
		ch := l.advance()
		if ch == '"' {
			break
		}
		if ch == '\\' {
			if l.pos >= len(l.source) {
				continue
			}
			esc := l.advance()
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				l.addError("E0004", l.makeSpan(start), "unknown escape sequence \\%s", string(esc))
			}
			continue
		}
		out = append(out, ch)
	}
	return token.Token{
		Kind:   token.STRING,
		Lexeme: string(out),
		Span:   l.makeSpan(start),
	}
}

// readHash scans #true, #false and their short forms.
func (l *Lexer) readHash(start span.Position) token.Token {
	l.advance() // '#'
	for l.pos < len(l.source) && isSymbolChar(l.peek()) {
		l.advance()
	}
	lexeme := l.source[start.Offset:l.pos]
	switch lexeme {
	case "#true", "#t":
		return token.Token{Kind: token.BOOLEAN, Lexeme: "#true", Span: l.makeSpan(start)}
	case "#false", "#f":
		return token.Token{Kind: token.BOOLEAN, Lexeme: "#false", Span: l.makeSpan(start)}
	}
	s := l.makeSpan(start)
	l.addError("E0005", s, "unknown literal %q", lexeme)
	return token.Token{Kind: token.ILLEGAL, Lexeme: lexeme, Span: s}
}
