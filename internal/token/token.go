// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"

	"islet/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals and names
	IDENT   // identifiers: x, posn-x, string=?
	INT     // integer literals: 42, -7
	STRING  // string literals: "hello"
	BOOLEAN // #true, #false

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Keywords
	KW_DEFINE
	KW_DEFINE_STRUCT
	KW_LAMBDA
	KW_LOCAL
	KW_COND
	KW_ELSE
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:   "IDENT",
	INT:     "INT",
	STRING:  "STRING",
	BOOLEAN: "BOOLEAN",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",

	KW_DEFINE:        "define",
	KW_DEFINE_STRUCT: "define-struct",
	KW_LAMBDA:        "lambda",
	KW_LOCAL:         "local",
	KW_COND:          "cond",
	KW_ELSE:          "else",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_DEFINE && k <= KW_ELSE
}

// IsOpen reports whether the kind opens a form.
func (k Kind) IsOpen() bool {
	return k == LPAREN || k == LBRACKET
}

// IsClose reports whether the kind closes a form.
func (k Kind) IsClose() bool {
	return k == RPAREN || k == RBRACKET
}

var keywords = map[string]Kind{
	"define":        KW_DEFINE,
	"define-struct": KW_DEFINE_STRUCT,
	"lambda":        KW_LAMBDA,
	"local":         KW_LOCAL,
	"cond":          KW_COND,
	"else":          KW_ELSE,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a
// keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token is a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
