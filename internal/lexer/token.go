package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT    // x, len, myVariable
	CONS     // Nil, Cons
	INT_LIT  // 123
	REAL_LIT // 123.45
	CHAR_LIT // 'a'

	// Keywords
	FUN
	DATA
	TYPE
	EXTERN
	LET
	LETREC
	IN
	CASE
	OF
	END
	FN
	TRUE
	FALSE

	// Type keywords
	INT_TYPE
	REAL_TYPE
	BOOL_TYPE
	CHAR_TYPE

	// Operators
	ASSIGN   // =
	ARROW    // =>
	RARROW   // ->
	BAR      // |
	AT       // @
	HASH     // #
	MINUS    // -
	WILDCARD // _

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	IDENT:     "IDENT",
	CONS:      "CONS",
	INT_LIT:   "INT_LIT",
	REAL_LIT:  "REAL_LIT",
	CHAR_LIT:  "CHAR_LIT",
	FUN:       "fun",
	DATA:      "data",
	TYPE:      "type",
	EXTERN:    "extern",
	LET:       "let",
	LETREC:    "letrec",
	IN:        "in",
	CASE:      "case",
	OF:        "of",
	END:       "end",
	FN:        "fn",
	TRUE:      "true",
	FALSE:     "false",
	INT_TYPE:  "Int",
	REAL_TYPE: "Real",
	BOOL_TYPE: "Bool",
	CHAR_TYPE: "Char",
	ASSIGN:    "=",
	ARROW:     "=>",
	RARROW:    "->",
	BAR:       "|",
	AT:        "@",
	HASH:      "#",
	MINUS:     "-",
	WILDCARD:  "_",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	COLON:     ":",
	SEMICOLON: ";",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("Token{%s, %q, %d:%d}", t.Type, t.Literal, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"fun":    FUN,
	"data":   DATA,
	"type":   TYPE,
	"extern": EXTERN,
	"let":    LET,
	"letrec": LETREC,
	"in":     IN,
	"case":   CASE,
	"of":     OF,
	"end":    END,
	"fn":     FN,
	"true":   TRUE,
	"false":  FALSE,
	"Int":    INT_TYPE,
	"Real":   REAL_TYPE,
	"Bool":   BOOL_TYPE,
	"Char":   CHAR_TYPE,
	"_":      WILDCARD,
}

// LookupIdent checks if an identifier is a keyword and returns the appropriate token type.
// Non-keyword identifiers starting with an upper-case letter are constructor names.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if ident[0] >= 'A' && ident[0] <= 'Z' {
		return CONS
	}
	return IDENT
}
