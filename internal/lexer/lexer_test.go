package lexer

import (
	"testing"
)

func TestNextToken_Operators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "arrows",
			input:    "=> -> =",
			expected: []TokenType{ARROW, RARROW, ASSIGN, EOF},
		},
		{
			name:     "call sigils",
			input:    "@iadd #puts",
			expected: []TokenType{AT, IDENT, HASH, IDENT, EOF},
		},
		{
			name:     "bar and minus",
			input:    "| - _",
			expected: []TokenType{BAR, MINUS, WILDCARD, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			for i, expectedType := range tt.expected {
				tok := l.NextToken()
				if tok.Type != expectedType {
					t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
						i, expectedType, tok.Type)
				}
			}
		})
	}
}

func TestNextToken_Delimiters(t *testing.T) {
	input := "( ) { } [ ] , : ;"
	expected := []TokenType{
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
		COMMA, COLON, SEMICOLON, EOF,
	}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"fun", FUN},
		{"data", DATA},
		{"type", TYPE},
		{"extern", EXTERN},
		{"let", LET},
		{"letrec", LETREC},
		{"in", IN},
		{"case", CASE},
		{"of", OF},
		{"end", END},
		{"fn", FN},
		{"true", TRUE},
		{"false", FALSE},
		{"Int", INT_TYPE},
		{"Real", REAL_TYPE},
		{"Bool", BOOL_TYPE},
		{"Char", CHAR_TYPE},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tok := New(tt.keyword).NextToken()
			if tok.Type != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, tok.Type)
			}
		})
	}
}

func TestNextToken_IdentifiersAndConstructors(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"len", IDENT},
		{"_tail", IDENT},
		{"x1", IDENT},
		{"Nil", CONS},
		{"Cons", CONS},
		{"Integer", CONS},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, tok.Type)
		}
		if tok.Literal != tt.input {
			t.Errorf("%q: literal mismatch %q", tt.input, tok.Literal)
		}
	}
}

func TestNextToken_Numbers(t *testing.T) {
	l := New("42 3.25 7.")
	tok := l.NextToken()
	if tok.Type != INT_LIT || tok.Literal != "42" {
		t.Errorf("expected INT_LIT 42, got %s", tok)
	}
	tok = l.NextToken()
	if tok.Type != REAL_LIT || tok.Literal != "3.25" {
		t.Errorf("expected REAL_LIT 3.25, got %s", tok)
	}
	tok = l.NextToken()
	if tok.Type != INT_LIT || tok.Literal != "7" {
		t.Errorf("expected INT_LIT 7, got %s", tok)
	}
	if tok = l.NextToken(); tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL for stray '.', got %s", tok)
	}
}

func TestNextToken_CharLiterals(t *testing.T) {
	tests := []struct {
		input string
		value string
		ok    bool
	}{
		{`'a'`, "a", true},
		{`'\n'`, "\n", true},
		{`'\''`, "'", true},
		{`''`, "", false},
		{`'ab'`, "", false},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if !tt.ok {
			if tok.Type != ILLEGAL {
				t.Errorf("%s: expected ILLEGAL, got %s", tt.input, tok)
			}
			continue
		}
		if tok.Type != CHAR_LIT || tok.Literal != tt.value {
			t.Errorf("%s: expected CHAR_LIT %q, got %s", tt.input, tt.value, tok)
		}
	}
}

func TestNextToken_Comments(t *testing.T) {
	input := `// leading comment
fun /* inline */ f
/* multi
line */ end`
	l := New(input)
	expected := []TokenType{FUN, IDENT, END, EOF}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tok.Type)
		}
	}
}

func TestNextToken_Positions(t *testing.T) {
	l := New("fun\n  len")
	tok := l.NextToken()
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("expected 1:1, got %d:%d", tok.Line, tok.Column)
	}
	tok = l.NextToken()
	if tok.Line != 2 || tok.Column != 3 {
		t.Errorf("expected 2:3, got %d:%d", tok.Line, tok.Column)
	}
}

func TestTokenize(t *testing.T) {
	tokens := New("case l of | Nil => 0 end").Tokenize()
	expected := []TokenType{CASE, IDENT, OF, BAR, CONS, ARROW, INT_LIT, END, EOF}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
}
