package pretty

import "testing"

func TestWriterIndentation(t *testing.T) {
	w := New()
	w.WriteString("hello")
	w.Indent()
	w.Newline()
	w.WriteString("world")
	w.Indent()
	w.Newline()
	w.WriteString("hello")
	w.Dedent()
	w.Newline()
	w.WriteString("world")
	w.Dedent()
	w.Newline()
	w.WriteString("hello world!")

	expected := "hello\n  world\n    hello\n  world\nhello world!"
	if got := w.String(); got != expected {
		t.Errorf("unexpected output:\n%s\nexpected:\n%s", got, expected)
	}
}

func TestWriterDedentFloor(t *testing.T) {
	w := New()
	w.Dedent()
	w.Dedent()
	if w.Level() != 0 {
		t.Errorf("expected level 0, got %d", w.Level())
	}
	w.Newline()
	w.WriteString("x")
	if got := w.String(); got != "\nx" {
		t.Errorf("expected no indentation, got %q", got)
	}
}

func TestWriterPrintf(t *testing.T) {
	w := New()
	w.Printf("let %s = %d;", "x", 3)
	if got := w.String(); got != "let x = 3;" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRealAndChar(t *testing.T) {
	tests := []struct {
		got, expected string
	}{
		{Real(1), "1.0"},
		{Real(2.5), "2.5"},
		{Real(-0.125), "-0.125"},
		{Real(1e21), "1e+21"},
		{Char('a'), "'a'"},
		{Char('\n'), `'\n'`},
		{Char('\''), `'\''`},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.got)
		}
	}
}
