// Package pretty provides the indentation-aware writer shared by the
// surface and IR printers.
package pretty

import (
	"fmt"
	"strconv"
	"strings"
)

// Writer accumulates text and tracks the current indentation level.
// Newline starts a fresh line at the current level; Indent and Dedent
// change the level for subsequent lines only.
type Writer struct {
	sb     strings.Builder
	indent int
	width  int
}

// New returns a Writer that indents by two spaces per level.
func New() *Writer {
	return &Writer{width: 2}
}

// Indent increases the indentation level.
func (w *Writer) Indent() { w.indent++ }

// Dedent decreases the indentation level. It never goes below zero.
func (w *Writer) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Level reports the current indentation level.
func (w *Writer) Level() int { return w.indent }

// Newline ends the current line and writes the indentation for the next.
func (w *Writer) Newline() {
	w.sb.WriteByte('\n')
	w.sb.WriteString(strings.Repeat(" ", w.indent*w.width))
}

// WriteString writes s verbatim.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Printf writes formatted text.
func (w *Writer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.sb.String()
}

// Real formats a real literal so that it always reads back as a real.
func Real(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}

// Char formats a character literal in single quotes.
func Char(r rune) string {
	switch r {
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	case '\\':
		return `'\\'`
	case '\'':
		return `'\''`
	case 0:
		return `'\0'`
	}
	return "'" + string(r) + "'"
}
