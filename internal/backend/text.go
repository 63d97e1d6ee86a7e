package backend

import "github.com/lhaig/anfc/internal/anf"

// TextBackend renders declarations in the textual ANF format.
type TextBackend struct{}

// Name returns the backend name.
func (b *TextBackend) Name() string {
	return "text"
}

// Extension returns the file extension for text output.
func (b *TextBackend) Extension() string {
	return ".anf"
}

// Generate renders every declaration, separated by blank lines.
func (b *TextBackend) Generate(decls []*anf.Decl) ([]byte, error) {
	return []byte(anf.PrintAll(decls)), nil
}
