package backend

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/lhaig/anfc/internal/anf"
)

// Backend is the interface that all output renderers implement.
type Backend interface {
	// Name returns the backend name (e.g., "text", "json")
	Name() string
	// Extension returns the file extension for rendered output.
	Extension() string
	// Generate renders the lowered declarations of one unit.
	Generate(decls []*anf.Decl) ([]byte, error)
}

var registry = map[string]Backend{
	"text": &TextBackend{},
	"json": &JSONBackend{},
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	b, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown backend: %s", name)
	}
	return b, nil
}

// Names returns the registered backend names in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
