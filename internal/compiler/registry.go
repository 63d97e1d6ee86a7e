package compiler

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// SourceExt is the extension of surface source files.
const SourceExt = ".fun"

// UnitRegistry collects the compilation units named on a command line.
// Each file is a unit of its own; there are no imports between units, so
// the registry only has to find, read and order them.
type UnitRegistry struct {
	units map[string]string // cleaned path -> source
}

// NewUnitRegistry creates an empty registry.
func NewUnitRegistry() *UnitRegistry {
	return &UnitRegistry{units: make(map[string]string)}
}

// Add registers path. A directory contributes every source file below it;
// a file is taken whatever its extension. Adding the same file twice keeps
// one unit.
func (r *UnitRegistry) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", path)
	}
	if !info.IsDir() {
		return r.addFile(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != SourceExt {
			return nil
		}
		return r.addFile(p)
	})
}

func (r *UnitRegistry) addFile(path string) error {
	clean := filepath.Clean(path)
	if _, ok := r.units[clean]; ok {
		return nil
	}
	source, err := os.ReadFile(clean)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", clean)
	}
	r.units[clean] = string(source)
	return nil
}

// Len returns the number of registered units.
func (r *UnitRegistry) Len() int {
	return len(r.units)
}

// Units returns the registered units sorted by path, so output order does
// not depend on the order arguments were given in.
func (r *UnitRegistry) Units() []Unit {
	paths := make([]string, 0, len(r.units))
	for p := range r.units {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	units := make([]Unit, len(paths))
	for i, p := range paths {
		units[i] = Unit{Name: p, Source: r.units[p]}
	}
	return units
}

// Discover builds a registry from paths and returns its units.
func Discover(paths ...string) ([]Unit, error) {
	r := NewUnitRegistry()
	for _, p := range paths {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r.Units(), nil
}
