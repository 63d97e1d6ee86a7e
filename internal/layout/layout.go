// Package layout assigns dense tags to data constructors and fixes where a
// constructor block keeps its tag and fields.
package layout

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
)

// Policy selects where a constructor block stores its tag. It is fixed for
// a whole compilation unit.
type Policy int

const (
	// Header keeps the tag in a word before field 0. A value points at
	// field 0, so field i is at index i and the tag at index -1.
	Header Policy = iota
	// InBand keeps the tag at index 0 and field i at index i+1.
	InBand
)

func (p Policy) String() string {
	switch p {
	case Header:
		return "header"
	case InBand:
		return "inband"
	default:
		return "unknown"
	}
}

// ParsePolicy accepts the names printed by String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "header", "":
		return Header, nil
	case "inband", "in-band":
		return InBand, nil
	}
	return Header, errors.Errorf("unknown tag policy %q (want header or inband)", s)
}

// Constructor is the layout of one variant.
type Constructor struct {
	Name  string
	Type  string
	Tag   int
	Arity int
}

// DataType lists the constructors of one type in tag order.
type DataType struct {
	Name         string
	Constructors []*Constructor
}

// Table maps constructor names to their layout. It is built once and only
// read afterwards.
type Table struct {
	policy Policy
	cons   map[string]*Constructor
	types  map[string]*DataType
	order  []string
}

// New builds a table from data declarations. Tags follow declaration order
// from 0. A constructor name declared twice fails with DuplicateTag.
func New(policy Policy, decls []*ast.DataDecl) (*Table, error) {
	t := &Table{
		policy: policy,
		cons:   make(map[string]*Constructor),
		types:  make(map[string]*DataType),
	}
	for _, d := range decls {
		if _, dup := t.types[d.Name]; dup {
			return nil, diagnostic.Internalf(diagnostic.DuplicateTag, "data type '%s' declared twice", d.Name)
		}
		dt := &DataType{Name: d.Name}
		for i, v := range d.Variants {
			if prev, dup := t.cons[v.Cons]; dup {
				return nil, diagnostic.Internalf(diagnostic.DuplicateTag,
					"constructor '%s' of '%s' already declared in '%s'", v.Cons, d.Name, prev.Type)
			}
			c := &Constructor{Name: v.Cons, Type: d.Name, Tag: i, Arity: len(v.Fields)}
			t.cons[v.Cons] = c
			dt.Constructors = append(dt.Constructors, c)
		}
		t.types[d.Name] = dt
		t.order = append(t.order, d.Name)
	}
	return t, nil
}

// Policy returns the tag storage policy.
func (t *Table) Policy() Policy {
	return t.policy
}

// Lookup returns the layout of a constructor or an UnknownConstructor error.
func (t *Table) Lookup(name string) (*Constructor, error) {
	c, ok := t.cons[name]
	if !ok {
		return nil, diagnostic.Internalf(diagnostic.UnknownConstructor, "constructor '%s' has no tag", name)
	}
	return c, nil
}

// Siblings returns every constructor of the type c belongs to, in tag order.
func (t *Table) Siblings(c *Constructor) []*Constructor {
	return t.types[c.Type].Constructors
}

// Types returns the declared data types in declaration order.
func (t *Table) Types() []*DataType {
	out := make([]*DataType, len(t.order))
	for i, name := range t.order {
		out[i] = t.types[name]
	}
	return out
}

// TagIndex is the block index holding the tag.
func (t *Table) TagIndex() int {
	if t.policy == Header {
		return -1
	}
	return 0
}

// FieldIndex is the block index of field i.
func (t *Table) FieldIndex(i int) int {
	if t.policy == Header {
		return i
	}
	return i + 1
}

// BlockSize is the number of words to allocate for c.
func (t *Table) BlockSize(c *Constructor) int {
	return c.Arity + 1
}

// FieldBase is the offset from the allocated block to the value pointer.
// Zero means the block itself is the value.
func (t *Table) FieldBase() int {
	if t.policy == Header {
		return 1
	}
	return 0
}
