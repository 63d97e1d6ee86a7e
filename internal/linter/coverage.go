package linter

import (
	"strings"

	"github.com/lhaig/anfc/internal/ast"
)

// pat is a pattern reduced to what coverage cares about. Variables and
// unit literals are wildcards.
type pat interface {
	String() string
}

type wild struct{}

type cons struct {
	name string
	args []pat
}

type lit struct {
	value ast.Lit
}

func (wild) String() string { return "_" }

func (c cons) String() string {
	if len(c.args) == 0 {
		return c.name
	}
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.String()
	}
	return c.name + "(" + strings.Join(parts, ", ") + ")"
}

func (l lit) String() string { return ast.FormatLit(l.value) }

// head identifies the constructor or literal at the root of a pattern.
type head struct {
	cons  string
	lit   ast.Lit
	isLit bool
	arity int
}

// signature knows which constructors belong together.
type signature struct {
	typeOf   map[string]string
	arity    map[string]int
	siblings map[string][]string
}

func newSignature(decls []*ast.DataDecl) *signature {
	s := &signature{
		typeOf:   make(map[string]string),
		arity:    make(map[string]int),
		siblings: make(map[string][]string),
	}
	for _, d := range decls {
		for _, v := range d.Variants {
			s.typeOf[v.Cons] = d.Name
			s.arity[v.Cons] = len(v.Fields)
			s.siblings[d.Name] = append(s.siblings[d.Name], v.Cons)
		}
	}
	return s
}

func (s *signature) convert(p ast.Pattern) pat {
	switch pt := p.(type) {
	case *ast.ConsPattern:
		args := make([]pat, len(pt.Args))
		for i, a := range pt.Args {
			args[i] = s.convert(a)
		}
		return cons{name: pt.Cons, args: args}
	case *ast.LitPattern:
		if pt.Value.Kind == ast.LitUnit {
			return wild{}
		}
		return lit{value: pt.Value}
	}
	return wild{}
}

func headOf(p pat) (head, bool) {
	switch pt := p.(type) {
	case cons:
		return head{cons: pt.name, arity: len(pt.args)}, true
	case lit:
		return head{lit: pt.value, isLit: true}, true
	}
	return head{}, false
}

// heads returns the distinct heads of the first column in order.
func heads(rows [][]pat) []head {
	var out []head
	for _, r := range rows {
		h, ok := headOf(r[0])
		if !ok {
			continue
		}
		dup := false
		for _, o := range out {
			if o == h {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, h)
		}
	}
	return out
}

// complete returns every head the first column can take when hs already
// covers all of them, or nil otherwise. Only data types and booleans have
// a finite set of values.
func (s *signature) complete(hs []head) []head {
	if len(hs) == 0 {
		return nil
	}
	present := make(map[head]bool, len(hs))
	for _, h := range hs {
		present[h] = true
	}
	var all []head
	if hs[0].isLit {
		if hs[0].lit.Kind != ast.LitBool {
			return nil
		}
		all = []head{
			{lit: ast.BoolLit(true), isLit: true},
			{lit: ast.BoolLit(false), isLit: true},
		}
	} else {
		typ, ok := s.typeOf[hs[0].cons]
		if !ok {
			return nil
		}
		for _, c := range s.siblings[typ] {
			all = append(all, head{cons: c, arity: s.arity[c]})
		}
	}
	for _, h := range all {
		if !present[h] {
			return nil
		}
	}
	return all
}

// missing returns a head of the first column's type that hs lacks.
func (s *signature) missing(hs []head) pat {
	if len(hs) == 0 {
		return wild{}
	}
	present := make(map[head]bool, len(hs))
	for _, h := range hs {
		present[h] = true
	}
	if hs[0].isLit {
		if hs[0].lit.Kind == ast.LitBool {
			for _, b := range []bool{true, false} {
				h := head{lit: ast.BoolLit(b), isLit: true}
				if !present[h] {
					return lit{value: h.lit}
				}
			}
		}
		return wild{}
	}
	typ := s.typeOf[hs[0].cons]
	for _, c := range s.siblings[typ] {
		h := head{cons: c, arity: s.arity[c]}
		if !present[h] {
			return cons{name: c, args: wilds(h.arity)}
		}
	}
	return wild{}
}

func wilds(n int) []pat {
	out := make([]pat, n)
	for i := range out {
		out[i] = wild{}
	}
	return out
}

// specialize keeps the rows whose first column can be h and replaces that
// column by h's fields.
func specialize(rows [][]pat, h head) [][]pat {
	var out [][]pat
	for _, r := range rows {
		switch p := r[0].(type) {
		case wild:
			out = append(out, append(wilds(h.arity), r[1:]...))
		case cons:
			if !h.isLit && p.name == h.cons && len(p.args) == h.arity {
				out = append(out, append(append([]pat(nil), p.args...), r[1:]...))
			}
		case lit:
			if h.isLit && p.value == h.lit {
				out = append(out, append([]pat(nil), r[1:]...))
			}
		}
	}
	return out
}

// defaults keeps the rows whose first column is a wildcard.
func defaults(rows [][]pat) [][]pat {
	var out [][]pat
	for _, r := range rows {
		if _, ok := r[0].(wild); ok {
			out = append(out, append([]pat(nil), r[1:]...))
		}
	}
	return out
}

// useful reports whether some value matches vec but no row of rows.
func (s *signature) useful(rows [][]pat, vec []pat) bool {
	if len(vec) == 0 {
		return len(rows) == 0
	}
	if h, ok := headOf(vec[0]); ok {
		return s.useful(specialize(rows, h), specialize([][]pat{vec}, h)[0])
	}
	hs := heads(rows)
	if all := s.complete(hs); all != nil {
		for _, h := range all {
			if s.useful(specialize(rows, h), append(wilds(h.arity), vec[1:]...)) {
				return true
			}
		}
		return false
	}
	return s.useful(defaults(rows), vec[1:])
}

// witness returns a vector of n patterns no row matches, if there is one.
func (s *signature) witness(rows [][]pat, n int) ([]pat, bool) {
	if n == 0 {
		if len(rows) == 0 {
			return []pat{}, true
		}
		return nil, false
	}
	hs := heads(rows)
	if all := s.complete(hs); all != nil {
		for _, h := range all {
			w, ok := s.witness(specialize(rows, h), h.arity+n-1)
			if !ok {
				continue
			}
			var p pat
			if h.isLit {
				p = lit{value: h.lit}
			} else {
				p = cons{name: h.cons, args: w[:h.arity]}
			}
			return append([]pat{p}, w[h.arity:]...), true
		}
		return nil, false
	}
	w, ok := s.witness(defaults(rows), n-1)
	if !ok {
		return nil, false
	}
	return append([]pat{s.missing(hs)}, w...), true
}
