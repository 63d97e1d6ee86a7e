package anf

import (
	"fmt"
)

// Validate checks lowered declarations and returns a list of error
// messages. An empty slice means the declarations are well formed: every
// operand is a bound atom, no name is rebound while still in scope, every
// chain ends in a return, and switch arms carry distinct tags.
func Validate(decls []*Decl) []string {
	globals := make(map[string]bool)
	var errors []string
	for _, d := range decls {
		if globals[d.Name] {
			errors = append(errors, fmt.Sprintf("function %s declared twice", d.Name))
		}
		globals[d.Name] = true
	}
	for _, d := range decls {
		errors = append(errors, ValidateDecl(d, globals)...)
	}
	return errors
}

// ValidateDecl checks one declaration against the set of top-level names.
// It does not modify its arguments and may run concurrently.
func ValidateDecl(d *Decl, globals map[string]bool) []string {
	v := &validator{fn: d.Name}
	sc := newEnv(nil)
	for name := range globals {
		sc.names[name] = true
	}
	v.decl(sc, d)
	return v.errors
}

type env struct {
	parent *env
	names  map[string]bool
}

func newEnv(parent *env) *env {
	return &env{parent: parent, names: make(map[string]bool)}
}

func (e *env) has(name string) bool {
	for sc := e; sc != nil; sc = sc.parent {
		if sc.names[name] {
			return true
		}
	}
	return false
}

type validator struct {
	fn     string
	errors []string
}

func (v *validator) errorf(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf("function %s: ", v.fn)+fmt.Sprintf(format, args...))
}

func (v *validator) decl(sc *env, d *Decl) {
	if d.Name == "" {
		v.errorf("declaration has empty name")
	}
	inner := newEnv(sc)
	for _, p := range d.Params {
		v.define(inner, p)
	}
	if d.Body == nil {
		v.errorf("%s has nil body", d.Name)
		return
	}
	v.chain(inner, d.Body)
}

func (v *validator) define(sc *env, name string) {
	if name == "" {
		v.errorf("step binds an empty name")
		return
	}
	if sc.has(name) {
		v.errorf("name %s is rebound while in scope", name)
	}
	sc.names[name] = true
}

func (v *validator) atom(sc *env, a Atom, what string) {
	if a == nil {
		v.errorf("%s has nil operand", what)
		return
	}
	if x, ok := a.(Var); ok && !sc.has(x.Name) {
		v.errorf("%s uses unbound name %s", what, x.Name)
	}
}

// chain walks one binding chain. Names bound inside a branch stay inside
// it; only the branch step's own Bind is visible to its continuation.
func (v *validator) chain(sc *env, s Step) {
	sc = newEnv(sc)
	for {
		if s == nil {
			v.errorf("chain does not end in return")
			return
		}
		switch st := s.(type) {
		case *Retn:
			v.atom(sc, st.Arg, "return")
			return
		case *LetRec:
			if len(st.Decls) == 0 {
				v.errorf("letrec with no declarations")
			}
			for _, d := range st.Decls {
				v.define(sc, d.Name)
			}
			for _, d := range st.Decls {
				v.decl(sc, d)
			}
		case *UnOp:
			v.atom(sc, st.Arg, st.Prim.String())
			v.define(sc, st.Bind)
		case *BinOp:
			v.atom(sc, st.Arg1, st.Prim.String())
			v.atom(sc, st.Arg2, st.Prim.String())
			v.define(sc, st.Bind)
		case *Call:
			v.atom(sc, st.Func, "call")
			for _, a := range st.Args {
				v.atom(sc, a, "call")
			}
			v.define(sc, st.Bind)
		case *ExtCall:
			if st.Func == "" {
				v.errorf("foreign call has empty name")
			}
			for _, a := range st.Args {
				v.atom(sc, a, "foreign call "+st.Func)
			}
			v.define(sc, st.Bind)
		case *Alloc:
			if st.Size < 1 {
				v.errorf("alloc of %d words", st.Size)
			}
			v.define(sc, st.Bind)
		case *Load:
			v.atom(sc, st.Arg, "load")
			v.define(sc, st.Bind)
		case *Store:
			v.atom(sc, st.Arg, "store")
			v.atom(sc, st.Value, "store")
		case *Offset:
			v.atom(sc, st.Arg, "offset")
			v.define(sc, st.Bind)
		case *Ifte:
			v.atom(sc, st.Cond, "if")
			v.chain(sc, st.Then)
			v.chain(sc, st.Else)
			v.define(sc, st.Bind)
		case *Switch:
			v.atom(sc, st.Arg, "switch")
			if len(st.Cases) == 0 && st.Default == nil {
				v.errorf("switch %s has no arms", st.Bind)
			}
			seen := make(map[int]bool)
			for _, c := range st.Cases {
				if seen[c.Tag] {
					v.errorf("switch %s has duplicate case %d", st.Bind, c.Tag)
				}
				seen[c.Tag] = true
				v.chain(sc, c.Body)
			}
			if st.Default != nil {
				v.chain(sc, st.Default)
			}
			v.define(sc, st.Bind)
		default:
			v.errorf("unknown step %T", s)
			return
		}
		s = Next(s)
	}
}
