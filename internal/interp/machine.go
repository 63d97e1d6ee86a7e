// Package interp evaluates lowered ANF declarations directly. It exists to
// check that lowering preserves meaning; it is not an optimising runtime.
package interp

import (
	"github.com/pkg/errors"

	"github.com/lhaig/anfc/internal/anf"
)

// MatchFailure is the foreign function lowered code calls when no case
// rule matches.
const MatchFailure = "match_failure"

// ErrMatchFailure is returned when evaluation reaches the match-failure
// trap and the foreign table does not override it.
var ErrMatchFailure = errors.New("no rule matched")

// Foreign implements one foreign function.
type Foreign func(args []Value) (Value, error)

// MaxDepth bounds the call depth of one evaluation.
const MaxDepth = 10000

type env struct {
	parent *env
	vars   map[string]Value
}

func newEnv(parent *env) *env {
	return &env{parent: parent, vars: make(map[string]Value)}
}

func (e *env) lookup(name string) (Value, bool) {
	for sc := e; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Machine runs the declarations of one unit.
type Machine struct {
	globals *env
	foreign map[string]Foreign
	depth   int

	// Steps counts the steps executed so far.
	Steps int
}

// New returns a machine over decls. Foreign calls are resolved in foreign,
// which may be nil.
func New(decls []*anf.Decl, foreign map[string]Foreign) *Machine {
	m := &Machine{globals: newEnv(nil), foreign: foreign}
	for _, d := range decls {
		m.globals.vars[d.Name] = Value{Kind: KindFunc, fn: &function{decl: d, env: m.globals}}
	}
	return m
}

// Call runs the top-level function name on args.
func (m *Machine) Call(name string, args ...Value) (Value, error) {
	f, ok := m.globals.vars[name]
	if !ok {
		return Value{}, errors.Errorf("no function %s", name)
	}
	return m.apply(f, args)
}

// Apply runs a code pointer on args.
func (m *Machine) Apply(f Value, args ...Value) (Value, error) {
	return m.apply(f, args)
}

func (m *Machine) apply(f Value, args []Value) (Value, error) {
	if f.Kind != KindFunc {
		return Value{}, errors.Errorf("call of %s value", f.Kind)
	}
	d := f.fn.decl
	if len(args) != len(d.Params) {
		return Value{}, errors.Errorf("%s takes %d arguments, got %d", d.Name, len(d.Params), len(args))
	}
	if m.depth >= MaxDepth {
		return Value{}, errors.Errorf("call depth exceeds %d in %s", MaxDepth, d.Name)
	}
	m.depth++
	defer func() { m.depth-- }()

	sc := newEnv(f.fn.env)
	for i, p := range d.Params {
		sc.vars[p] = args[i]
	}
	v, err := m.exec(sc, d.Body)
	return v, errors.Wrapf(err, "in %s", d.Name)
}

func (m *Machine) atom(e *env, a anf.Atom) (Value, error) {
	switch at := a.(type) {
	case anf.Var:
		v, ok := e.lookup(at.Name)
		if !ok {
			return Value{}, errors.Errorf("unbound name %s", at.Name)
		}
		return v, nil
	case anf.Int:
		return Int(at.Value), nil
	case anf.Real:
		return Real(at.Value), nil
	case anf.Bool:
		return Bool(at.Value), nil
	case anf.Char:
		return Char(at.Value), nil
	case anf.Unit:
		return Unit(), nil
	}
	return Value{}, errors.Errorf("unknown atom %T", a)
}

func (m *Machine) atoms(e *env, as []anf.Atom) ([]Value, error) {
	out := make([]Value, len(as))
	for i, a := range as {
		v, err := m.atom(e, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// exec runs one chain in a scope of its own and returns the value of its
// return step.
func (m *Machine) exec(parent *env, s anf.Step) (Value, error) {
	e := newEnv(parent)
	for s != nil {
		m.Steps++
		switch st := s.(type) {
		case *anf.Retn:
			return m.atom(e, st.Arg)

		case *anf.LetRec:
			for _, d := range st.Decls {
				e.vars[d.Name] = Value{Kind: KindFunc, fn: &function{decl: d, env: e}}
			}

		case *anf.UnOp:
			a, err := m.atom(e, st.Arg)
			if err != nil {
				return Value{}, err
			}
			v, err := unary(st.Prim, a)
			if err != nil {
				return Value{}, err
			}
			e.vars[st.Bind] = v

		case *anf.BinOp:
			a, err := m.atom(e, st.Arg1)
			if err != nil {
				return Value{}, err
			}
			b, err := m.atom(e, st.Arg2)
			if err != nil {
				return Value{}, err
			}
			v, err := binary(st.Prim, a, b)
			if err != nil {
				return Value{}, err
			}
			e.vars[st.Bind] = v

		case *anf.Call:
			f, err := m.atom(e, st.Func)
			if err != nil {
				return Value{}, err
			}
			args, err := m.atoms(e, st.Args)
			if err != nil {
				return Value{}, err
			}
			v, err := m.apply(f, args)
			if err != nil {
				return Value{}, err
			}
			e.vars[st.Bind] = v

		case *anf.ExtCall:
			args, err := m.atoms(e, st.Args)
			if err != nil {
				return Value{}, err
			}
			v, err := m.extcall(st.Func, args)
			if err != nil {
				return Value{}, err
			}
			e.vars[st.Bind] = v

		case *anf.Alloc:
			if st.Size < 1 {
				return Value{}, errors.Errorf("alloc of %d words", st.Size)
			}
			e.vars[st.Bind] = ptr(&block{words: make([]Value, st.Size)}, 0)

		case *anf.Load:
			p, err := m.atom(e, st.Arg)
			if err != nil {
				return Value{}, err
			}
			v, err := p.Load(st.Index)
			if err != nil {
				return Value{}, err
			}
			e.vars[st.Bind] = v

		case *anf.Store:
			p, err := m.atom(e, st.Arg)
			if err != nil {
				return Value{}, err
			}
			v, err := m.atom(e, st.Value)
			if err != nil {
				return Value{}, err
			}
			if err := p.store(st.Index, v); err != nil {
				return Value{}, err
			}

		case *anf.Offset:
			p, err := m.atom(e, st.Arg)
			if err != nil {
				return Value{}, err
			}
			if p.Kind != KindPtr {
				return Value{}, errors.Errorf("offset of %s value", p.Kind)
			}
			e.vars[st.Bind] = ptr(p.blk, p.off+st.Index)

		case *anf.Ifte:
			c, err := m.atom(e, st.Cond)
			if err != nil {
				return Value{}, err
			}
			if c.Kind != KindBool {
				return Value{}, errors.Errorf("if on %s value", c.Kind)
			}
			branch := st.Else
			if c.Bool {
				branch = st.Then
			}
			v, err := m.exec(e, branch)
			if err != nil {
				return Value{}, err
			}
			e.vars[st.Bind] = v

		case *anf.Switch:
			t, err := m.atom(e, st.Arg)
			if err != nil {
				return Value{}, err
			}
			if t.Kind != KindInt {
				return Value{}, errors.Errorf("switch on %s value", t.Kind)
			}
			branch := st.Default
			for _, c := range st.Cases {
				if int64(c.Tag) == t.Int {
					branch = c.Body
					break
				}
			}
			if branch == nil {
				return Value{}, errors.Errorf("switch %s has no arm for tag %d", st.Bind, t.Int)
			}
			v, err := m.exec(e, branch)
			if err != nil {
				return Value{}, err
			}
			e.vars[st.Bind] = v

		default:
			return Value{}, errors.Errorf("unknown step %T", s)
		}
		s = anf.Next(s)
	}
	return Value{}, errors.New("chain does not end in return")
}

func (m *Machine) extcall(name string, args []Value) (Value, error) {
	if f, ok := m.foreign[name]; ok {
		v, err := f(args)
		return v, errors.Wrapf(err, "foreign %s", name)
	}
	if name == MatchFailure {
		return Value{}, errors.WithStack(ErrMatchFailure)
	}
	return Value{}, errors.Errorf("no foreign function %s", name)
}
