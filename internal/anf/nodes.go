// Package anf defines the lowered intermediate representation: flat
// function declarations whose bodies are chains of steps over atoms.
package anf

import (
	"strconv"

	"github.com/lhaig/anfc/internal/pretty"
)

// Atom is a trivially evaluable operand: a bound name or an immediate.
type Atom interface {
	atomNode()
	String() string
}

// Var references a bound name.
type Var struct{ Name string }

// Int is an immediate integer.
type Int struct{ Value int64 }

// Real is an immediate float.
type Real struct{ Value float64 }

// Bool is an immediate boolean.
type Bool struct{ Value bool }

// Char is an immediate character.
type Char struct{ Value rune }

// Unit is the unit value.
type Unit struct{}

func (Var) atomNode()  {}
func (Int) atomNode()  {}
func (Real) atomNode() {}
func (Bool) atomNode() {}
func (Char) atomNode() {}
func (Unit) atomNode() {}

func (a Var) String() string  { return a.Name }
func (a Int) String() string  { return strconv.FormatInt(a.Value, 10) }
func (a Real) String() string { return pretty.Real(a.Value) }
func (a Bool) String() string { return strconv.FormatBool(a.Value) }
func (a Char) String() string { return pretty.Char(a.Value) }
func (Unit) String() string   { return "()" }

// V is shorthand for Var{name}.
func V(name string) Atom { return Var{Name: name} }

// UnPrim is a one-operand primitive.
type UnPrim int

const (
	Move UnPrim = iota
	INeg
	BNot
)

var unPrimNames = [...]string{Move: "move", INeg: "ineg", BNot: "bnot"}

func (p UnPrim) String() string {
	if int(p) >= 0 && int(p) < len(unPrimNames) {
		return unPrimNames[p]
	}
	return "unop?"
}

// BinPrim is a two-operand primitive.
type BinPrim int

const (
	IAdd BinPrim = iota
	ISub
	IMul
	IDiv
	IRem
	RAdd
	RSub
	RMul
	RDiv
	BAnd
	BOr
	ICmpEq
	ICmpNe
	ICmpGr
	ICmpGe
	ICmpLs
	ICmpLe
	RCmpEq
	RCmpNe
	RCmpGr
	RCmpGe
	RCmpLs
	RCmpLe
	CCmpEq
)

var binPrimNames = [...]string{
	IAdd: "iadd", ISub: "isub", IMul: "imul", IDiv: "idiv", IRem: "irem",
	RAdd: "radd", RSub: "rsub", RMul: "rmul", RDiv: "rdiv",
	BAnd: "band", BOr: "bor",
	ICmpEq: "icmpeq", ICmpNe: "icmpne", ICmpGr: "icmpgr", ICmpGe: "icmpge", ICmpLs: "icmpls", ICmpLe: "icmple",
	RCmpEq: "rcmpeq", RCmpNe: "rcmpne", RCmpGr: "rcmpgr", RCmpGe: "rcmpge", RCmpLs: "rcmpls", RCmpLe: "rcmple",
	CCmpEq: "ccmpeq",
}

func (p BinPrim) String() string {
	if int(p) >= 0 && int(p) < len(binPrimNames) {
		return binPrimNames[p]
	}
	return "binop?"
}

// Step is one node of a binding chain. Every step except Retn names its
// result (if any) and continues with Cont.
type Step interface {
	stepNode()
}

// LetRec introduces a group of mutually recursive functions visible in
// their own bodies and in Cont.
type LetRec struct {
	Decls []*Decl
	Cont  Step
}

// UnOp binds the result of a one-operand primitive.
type UnOp struct {
	Bind string
	Prim UnPrim
	Arg  Atom
	Cont Step
}

// BinOp binds the result of a two-operand primitive.
type BinOp struct {
	Bind string
	Prim BinPrim
	Arg1 Atom
	Arg2 Atom
	Cont Step
}

// Call binds the result of calling a function by name or code pointer.
type Call struct {
	Bind string
	Func Atom
	Args []Atom
	Cont Step
}

// ExtCall binds the result of a foreign call.
type ExtCall struct {
	Bind string
	Func string
	Args []Atom
	Cont Step
}

// Retn ends a chain. Inside an Ifte or Switch branch it yields the
// branch's value to the enclosing step's Bind.
type Retn struct {
	Arg Atom
}

// Alloc binds a fresh block of Size words.
type Alloc struct {
	Bind string
	Size int
	Cont Step
}

// Load binds word Index of block Arg.
type Load struct {
	Bind  string
	Arg   Atom
	Index int
	Cont  Step
}

// Store writes Value into word Index of block Arg.
type Store struct {
	Arg   Atom
	Index int
	Value Atom
	Cont  Step
}

// Offset binds a pointer Index words past Arg.
type Offset struct {
	Bind  string
	Arg   Atom
	Index int
	Cont  Step
}

// Ifte runs Then when Cond is true and Else otherwise, binds the branch
// result and continues.
type Ifte struct {
	Bind string
	Cond Atom
	Then Step
	Else Step
	Cont Step
}

// Case is one arm of a Switch.
type Case struct {
	Tag  int
	Body Step
}

// Switch dispatches on an integer tag. Default is nil when every tag has
// an arm.
type Switch struct {
	Bind    string
	Arg     Atom
	Cases   []*Case
	Default Step
	Cont    Step
}

func (*LetRec) stepNode()  {}
func (*UnOp) stepNode()    {}
func (*BinOp) stepNode()   {}
func (*Call) stepNode()    {}
func (*ExtCall) stepNode() {}
func (*Retn) stepNode()    {}
func (*Alloc) stepNode()   {}
func (*Load) stepNode()    {}
func (*Store) stepNode()   {}
func (*Offset) stepNode()  {}
func (*Ifte) stepNode()    {}
func (*Switch) stepNode()  {}

// Decl is a lowered function.
type Decl struct {
	Name   string
	Params []string
	Body   Step
}

// Next returns the continuation of s, or nil for Retn.
func Next(s Step) Step {
	switch st := s.(type) {
	case *LetRec:
		return st.Cont
	case *UnOp:
		return st.Cont
	case *BinOp:
		return st.Cont
	case *Call:
		return st.Cont
	case *ExtCall:
		return st.Cont
	case *Alloc:
		return st.Cont
	case *Load:
		return st.Cont
	case *Store:
		return st.Cont
	case *Offset:
		return st.Cont
	case *Ifte:
		return st.Cont
	case *Switch:
		return st.Cont
	}
	return nil
}

// Walk calls f on every step reachable from s: continuations, branches and
// the bodies of nested declarations. When f returns false the rest of
// that chain is skipped.
func Walk(s Step, f func(Step) bool) {
	for s != nil {
		if !f(s) {
			return
		}
		switch st := s.(type) {
		case *LetRec:
			for _, d := range st.Decls {
				Walk(d.Body, f)
			}
		case *Ifte:
			Walk(st.Then, f)
			Walk(st.Else, f)
		case *Switch:
			for _, c := range st.Cases {
				Walk(c.Body, f)
			}
			Walk(st.Default, f)
		}
		s = Next(s)
	}
}

// CountSteps returns the number of steps in d, including nested bodies.
func CountSteps(d *Decl) int {
	n := 0
	Walk(d.Body, func(Step) bool { n++; return true })
	return n
}
