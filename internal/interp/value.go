package interp

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/pretty"
)

// Kind tags a run-time value.
type Kind int

const (
	KindUnit Kind = iota
	KindInt
	KindReal
	KindBool
	KindChar
	KindPtr
	KindFunc
)

var kindNames = [...]string{
	KindUnit: "unit",
	KindInt:  "int",
	KindReal: "real",
	KindBool: "bool",
	KindChar: "char",
	KindPtr:  "pointer",
	KindFunc: "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// block is one heap allocation. A pointer addresses a word inside it.
type block struct {
	words []Value
}

// function is a declaration together with the scope it was declared in.
type function struct {
	decl *anf.Decl
	env  *env
}

// Value is a machine word: a scalar, a pointer into a block, or a code
// pointer.
type Value struct {
	Kind Kind
	Int  int64
	Real float64
	Bool bool
	Char rune

	blk *block
	off int
	fn  *function
}

func Unit() Value { return Value{Kind: KindUnit} }
func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }
func Real(v float64) Value { return Value{Kind: KindReal, Real: v} }
func Bool(v bool) Value { return Value{Kind: KindBool, Bool: v} }
func Char(v rune) Value { return Value{Kind: KindChar, Char: v} }
func ptr(b *block, off int) Value {
	return Value{Kind: KindPtr, blk: b, off: off}
}

// Load reads the word at index relative to pointer v.
func (v Value) Load(index int) (Value, error) {
	if v.Kind != KindPtr {
		return Value{}, errors.Errorf("load from %s value", v.Kind)
	}
	i := v.off + index
	if i < 0 || i >= len(v.blk.words) {
		return Value{}, errors.Errorf("load at %d outside block of %d words", i, len(v.blk.words))
	}
	return v.blk.words[i], nil
}

func (v Value) store(index int, w Value) error {
	if v.Kind != KindPtr {
		return errors.Errorf("store into %s value", v.Kind)
	}
	i := v.off + index
	if i < 0 || i >= len(v.blk.words) {
		return errors.Errorf("store at %d outside block of %d words", i, len(v.blk.words))
	}
	v.blk.words[i] = w
	return nil
}

// Func returns the name of the declaration a code pointer refers to.
func (v Value) Func() string {
	if v.Kind != KindFunc {
		return ""
	}
	return v.fn.decl.Name
}

func (v Value) String() string {
	switch v.Kind {
	case KindUnit:
		return "()"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return pretty.Real(v.Real)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindChar:
		return pretty.Char(v.Char)
	case KindPtr:
		return fmt.Sprintf("<ptr +%d/%d>", v.off, len(v.blk.words))
	case KindFunc:
		return "<fun " + v.fn.decl.Name + ">"
	}
	return "<?>"
}
