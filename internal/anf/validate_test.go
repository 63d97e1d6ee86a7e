package anf

import (
	"strings"
	"testing"
)

func expectValid(t *testing.T, decls ...*Decl) {
	t.Helper()
	if errs := Validate(decls); len(errs) > 0 {
		t.Fatalf("unexpected errors:\n%s", strings.Join(errs, "\n"))
	}
}

func expectInvalid(t *testing.T, want string, decls ...*Decl) {
	t.Helper()
	errs := Validate(decls)
	for _, e := range errs {
		if strings.Contains(e, want) {
			return
		}
	}
	t.Errorf("expected error containing %q, got %v", want, errs)
}

func TestValidateLen(t *testing.T) {
	expectValid(t, handBuiltLen())
}

func TestValidateUnboundName(t *testing.T) {
	d := &Decl{Name: "f", Body: &Retn{Arg: V("ghost")}}
	expectInvalid(t, "unbound name ghost", d)
}

func TestValidateNilOperand(t *testing.T) {
	b := NewBuilder()
	b.BinOp("x", IAdd, Int{Value: 1}, nil)
	d := &Decl{Name: "f", Body: b.Return(V("x"))}
	expectInvalid(t, "iadd has nil operand", d)
}

func TestValidateOpenChain(t *testing.T) {
	d := &Decl{Name: "f", Body: &UnOp{Bind: "x", Prim: Move, Arg: Int{Value: 1}}}
	expectInvalid(t, "does not end in return", d)
}

func TestValidateBranchScope(t *testing.T) {
	then := NewBuilder()
	then.Move("inner", Int{Value: 1})
	b := NewBuilder()
	b.Ifte("r", Bool{Value: true}, then.Return(V("inner")), &Retn{Arg: Int{Value: 0}})
	d := &Decl{Name: "f", Body: b.Return(V("inner"))}
	expectInvalid(t, "unbound name inner", d)
}

func TestValidateRebind(t *testing.T) {
	b := NewBuilder()
	b.Move("x", Int{Value: 1})
	b.Move("x", Int{Value: 2})
	d := &Decl{Name: "f", Body: b.Return(V("x"))}
	expectInvalid(t, "rebound", d)
}

func TestValidateSiblingBranchesMayReuseNames(t *testing.T) {
	mk := func(v int64) Step {
		b := NewBuilder()
		b.Move("y", Int{Value: v})
		return b.Return(V("y"))
	}
	b := NewBuilder()
	r := b.Ifte("r", Bool{Value: false}, mk(1), mk(2))
	expectValid(t, &Decl{Name: "f", Body: b.Return(r)})
}

func TestValidateSwitch(t *testing.T) {
	b := NewBuilder()
	b.Switch("m", Int{Value: 0}, []*Case{
		{Tag: 0, Body: &Retn{Arg: Int{Value: 1}}},
		{Tag: 0, Body: &Retn{Arg: Int{Value: 2}}},
	}, nil)
	d := &Decl{Name: "f", Body: b.Return(V("m"))}
	expectInvalid(t, "duplicate case 0", d)

	empty := NewBuilder()
	empty.Switch("m", Int{Value: 0}, nil, nil)
	expectInvalid(t, "has no arms", &Decl{Name: "g", Body: empty.Return(V("m"))})
}

func TestValidateGlobalsAndLetRec(t *testing.T) {
	caller := NewBuilder()
	r := caller.Call("r", V("callee"), nil)
	a := &Decl{Name: "caller", Body: caller.Return(r)}
	c := &Decl{Name: "callee", Body: &Retn{Arg: Unit{}}}
	expectValid(t, a, c)

	rec := NewBuilder()
	rec.LetRec([]*Decl{{Name: "loop", Params: []string{"n"}, Body: &Retn{Arg: V("loop")}}})
	expectValid(t, &Decl{Name: "outer", Body: rec.Return(V("loop"))})

	expectInvalid(t, "declared twice", c, c)
}

func TestValidateAllocSize(t *testing.T) {
	b := NewBuilder()
	b.Alloc("h", 0)
	expectInvalid(t, "alloc of 0 words", &Decl{Name: "f", Body: b.Return(V("h"))})
}

func TestCountSteps(t *testing.T) {
	if n := CountSteps(handBuiltLen()); n != 8 {
		t.Errorf("expected 8 steps, got %d", n)
	}
}
