package anf

import (
	"testing"
)

func handBuiltLen() *Decl {
	b := NewBuilder()
	tag := b.Load("tag.1", V("l"), -1)

	nilArm := &Retn{Arg: Int{Value: 0}}

	arm := NewBuilder()
	tail := arm.Load("t", V("l"), 1)
	r := arm.Call("r.2", V("len"), []Atom{tail})
	sum := arm.BinOp("s.3", IAdd, Int{Value: 1}, r)
	consArm := arm.Return(sum)

	res := b.Switch("m.4", tag, []*Case{{Tag: 0, Body: nilArm}, {Tag: 1, Body: consArm}}, nil)
	return &Decl{Name: "len", Params: []string{"l"}, Body: b.Return(res)}
}

func TestPrintLen(t *testing.T) {
	got := Print(handBuiltLen())
	want := `fun len(l) =
  let tag.1 = load l[-1];
  let m.4 = switch(tag.1) {
    case 0:
      return 0;
    case 1:
      let t = load l[1];
      let r.2 = len(t);
      let s.3 = iadd(1, r.2);
      return s.3;
  }
  return m.4;`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrintIsIdempotent(t *testing.T) {
	d := handBuiltLen()
	first := Print(d)
	second := Print(d)
	if first != second {
		t.Errorf("printing twice differs:\n%s\n---\n%s", first, second)
	}
}

func TestPrintIfteAndMemory(t *testing.T) {
	b := NewBuilder()
	blk := b.Alloc("h", 3)
	v := b.Offset("v", blk, 1)
	b.Store(v, -1, Int{Value: 1})
	b.Store(v, 0, Char{Value: 'x'})
	c := b.BinOp("c", ICmpEq, Int{Value: 2}, Int{Value: 3})
	res := b.Ifte("r", c, &Retn{Arg: Bool{Value: true}}, &Retn{Arg: Real{Value: 2}})
	d := &Decl{Name: "f", Body: b.Return(res)}

	want := `fun f() =
  let h = alloc[3];
  let v = offset h[1];
  store v[-1] := 1;
  store v[0] := 'x';
  let c = icmpeq(2, 3);
  let r = if(c) then
    return true;
  else
    return 2.0;
  ;
  return r;`
	if got := Print(d); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrintLetRecAndSwitchDefault(t *testing.T) {
	inner := &Decl{Name: "g", Params: []string{"y"}, Body: &Retn{Arg: V("y")}}
	b := NewBuilder()
	b.LetRec([]*Decl{inner})
	body := NewBuilder()
	r := body.Call("r", V("g"), []Atom{Unit{}})
	sw := NewBuilder()
	m := sw.Switch("m", Int{Value: 0}, []*Case{{Tag: 0, Body: &Retn{Arg: r}}},
		&Retn{Arg: Int{Value: 9}})
	_ = m
	cont := body.Close(sw.Return(V("m")))
	d := &Decl{Name: "main", Body: b.Close(cont)}

	want := `fun main() =
  letrec
    fun g(y) =
      return y;
  in
    let r = g(());
    let m = switch(0) {
      case 0:
        return r;
      default:
        return 9;
    }
    return m;
  end`
	if got := Print(d); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrintAll(t *testing.T) {
	a := &Decl{Name: "a", Body: &Retn{Arg: Unit{}}}
	b := &Decl{Name: "b", Params: []string{"x", "y"}, Body: &Retn{Arg: V("x")}}
	want := "fun a() =\n  return ();\n\nfun b(x, y) =\n  return x;\n"
	if got := PrintAll([]*Decl{a, b}); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuilderCloseResets(t *testing.T) {
	b := NewBuilder()
	if !b.Empty() {
		t.Fatal("new builder must be empty")
	}
	b.Move("x", Int{Value: 1})
	first := b.Return(V("x"))
	if !b.Empty() {
		t.Fatal("builder must be empty after Close")
	}
	second := b.Return(Int{Value: 2})
	if _, ok := second.(*Retn); !ok {
		t.Errorf("expected bare return, got %T", second)
	}
	if _, ok := first.(*UnOp); !ok {
		t.Errorf("expected move first, got %T", first)
	}
}
