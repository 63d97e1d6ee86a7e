package lower

import (
	"strings"
	"testing"

	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/layout"
	"github.com/lhaig/anfc/internal/names"
	"github.com/lhaig/anfc/internal/parser"
	"github.com/lhaig/anfc/internal/rename"
)

const listDecl = `data List[a] =
  | Nil
  | Cons[a, List[a]]
end
`

func lowerWith(t *testing.T, src string, policy layout.Policy, supply *names.Supply) ([]*anf.Decl, error) {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse errors: %s", p.Diagnostics().Format("test"))
	}
	res := rename.Resolve(prog, supply)
	if res.Diagnostics.HasErrors() {
		t.Fatalf("rename errors: %s", res.Diagnostics.Format("test"))
	}
	return Lower(res.Program, Options{Policy: policy, Supply: supply})
}

func parseAndLower(t *testing.T, src string) []*anf.Decl {
	t.Helper()
	decls, err := lowerWith(t, src, layout.Header, names.NewSupply())
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if errs := anf.Validate(decls); len(errs) > 0 {
		t.Fatalf("malformed output:\n%s\n%s", strings.Join(errs, "\n"), anf.PrintAll(decls))
	}
	return decls
}

func findDecl(t *testing.T, decls []*anf.Decl, name string) *anf.Decl {
	t.Helper()
	for _, d := range decls {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no declaration %s in:\n%s", name, anf.PrintAll(decls))
	return nil
}

func steps[T anf.Step](d *anf.Decl) []T {
	var out []T
	anf.Walk(d.Body, func(s anf.Step) bool {
		if st, ok := s.(T); ok {
			out = append(out, st)
		}
		return true
	})
	return out
}

func TestLowerLen(t *testing.T) {
	decls := parseAndLower(t, listDecl+`
fun len(l) = case l of
  | Nil => 0
  | Cons(_, xs) => @iadd(1, len(xs))
  end`)

	want := `fun len(l) =
  let tag.1 = load l[-1];
  let m.5 = switch(tag.1) {
    case 0:
      return 0;
    case 1:
      let fld.2 = load l[1];
      let xs = move(fld.2);
      let r.3 = len(xs);
      let iadd.4 = iadd(1, r.3);
      return iadd.4;
  }
  return m.5;`
	if got := anf.Print(decls[0]); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestLowerPrintIsStable(t *testing.T) {
	src := listDecl + `
fun sum(l) = case l of | Nil => 0 | Cons(x, xs) => @iadd(x, sum(xs)) end`
	first := anf.PrintAll(parseAndLower(t, src))
	second := anf.PrintAll(parseAndLower(t, src))
	if first != second {
		t.Errorf("lowering is not deterministic:\n%s\n---\n%s", first, second)
	}
}

func TestLowerWildcardOnly(t *testing.T) {
	decls := parseAndLower(t, `fun f(x) = case x of | _ => 7 end`)
	want := `fun f(x) =
  return 7;`
	if got := anf.Print(decls[0]); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestLowerVarPatternBinds(t *testing.T) {
	decls := parseAndLower(t, `fun f(x) = case x of | y => @iadd(y, 1) end`)
	want := `fun f(x) =
  let y = move(x);
  let iadd.1 = iadd(y, 1);
  return iadd.1;`
	if got := anf.Print(decls[0]); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestLowerArgumentOrder(t *testing.T) {
	decls := parseAndLower(t, `extern a: fn() -> Int;
extern b: fn() -> Int;
extern c: fn() -> Int;
fun f(x, y, z) = x
fun g() = f(#a(), #b(), #c())`)

	g := findDecl(t, decls, "g")
	var order, binds []string
	for _, ec := range steps[*anf.ExtCall](g) {
		order = append(order, ec.Func)
		binds = append(binds, ec.Bind)
	}
	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("expected foreign calls in order a,b,c, got %v", order)
	}
	calls := steps[*anf.Call](g)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	for i, want := range binds {
		if got := calls[0].Args[i].(anf.Var).Name; got != want {
			t.Errorf("argument %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestLowerScrutineeEvaluatedOnce(t *testing.T) {
	decls := parseAndLower(t, `extern get: fn() -> Int;
fun f() = case #get() of | 0 => 1 | 1 => 2 | _ => 3 end`)
	if n := len(steps[*anf.ExtCall](decls[0])); n != 1 {
		t.Errorf("expected the scrutinee to be computed once, got %d calls:\n%s", n, anf.Print(decls[0]))
	}
}

func TestLowerLiteralChain(t *testing.T) {
	decls := parseAndLower(t, `fun f(n) = case n of | 0 => 'z' | 1 => 'o' | _ => 'm' end`)
	tests := steps[*anf.BinOp](decls[0])
	if len(tests) != 2 {
		t.Fatalf("expected 2 equality tests, got %d", len(tests))
	}
	for i, want := range []int64{0, 1} {
		if tests[i].Prim != anf.ICmpEq {
			t.Errorf("test %d: expected icmpeq, got %s", i, tests[i].Prim)
		}
		if lit := tests[i].Arg2.(anf.Int); lit.Value != want {
			t.Errorf("test %d: expected literal %d, got %d", i, want, lit.Value)
		}
	}
	if n := len(steps[*anf.ExtCall](decls[0])); n != 0 {
		t.Errorf("exhaustive case must not trap, found %d foreign calls", n)
	}
}

func TestLowerBoolMatch(t *testing.T) {
	decls := parseAndLower(t, `fun f(b) = case b of | false => 0 | _ => 1 end`)
	d := decls[0]
	nots := steps[*anf.UnOp](d)
	if len(nots) != 1 || nots[0].Prim != anf.BNot {
		t.Fatalf("expected one bnot, got:\n%s", anf.Print(d))
	}
	if n := len(steps[*anf.Ifte](d)); n != 1 {
		t.Errorf("expected 1 if, got %d", n)
	}
}

func TestLowerNonExhaustiveTraps(t *testing.T) {
	decls := parseAndLower(t, `data Color = | Red | Green | Blue end
fun f(c) = case c of | Red => 1 | Blue => 3 end`)
	d := decls[0]
	sw := steps[*anf.Switch](d)
	if len(sw) != 1 {
		t.Fatalf("expected 1 switch, got %d", len(sw))
	}
	if len(sw[0].Cases) != 2 || sw[0].Cases[0].Tag != 0 || sw[0].Cases[1].Tag != 2 {
		t.Errorf("expected arms for tags 0 and 2, got:\n%s", anf.Print(d))
	}
	if sw[0].Default == nil {
		t.Fatal("expected a default arm")
	}
	trap, ok := sw[0].Default.(*anf.ExtCall)
	if !ok || trap.Func != MatchFailure {
		t.Errorf("expected the default arm to call %s, got:\n%s", MatchFailure, anf.Print(d))
	}
}

func TestLowerExhaustiveHasNoDefault(t *testing.T) {
	decls := parseAndLower(t, `data Color = | Red | Green | Blue end
fun f(c) = case c of | Red => 1 | Green => 2 | Blue => 3 end`)
	sw := steps[*anf.Switch](decls[0])
	if len(sw) != 1 || sw[0].Default != nil {
		t.Errorf("expected a switch without default, got:\n%s", anf.Print(decls[0]))
	}
}

func TestLowerNestedPatterns(t *testing.T) {
	decls := parseAndLower(t, listDecl+`
fun pairs(l) = case l of
  | Cons(a, Cons(b, _)) => @iadd(a, b)
  | _ => 0
  end`)
	d := decls[0]
	if n := len(steps[*anf.Switch](d)); n != 2 {
		t.Errorf("expected 2 switches, got %d:\n%s", n, anf.Print(d))
	}
	if n := len(steps[*anf.Call](d)); n != 0 {
		t.Errorf("expected no calls, got %d", n)
	}
}

func TestLowerConstructorHeader(t *testing.T) {
	decls := parseAndLower(t, `data Wrap = | Box[Int] end
fun mk(x) = Box(x)`)
	got := anf.Print(decls[0])
	if !strings.HasPrefix(got, "fun mk(x) =\n  let blk.2 = alloc[2];\n") {
		t.Fatalf("expected header block allocation, got:\n%s", got)
	}
	for _, line := range []string{
		"let box.1 = offset blk.2[1];",
		"store box.1[-1] := 0;",
		"store box.1[0] := x;",
		"return box.1;",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("expected %q in:\n%s", line, got)
		}
	}
}

func TestLowerConstructorInBand(t *testing.T) {
	decls, err := lowerWith(t, `data Wrap = | Box[Int] | Pair[Int, Int] end
fun mk(x) = Pair(x, 1)`, layout.InBand, names.NewSupply())
	if err != nil {
		t.Fatal(err)
	}
	want := `fun mk(x) =
  let pair.1 = alloc[3];
  store pair.1[0] := 1;
  store pair.1[1] := x;
  store pair.1[2] := 1;
  return pair.1;`
	if got := anf.Print(decls[0]); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestLowerInBandMatch(t *testing.T) {
	decls, err := lowerWith(t, listDecl+`
fun head(l) = case l of | Cons(x, _) => x | Nil => 0 end`, layout.InBand, names.NewSupply())
	if err != nil {
		t.Fatal(err)
	}
	got := anf.Print(decls[0])
	for _, line := range []string{"load l[0];", "load l[1];"} {
		if !strings.Contains(got, line) {
			t.Errorf("expected %q in:\n%s", line, got)
		}
	}
	if errs := anf.Validate(decls); len(errs) > 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestLowerLambda(t *testing.T) {
	decls := parseAndLower(t, `fun add(n) = fn (x) { @iadd(x, n) }`)
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	wantAdd := `fun add(n) =
  let clo.4 = alloc[2];
  store clo.4[0] := lambda.1;
  store clo.4[1] := n;
  return clo.4;`
	wantLam := `fun lambda.1(env.2, x) =
  let n = load env.2[1];
  let iadd.3 = iadd(x, n);
  return iadd.3;`
	if got := anf.Print(decls[0]); got != wantAdd {
		t.Errorf("expected:\n%s\ngot:\n%s", wantAdd, got)
	}
	if got := anf.Print(decls[1]); got != wantLam {
		t.Errorf("expected:\n%s\ngot:\n%s", wantLam, got)
	}
}

func TestLowerClosureCall(t *testing.T) {
	decls := parseAndLower(t, `fun app(f, x) = f(x)`)
	want := `fun app(f, x) =
  let code.1 = load f[0];
  let r.2 = code.1(f, x);
  return r.2;`
	if got := anf.Print(decls[0]); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestLowerGlobalAsValue(t *testing.T) {
	decls := parseAndLower(t, `fun inc(x) = @iadd(x, 1)
fun app(f, x) = f(x)
fun main() = let a = app(inc, 1); app(inc, a)`)
	wrapper := findDecl(t, decls, "inc.clo")
	if len(wrapper.Params) != 2 {
		t.Errorf("expected wrapper with env and one argument, got %v", wrapper.Params)
	}
	count := 0
	for _, d := range decls {
		if d.Name == "inc.clo" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one wrapper, got %d", count)
	}
}

func TestLowerLetrecStaysDirect(t *testing.T) {
	decls := parseAndLower(t, `fun main() = letrec
  fun even(n) = case n of | 0 => true | _ => odd(@isub(n, 1)) end
  fun odd(k) = case k of | 0 => false | _ => even(@isub(k, 1)) end
in
  even(10)
end`)
	if len(decls) != 1 {
		t.Fatalf("expected no lifted functions, got:\n%s", anf.PrintAll(decls))
	}
	lr, ok := decls[0].Body.(*anf.LetRec)
	if !ok {
		t.Fatalf("expected letrec, got %T", decls[0].Body)
	}
	if len(lr.Decls) != 2 || lr.Decls[0].Name != "even" || lr.Decls[1].Name != "odd" {
		t.Errorf("unexpected letrec decls:\n%s", anf.Print(decls[0]))
	}
	call := lr.Cont.(*anf.Call)
	if call.Func.(anf.Var).Name != "even" {
		t.Errorf("expected a direct call to even, got %s", call.Func)
	}
}

func TestLowerEscapingLetrec(t *testing.T) {
	decls := parseAndLower(t, `fun main(k) = letrec
  fun g(y) = @iadd(y, k)
in
  fn (z) { g(z) }
end`)
	main := findDecl(t, decls, "main")
	if n := len(steps[*anf.LetRec](main)); n != 0 {
		t.Errorf("escaping group must not stay a letrec:\n%s", anf.Print(main))
	}
	allocs := steps[*anf.Alloc](main)
	if len(allocs) == 0 || allocs[0].Bind != "g" || allocs[0].Size != 2 {
		t.Errorf("expected g bound to a closure of 2 words, got:\n%s", anf.Print(main))
	}
	if len(decls) != 3 {
		t.Errorf("expected main, lifted g and the lambda, got:\n%s", anf.PrintAll(decls))
	}
}

func TestLowerEscapeThroughNestedGroup(t *testing.T) {
	decls := parseAndLower(t, `fun main(k) = letrec
  fun f(x) = @iadd(x, k)
in
  letrec
    fun g(y) = f(y)
  in
    g
  end
end`)
	main := findDecl(t, decls, "main")
	if n := len(steps[*anf.LetRec](main)); n != 0 {
		t.Errorf("both groups must be converted:\n%s", anf.PrintAll(decls))
	}
}

func TestLowerNameCollision(t *testing.T) {
	supply := names.NewSupply()
	supply.Reserve("f.clo")
	decls, err := lowerWith(t, `fun f() = 1
fun g() = f`, layout.Header, supply)
	if err == nil {
		t.Fatal("expected an error")
	}
	if decls != nil {
		t.Errorf("expected no partial output, got:\n%s", anf.PrintAll(decls))
	}
	ie, ok := diagnostic.AsInternal(err)
	if !ok {
		t.Fatalf("expected an InternalError, got %v", err)
	}
	if ie.Kind != diagnostic.NameCollision {
		t.Errorf("expected NameCollision, got %s", ie.Kind)
	}
}

func TestLowerBrokenContractAbortsUnit(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diagnostic.InternalKind
	}{
		{"constructor arity", `fun f() = Cons(1)`, diagnostic.ArityMismatch},
		{"unknown constructor", `fun f() = Foo(1)`, diagnostic.UnknownConstructor},
		{"pattern arity", `fun f(l) = case l of | Nil => 0 | Cons(x) => x end`, diagnostic.ArityMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Skip the renamer, which would reject these trees first.
			p := parser.New(listDecl + "fun ok() = 1\n" + tt.src)
			prog := p.Parse()
			if p.Diagnostics().HasErrors() {
				t.Fatalf("parse errors: %s", p.Diagnostics().Format("test"))
			}
			decls, err := Lower(prog, Options{Policy: layout.Header})
			if decls != nil {
				t.Errorf("expected no partial output, got:\n%s", anf.PrintAll(decls))
			}
			ie, ok := diagnostic.AsInternal(err)
			if !ok {
				t.Fatalf("expected an InternalError, got %v", err)
			}
			if ie.Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, ie.Kind)
			}
		})
	}
}

func TestLowerSeedsNewSupply(t *testing.T) {
	src := listDecl + `
fun f(tag) = tag
fun g(tag) = case tag of | Nil => 0 | Cons(_, _) => 1 end`
	p := parser.New(src)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse errors: %s", p.Diagnostics().Format("test"))
	}
	res := rename.Resolve(prog, names.NewSupply())
	if res.Diagnostics.HasErrors() {
		t.Fatalf("rename errors: %s", res.Diagnostics.Format("test"))
	}

	// Lower with a supply of its own: g's parameter is tag.1 and the tag
	// load must not reuse it.
	decls, err := Lower(res.Program, Options{Policy: layout.Header})
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if errs := anf.Validate(decls); len(errs) > 0 {
		t.Fatalf("malformed output:\n%s\n%s", strings.Join(errs, "\n"), anf.PrintAll(decls))
	}
	g := findDecl(t, decls, "g")
	if len(g.Params) != 1 || g.Params[0] != "tag.1" {
		t.Fatalf("expected g(tag.1), got %v", g.Params)
	}
	for _, ld := range steps[*anf.Load](g) {
		if ld.Bind == g.Params[0] {
			t.Errorf("parameter %s rebound:\n%s", ld.Bind, anf.Print(g))
		}
	}
}

func TestLowerValidatesProgram(t *testing.T) {
	parseAndLower(t, listDecl+`
extern print: fn(Int) -> ();

fun map(f, l) = case l of
  | Nil => Nil
  | Cons(x, xs) => Cons(f(x), map(f, xs))
  end

fun main(k) = let l = Cons(1, Cons(2, Nil));
  let m = map(fn (x) { @imul(x, k) }, l);
  case m of
  | Cons(a, Cons(b, _)) => #print(@iadd(a, b))
  | Cons(_, Nil) => #print(1)
  | _ => ()
  end`)
}
