package lower

import (
	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/layout"
)

// test is a pending obligation: atom must match pat.
type test struct {
	atom anf.Atom
	pat  ast.Pattern
}

type binding struct {
	name string
	atom anf.Atom
}

// row is one rule still alive on the current path. tests holds only
// refutable patterns; variables already matched sit in binds.
type row struct {
	tests []test
	binds []binding
	body  ast.Expr
}

// find returns the index of the test on a, or -1.
func (r row) find(a anf.Atom) int {
	for i, t := range r.tests {
		if t.atom == a {
			return i
		}
	}
	return -1
}

// simplify moves irrefutable tests out of r: variables become bindings,
// wildcards and unit literals disappear.
func simplify(r row) row {
	out := row{body: r.body, binds: append([]binding(nil), r.binds...)}
	for _, t := range r.tests {
		switch p := t.pat.(type) {
		case *ast.WildPattern:
		case *ast.VarPattern:
			out.binds = append(out.binds, binding{name: p.Name, atom: t.atom})
		case *ast.LitPattern:
			if p.Value.Kind != ast.LitUnit {
				out.tests = append(out.tests, t)
			}
		default:
			out.tests = append(out.tests, t)
		}
	}
	return out
}

// replace returns r with test i swapped for subs.
func (r row) replace(i int, subs []test) row {
	tests := make([]test, 0, len(r.tests)-1+len(subs))
	tests = append(tests, r.tests[:i]...)
	tests = append(tests, subs...)
	tests = append(tests, r.tests[i+1:]...)
	return simplify(row{tests: tests, binds: r.binds, body: r.body})
}

// match compiles a case over scrut. Rules are tried top to bottom and the
// first one that matches wins. A value no rule matches reaches the
// match-failure trap.
func (l *lowerer) match(b *anf.Builder, scrut anf.Atom, rules []*ast.Rule, dest string) anf.Atom {
	rows := make([]row, len(rules))
	for i, r := range rules {
		rows[i] = simplify(row{tests: []test{{atom: scrut, pat: r.Pattern}}, body: r.Body})
	}
	return l.compile(b, rows, dest)
}

func (l *lowerer) compile(b *anf.Builder, rows []row, dest string) anf.Atom {
	if len(rows) == 0 {
		return l.fail(b, dest)
	}
	first := rows[0]
	if len(first.tests) == 0 {
		for _, bd := range first.binds {
			b.Move(bd.name, bd.atom)
		}
		return l.toAtom(first.body, b, dest)
	}

	t := first.tests[0]
	switch p := t.pat.(type) {
	case *ast.ConsPattern:
		return l.switchOn(b, t.atom, p, rows, dest)
	case *ast.LitPattern:
		if p.Value.Kind == ast.LitBool {
			return l.boolTest(b, t.atom, rows, dest)
		}
		return l.litChain(b, t.atom, rows, dest)
	}
	line, col := t.pat.Pos()
	fatal(diagnostic.Malformed, "cannot match pattern %T at %d:%d", t.pat, line, col)
	return nil
}

// fail emits the trap for a value no rule matches.
func (l *lowerer) fail(b *anf.Builder, dest string) anf.Atom {
	return b.ExtCall(l.name(dest, "fail"), MatchFailure, nil)
}

// branch compiles rows into a chain of its own.
func (l *lowerer) branch(rows []row) anf.Step {
	bb := anf.NewBuilder()
	return bb.Return(l.compile(bb, rows, ""))
}

// defaultRows keeps the rows that do not test scrut.
func defaultRows(rows []row, scrut anf.Atom) []row {
	var out []row
	for _, r := range rows {
		if r.find(scrut) < 0 {
			out = append(out, r)
		}
	}
	return out
}

// switchOn dispatches on the tag of scrut with one arm per constructor the
// rows mention, in first-occurrence order.
func (l *lowerer) switchOn(b *anf.Builder, scrut anf.Atom, head *ast.ConsPattern, rows []row, dest string) anf.Atom {
	first := l.lookup(head.Cons)
	var order []*layout.Constructor
	seen := make(map[string]bool)
	for _, r := range rows {
		i := r.find(scrut)
		if i < 0 {
			continue
		}
		cp, ok := r.tests[i].pat.(*ast.ConsPattern)
		if !ok {
			fatal(diagnostic.Malformed, "constructor and literal patterns mixed on one value")
		}
		c := l.lookup(cp.Cons)
		if c.Type != first.Type {
			fatal(diagnostic.Malformed, "patterns of '%s' and '%s' mixed on one value", first.Type, c.Type)
		}
		if len(cp.Args) != c.Arity {
			fatal(diagnostic.ArityMismatch, "pattern '%s' has %d fields, declared with %d", cp.Cons, len(cp.Args), c.Arity)
		}
		if !seen[c.Name] {
			seen[c.Name] = true
			order = append(order, c)
		}
	}

	tag := b.Load(l.supply.Fresh("tag"), scrut, l.table.TagIndex())
	cases := make([]*anf.Case, 0, len(order))
	for _, c := range order {
		ab := anf.NewBuilder()
		fields := l.loadFields(ab, scrut, c, rows)
		res := l.compile(ab, specializeCons(rows, scrut, c.Name, fields), "")
		cases = append(cases, &anf.Case{Tag: c.Tag, Body: ab.Return(res)})
	}

	var dflt anf.Step
	if len(order) < len(l.table.Siblings(first)) {
		dflt = l.branch(defaultRows(rows, scrut))
	}
	return b.Switch(l.name(dest, "m"), tag, cases, dflt)
}

// loadFields loads the fields of c that some row still tests or binds.
// Unused fields get a nil entry.
func (l *lowerer) loadFields(b *anf.Builder, scrut anf.Atom, c *layout.Constructor, rows []row) []anf.Atom {
	used := make([]bool, c.Arity)
	for _, r := range rows {
		i := r.find(scrut)
		if i < 0 {
			continue
		}
		cp := r.tests[i].pat.(*ast.ConsPattern)
		if cp.Cons != c.Name {
			continue
		}
		for j, sub := range cp.Args {
			if _, wild := sub.(*ast.WildPattern); !wild {
				used[j] = true
			}
		}
	}
	fields := make([]anf.Atom, c.Arity)
	for j := range fields {
		if used[j] {
			fields[j] = b.Load(l.supply.Fresh("fld"), scrut, l.table.FieldIndex(j))
		}
	}
	return fields
}

// specializeCons keeps the rows compatible with scrut being cons and
// replaces their test on scrut by tests on the loaded fields.
func specializeCons(rows []row, scrut anf.Atom, cons string, fields []anf.Atom) []row {
	var out []row
	for _, r := range rows {
		i := r.find(scrut)
		if i < 0 {
			out = append(out, r)
			continue
		}
		cp := r.tests[i].pat.(*ast.ConsPattern)
		if cp.Cons != cons {
			continue
		}
		var subs []test
		for j, sub := range cp.Args {
			if fields[j] != nil {
				subs = append(subs, test{atom: fields[j], pat: sub})
			}
		}
		out = append(out, r.replace(i, subs))
	}
	return out
}

// specializeLit keeps the rows compatible with scrut == v.
func specializeLit(rows []row, scrut anf.Atom, v ast.Lit) []row {
	var out []row
	for _, r := range rows {
		i := r.find(scrut)
		if i < 0 {
			out = append(out, r)
			continue
		}
		lp, ok := r.tests[i].pat.(*ast.LitPattern)
		if !ok {
			fatal(diagnostic.Malformed, "constructor and literal patterns mixed on one value")
		}
		if lp.Value == v {
			out = append(out, r.replace(i, nil))
		}
	}
	return out
}

// literals returns the distinct literals tested on scrut, in
// first-occurrence order.
func literals(rows []row, scrut anf.Atom) []ast.Lit {
	var vals []ast.Lit
	for _, r := range rows {
		i := r.find(scrut)
		if i < 0 {
			continue
		}
		lp, ok := r.tests[i].pat.(*ast.LitPattern)
		if !ok {
			fatal(diagnostic.Malformed, "constructor and literal patterns mixed on one value")
		}
		dup := false
		for _, v := range vals {
			if v == lp.Value {
				dup = true
				break
			}
		}
		if !dup {
			vals = append(vals, lp.Value)
		}
	}
	return vals
}

func eqPrim(k ast.LitKind) anf.BinPrim {
	switch k {
	case ast.LitInt:
		return anf.ICmpEq
	case ast.LitReal:
		return anf.RCmpEq
	case ast.LitChar:
		return anf.CCmpEq
	}
	fatal(diagnostic.Malformed, "no equality test for %s literals", k)
	return 0
}

// litChain tests scrut against each literal in turn. The last else branch
// holds the rows that accept any value.
func (l *lowerer) litChain(b *anf.Builder, scrut anf.Atom, rows []row, dest string) anf.Atom {
	return l.litTests(b, scrut, literals(rows, scrut), rows, dest)
}

func (l *lowerer) litTests(b *anf.Builder, scrut anf.Atom, vals []ast.Lit, rows []row, dest string) anf.Atom {
	if len(vals) == 0 {
		return l.compile(b, defaultRows(rows, scrut), dest)
	}
	v := vals[0]
	eq := b.BinOp(l.supply.Fresh("eq"), eqPrim(v.Kind), scrut, litAtom(v))
	then := l.branch(specializeLit(rows, scrut, v))

	eb := anf.NewBuilder()
	rest := l.litTests(eb, scrut, vals[1:], rows, "")
	return b.Ifte(l.name(dest, "if"), eq, then, eb.Return(rest))
}

// boolTest branches on a boolean scrutinee directly. A test for false
// alone negates the scrutinee first.
func (l *lowerer) boolTest(b *anf.Builder, scrut anf.Atom, rows []row, dest string) anf.Atom {
	hasTrue, hasFalse := false, false
	for _, v := range literals(rows, scrut) {
		if v.Bool {
			hasTrue = true
		} else {
			hasFalse = true
		}
	}
	t, f := ast.BoolLit(true), ast.BoolLit(false)
	switch {
	case hasTrue && hasFalse:
		return b.Ifte(l.name(dest, "if"), scrut,
			l.branch(specializeLit(rows, scrut, t)),
			l.branch(specializeLit(rows, scrut, f)))
	case hasTrue:
		return b.Ifte(l.name(dest, "if"), scrut,
			l.branch(specializeLit(rows, scrut, t)),
			l.branch(defaultRows(rows, scrut)))
	default:
		not := b.UnOp(l.supply.Fresh("not"), anf.BNot, scrut)
		return b.Ifte(l.name(dest, "if"), not,
			l.branch(specializeLit(rows, scrut, f)),
			l.branch(defaultRows(rows, scrut)))
	}
}
