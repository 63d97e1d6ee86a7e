package lower

import (
	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/ast"
)

// A closure block is [code, cap1, ..., capk]. The lifted code takes the
// block as its first parameter and loads its captures from it.

// closure allocates a block for code and stores the captures into it.
func (l *lowerer) closure(b *anf.Builder, bind, code string, caps []string) anf.Atom {
	blk := b.Alloc(bind, 1+len(caps))
	l.fill(b, blk, code, caps)
	return blk
}

func (l *lowerer) fill(b *anf.Builder, blk anf.Atom, code string, caps []string) {
	b.Store(blk, 0, anf.V(code))
	for i, c := range caps {
		b.Store(blk, i+1, anf.V(c))
	}
}

// lift adds a top-level function code(env, params...) whose prologue
// reloads caps from env. A non-empty self is rebound to env itself, which
// is how a converted local function refers to its own closure.
func (l *lowerer) lift(code string, params []string, body ast.Expr, caps []string, self string) {
	env := l.supply.Fresh("env")
	pb := anf.NewBuilder()
	if self != "" {
		pb.Move(self, anf.V(env))
	}
	for i, c := range caps {
		pb.Load(c, anf.V(env), i+1)
	}
	res := l.toAtom(body, pb, "")
	l.lifted = append(l.lifted, &anf.Decl{
		Name:   code,
		Params: append([]string{env}, params...),
		Body:   pb.Return(res),
	})
}

// lambda lifts fn and returns its closure block.
func (l *lowerer) lambda(fn *ast.FunExpr, b *anf.Builder, dest string) anf.Atom {
	caps := l.freeVars(fn.Body, fn.Params...)
	code := l.supply.Fresh("lambda")
	l.lift(code, fn.Params, fn.Body, caps, "")
	return l.closure(b, l.name(dest, "clo"), code, caps)
}

// globalClosure wraps a top-level function used as a value. The wrapper
// f.clo ignores its environment and calls f; it is generated once per
// function.
func (l *lowerer) globalClosure(name string, b *anf.Builder, dest string) anf.Atom {
	code, ok := l.wrappers[name]
	if !ok {
		code = name + ".clo"
		l.supply.Reserve(code)
		l.wrappers[name] = code

		env := l.supply.Fresh("env")
		params := make([]string, l.globals[name])
		args := make([]anf.Atom, len(params))
		for i := range params {
			params[i] = l.supply.Fresh("a")
			args[i] = anf.V(params[i])
		}
		wb := anf.NewBuilder()
		r := wb.Call(l.supply.Fresh("r"), anf.V(name), args)
		l.lifted = append(l.lifted, &anf.Decl{
			Name:   code,
			Params: append([]string{env}, params...),
			Body:   wb.Return(r),
		})
	}
	return l.closure(b, l.name(dest, "clo"), code, nil)
}

func blockFuncs(blk *ast.BlockExpr) []*ast.FuncDecl {
	var fns []*ast.FuncDecl
	for _, d := range blk.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// block lowers the functions of a letrec block. A group none of whose
// members escapes stays a letrec step and is called directly. Otherwise
// every member is lifted and bound to its closure block; all blocks are
// allocated before any is filled so members can capture each other.
func (l *lowerer) block(blk *ast.BlockExpr, b *anf.Builder) {
	fns := blockFuncs(blk)
	if len(fns) == 0 {
		return
	}

	if !l.escapes[blk] {
		for _, fn := range fns {
			l.known[fn.Name] = len(fn.Params)
		}
		decls := make([]*anf.Decl, len(fns))
		for i, fn := range fns {
			decls[i] = &anf.Decl{Name: fn.Name, Params: fn.ParamNames(), Body: l.normalize(fn.Body)}
		}
		b.LetRec(decls)
		return
	}

	type member struct {
		fn   *ast.FuncDecl
		code string
		caps []string
	}
	members := make([]member, len(fns))
	for i, fn := range fns {
		exclude := append(fn.ParamNames(), fn.Name)
		members[i] = member{
			fn:   fn,
			code: l.supply.Fresh(fn.Name),
			caps: l.freeVars(fn.Body, exclude...),
		}
	}
	for _, m := range members {
		b.Alloc(m.fn.Name, 1+len(m.caps))
	}
	for _, m := range members {
		l.fill(b, anf.V(m.fn.Name), m.code, m.caps)
	}
	for _, m := range members {
		l.lift(m.code, m.fn.ParamNames(), m.fn.Body, m.caps, m.fn.Name)
	}
}

// boundary is a point between a reference and its binder past which the
// referencing code may be lifted: a lambda body always is, a letrec member
// body is when its group is converted.
type boundary struct {
	group *ast.BlockExpr // nil for a lambda
}

type escapeRef struct {
	group   *ast.BlockExpr
	crossed []*ast.BlockExpr
}

type escapeAnalysis struct {
	groupOf map[string]*ast.BlockExpr
	depth   map[*ast.BlockExpr]int
	refs    []escapeRef
	escapes map[*ast.BlockExpr]bool
}

// analyzeEscapes decides which letrec groups must be closure converted. A
// group escapes when a member is used as a value, referenced from inside a
// lambda, or referenced from inside a group that escapes.
func analyzeEscapes(prog *ast.Program) map[*ast.BlockExpr]bool {
	a := &escapeAnalysis{
		groupOf: make(map[string]*ast.BlockExpr),
		depth:   make(map[*ast.BlockExpr]int),
		escapes: make(map[*ast.BlockExpr]bool),
	}
	for _, fn := range prog.Funcs() {
		a.walk(fn.Body, nil, false)
	}
	for changed := true; changed; {
		changed = false
		for _, r := range a.refs {
			if a.escapes[r.group] {
				continue
			}
			for _, g := range r.crossed {
				if a.escapes[g] {
					a.escapes[r.group] = true
					changed = true
					break
				}
			}
		}
	}
	return a.escapes
}

func push(stack []boundary, b boundary) []boundary {
	return append(stack[:len(stack):len(stack)], b)
}

func (a *escapeAnalysis) walk(e ast.Expr, stack []boundary, callee bool) {
	switch expr := e.(type) {
	case *ast.VarExpr:
		g, ok := a.groupOf[expr.Name]
		if !ok {
			return
		}
		if !callee {
			a.escapes[g] = true
			return
		}
		var crossed []*ast.BlockExpr
		for _, bnd := range stack[a.depth[g]:] {
			switch bnd.group {
			case g:
			case nil:
				a.escapes[g] = true
				return
			default:
				crossed = append(crossed, bnd.group)
			}
		}
		if len(crossed) > 0 {
			a.refs = append(a.refs, escapeRef{group: g, crossed: crossed})
		}

	case *ast.AppExpr:
		_, isVar := expr.Func.(*ast.VarExpr)
		a.walk(expr.Func, stack, isVar)
		a.walkAll(expr.Args, stack)

	case *ast.PrimExpr:
		a.walkAll(expr.Args, stack)
	case *ast.ExtCallExpr:
		a.walkAll(expr.Args, stack)
	case *ast.ConsExpr:
		a.walkAll(expr.Args, stack)

	case *ast.FunExpr:
		a.walk(expr.Body, push(stack, boundary{}), false)

	case *ast.LetExpr:
		a.walk(expr.Value, stack, false)
		a.walk(expr.Cont, stack, false)

	case *ast.CaseExpr:
		a.walk(expr.Scrutinee, stack, false)
		for _, r := range expr.Rules {
			a.walk(r.Body, stack, false)
		}

	case *ast.BlockExpr:
		fns := blockFuncs(expr)
		for _, fn := range fns {
			a.groupOf[fn.Name] = expr
		}
		// References from the member bodies pass the group's own boundary,
		// which does not count as crossing.
		a.depth[expr] = len(stack)
		inner := push(stack, boundary{group: expr})
		for _, fn := range fns {
			a.walk(fn.Body, inner, false)
		}
		a.walk(expr.Cont, stack, false)
	}
}

func (a *escapeAnalysis) walkAll(es []ast.Expr, stack []boundary) {
	for _, e := range es {
		a.walk(e, stack, false)
	}
}
