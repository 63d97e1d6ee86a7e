// Package rename resolves every identifier of a parsed unit to a unique
// binder and checks constructor use. Its output satisfies the lowering's
// input contract: no shadowing, arity-correct constructors, no unbound
// names.
package rename

import (
	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/names"
)

// Result holds the renamed program and any problems found.
type Result struct {
	Program     *ast.Program
	Diagnostics *diagnostic.Diagnostics
}

// Renamer carries the state of one pass over one unit.
type Renamer struct {
	supply   *names.Supply
	diag     *diagnostic.Diagnostics
	declared map[string]bool // constructor names seen anywhere in the unit
}

// Resolve renames prog. Names are drawn from supply, which the lowering of
// the same unit must share so that its fresh names cannot collide.
func Resolve(prog *ast.Program, supply *names.Supply) *Result {
	r := &Renamer{
		supply:   supply,
		diag:     diagnostic.New(),
		declared: make(map[string]bool),
	}
	global := NewScope(nil)
	out := &ast.Program{}

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			if global.ResolveLocal(decl.Name) != nil || supply.Taken(decl.Name) {
				r.diag.Errorf(decl.Line, decl.Column, "function '%s' is already declared", decl.Name)
				continue
			}
			supply.Reserve(decl.Name)
			global.Define(&Symbol{Name: decl.Name, Unique: decl.Name, Kind: SymFunction})
		default:
			r.declareType(global, d)
		}
	}

	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			out.Decls = append(out.Decls, r.renameFunc(global, fn, fn.Name))
			continue
		}
		out.Decls = append(out.Decls, d)
	}
	return &Result{Program: out, Diagnostics: r.diag}
}

// declareType enters the constructors or foreign signature of a
// non-function declaration into sc.
func (r *Renamer) declareType(sc *Scope, d ast.Decl) {
	switch decl := d.(type) {
	case *ast.DataDecl:
		for _, v := range decl.Variants {
			if r.declared[v.Cons] {
				r.diag.Errorf(v.Line, v.Column, "constructor '%s' is already declared", v.Cons)
				continue
			}
			r.declared[v.Cons] = true
			sc.DefineCons(&Constructor{Name: v.Cons, Type: decl.Name, Arity: len(v.Fields)})
		}
	case *ast.ExternDecl:
		sc.Define(&Symbol{Name: externKey(decl.Name), Unique: decl.Name, Kind: SymExtern})
	}
}

// bind gives a binder its unique name: the source name on first use in the
// unit, a fresh name afterwards.
func (r *Renamer) bind(sc *Scope, name string, kind SymbolKind) string {
	unique := name
	if r.supply.Taken(name) {
		unique = r.supply.Fresh(name)
	} else {
		r.supply.Reserve(name)
	}
	sc.Define(&Symbol{Name: name, Unique: unique, Kind: kind})
	return unique
}

func (r *Renamer) renameFunc(sc *Scope, fn *ast.FuncDecl, unique string) *ast.FuncDecl {
	inner := NewScope(sc)
	out := &ast.FuncDecl{
		Name:   unique,
		Result: fn.Result,
		Line:   fn.Line,
		Column: fn.Column,
	}
	for _, p := range fn.Params {
		if inner.ResolveLocal(p.Name) != nil {
			r.diag.Errorf(p.Line, p.Column, "parameter '%s' is declared twice in '%s'", p.Name, fn.Name)
		}
		out.Params = append(out.Params, &ast.Param{
			Name:   r.bind(inner, p.Name, SymParam),
			Type:   p.Type,
			Line:   p.Line,
			Column: p.Column,
		})
	}
	out.Body = r.expr(inner, fn.Body)
	return out
}

func (r *Renamer) expr(sc *Scope, e ast.Expr) ast.Expr {
	switch expr := e.(type) {
	case *ast.LitExpr:
		return expr

	case *ast.VarExpr:
		sym := sc.Resolve(expr.Name)
		if sym == nil {
			r.diag.Errorf(expr.Line, expr.Column, "unbound name '%s'", expr.Name)
			return expr
		}
		return &ast.VarExpr{Name: sym.Unique, Line: expr.Line, Column: expr.Column}

	case *ast.PrimExpr:
		return &ast.PrimExpr{Prim: expr.Prim, Args: r.exprs(sc, expr.Args), Line: expr.Line, Column: expr.Column}

	case *ast.FunExpr:
		inner := NewScope(sc)
		out := &ast.FunExpr{Line: expr.Line, Column: expr.Column}
		for _, p := range expr.Params {
			if inner.ResolveLocal(p) != nil {
				r.diag.Errorf(expr.Line, expr.Column, "parameter '%s' is declared twice", p)
			}
			out.Params = append(out.Params, r.bind(inner, p, SymParam))
		}
		out.Body = r.expr(inner, expr.Body)
		return out

	case *ast.AppExpr:
		return &ast.AppExpr{
			Func:   r.expr(sc, expr.Func),
			Args:   r.exprs(sc, expr.Args),
			Line:   expr.Line,
			Column: expr.Column,
		}

	case *ast.ExtCallExpr:
		if sc.Resolve(externKey(expr.Func)) == nil {
			r.diag.ErrorWithHint(expr.Line, expr.Column,
				"foreign function '#"+expr.Func+"' is not declared",
				"add 'extern "+expr.Func+": <type>;'")
		}
		return &ast.ExtCallExpr{Func: expr.Func, Args: r.exprs(sc, expr.Args), Line: expr.Line, Column: expr.Column}

	case *ast.ConsExpr:
		r.checkCons(sc, expr.Cons, len(expr.Args), expr.Line, expr.Column)
		return &ast.ConsExpr{Cons: expr.Cons, Args: r.exprs(sc, expr.Args), Line: expr.Line, Column: expr.Column}

	case *ast.LetExpr:
		value := r.expr(sc, expr.Value)
		inner := NewScope(sc)
		name := r.bind(inner, expr.Name, SymLocal)
		return &ast.LetExpr{
			Name:   name,
			Value:  value,
			Cont:   r.expr(inner, expr.Cont),
			Line:   expr.Line,
			Column: expr.Column,
		}

	case *ast.CaseExpr:
		out := &ast.CaseExpr{
			Scrutinee: r.expr(sc, expr.Scrutinee),
			Line:      expr.Line,
			Column:    expr.Column,
		}
		for _, rule := range expr.Rules {
			inner := NewScope(sc)
			pat := r.pattern(inner, rule.Pattern)
			out.Rules = append(out.Rules, &ast.Rule{
				Pattern: pat,
				Body:    r.expr(inner, rule.Body),
				Line:    rule.Line,
				Column:  rule.Column,
			})
		}
		return out

	case *ast.BlockExpr:
		return r.block(sc, expr)
	}

	line, col := e.Pos()
	panic(diagnostic.Internalf(diagnostic.Malformed, "unexpected expression %T at %d:%d", e, line, col))
}

func (r *Renamer) exprs(sc *Scope, es []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = r.expr(sc, e)
	}
	return out
}

// block renames a letrec group. Every function of the group is visible in
// every body of the group and in the continuation.
func (r *Renamer) block(sc *Scope, blk *ast.BlockExpr) *ast.BlockExpr {
	inner := NewScope(sc)
	uniques := make(map[*ast.FuncDecl]string)
	for _, d := range blk.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			r.declareType(inner, d)
			continue
		}
		if inner.ResolveLocal(fn.Name) != nil {
			r.diag.Errorf(fn.Line, fn.Column, "function '%s' is declared twice in this block", fn.Name)
			continue
		}
		uniques[fn] = r.bind(inner, fn.Name, SymLocalFunction)
	}

	out := &ast.BlockExpr{Line: blk.Line, Column: blk.Column}
	for _, d := range blk.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			out.Decls = append(out.Decls, d)
			continue
		}
		unique, ok := uniques[fn]
		if !ok {
			continue
		}
		out.Decls = append(out.Decls, r.renameFunc(inner, fn, unique))
	}
	out.Cont = r.expr(inner, blk.Cont)
	return out
}

func (r *Renamer) checkCons(sc *Scope, name string, arity, line, col int) {
	c := sc.ResolveCons(name)
	if c == nil {
		r.diag.Errorf(line, col, "unknown constructor '%s'", name)
		return
	}
	if c.Arity != arity {
		r.diag.Errorf(line, col, "constructor '%s' of '%s' expects %d arguments, got %d", name, c.Type, c.Arity, arity)
	}
}

// pattern renames the binders of p into sc. Binding the same name twice
// within one pattern is an error.
func (r *Renamer) pattern(sc *Scope, p ast.Pattern) ast.Pattern {
	switch pat := p.(type) {
	case *ast.VarPattern:
		if sc.ResolveLocal(pat.Name) != nil {
			r.diag.Errorf(pat.Line, pat.Column, "name '%s' is bound twice in one pattern", pat.Name)
		}
		return &ast.VarPattern{Name: r.bind(sc, pat.Name, SymLocal), Line: pat.Line, Column: pat.Column}
	case *ast.ConsPattern:
		r.checkCons(sc, pat.Cons, len(pat.Args), pat.Line, pat.Column)
		out := &ast.ConsPattern{Cons: pat.Cons, Line: pat.Line, Column: pat.Column}
		for _, sub := range pat.Args {
			out.Args = append(out.Args, r.pattern(sc, sub))
		}
		return out
	default:
		return p
	}
}
