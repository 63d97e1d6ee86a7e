package ast

// Inspect walks e depth-first in source order, calling f on every
// expression. Children of an expression are skipped when f returns false.
// The bodies of functions declared in letrec blocks are visited too.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch expr := e.(type) {
	case *PrimExpr:
		inspectAll(expr.Args, f)
	case *FunExpr:
		Inspect(expr.Body, f)
	case *AppExpr:
		Inspect(expr.Func, f)
		inspectAll(expr.Args, f)
	case *ExtCallExpr:
		inspectAll(expr.Args, f)
	case *ConsExpr:
		inspectAll(expr.Args, f)
	case *LetExpr:
		Inspect(expr.Value, f)
		Inspect(expr.Cont, f)
	case *CaseExpr:
		Inspect(expr.Scrutinee, f)
		for _, r := range expr.Rules {
			Inspect(r.Body, f)
		}
	case *BlockExpr:
		for _, d := range expr.Decls {
			if fn, ok := d.(*FuncDecl); ok {
				Inspect(fn.Body, f)
			}
		}
		Inspect(expr.Cont, f)
	}
}

func inspectAll(es []Expr, f func(Expr) bool) {
	for _, e := range es {
		Inspect(e, f)
	}
}

// DataDecls returns every data declaration of prog, including those
// declared inside letrec blocks, in source order.
func DataDecls(prog *Program) []*DataDecl {
	var out []*DataDecl
	inBlock := func(e Expr) bool {
		if blk, ok := e.(*BlockExpr); ok {
			for _, d := range blk.Decls {
				if dd, ok := d.(*DataDecl); ok {
					out = append(out, dd)
				}
			}
		}
		return true
	}
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *DataDecl:
			out = append(out, decl)
		case *FuncDecl:
			Inspect(decl.Body, inBlock)
		}
	}
	return out
}
