package lower

import (
	"strings"

	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
)

var binPrims = map[ast.Builtin]anf.BinPrim{
	ast.IAdd: anf.IAdd, ast.ISub: anf.ISub, ast.IMul: anf.IMul, ast.IDiv: anf.IDiv, ast.IRem: anf.IRem,
	ast.RAdd: anf.RAdd, ast.RSub: anf.RSub, ast.RMul: anf.RMul, ast.RDiv: anf.RDiv,
	ast.BAnd: anf.BAnd, ast.BOr: anf.BOr,
	ast.ICmpEq: anf.ICmpEq, ast.ICmpNe: anf.ICmpNe, ast.ICmpGr: anf.ICmpGr,
	ast.ICmpGe: anf.ICmpGe, ast.ICmpLs: anf.ICmpLs, ast.ICmpLe: anf.ICmpLe,
	ast.RCmpEq: anf.RCmpEq, ast.RCmpNe: anf.RCmpNe, ast.RCmpGr: anf.RCmpGr,
	ast.RCmpGe: anf.RCmpGe, ast.RCmpLs: anf.RCmpLs, ast.RCmpLe: anf.RCmpLe,
}

// normalize lowers e to a complete chain ending in return.
func (l *lowerer) normalize(e ast.Expr) anf.Step {
	b := anf.NewBuilder()
	a := l.toAtom(e, b, "")
	return b.Return(a)
}

// name returns dest, or a fresh name derived from base when dest is empty.
func (l *lowerer) name(dest, base string) string {
	if dest != "" {
		return dest
	}
	return l.supply.Fresh(base)
}

// toAtom emits the steps computing e into b and returns the atom holding
// its value. When dest is set and e needs a step, that step binds dest;
// the caller moves the returned atom into dest otherwise.
func (l *lowerer) toAtom(e ast.Expr, b *anf.Builder, dest string) anf.Atom {
	switch expr := e.(type) {
	case *ast.LitExpr:
		return litAtom(expr.Value)

	case *ast.VarExpr:
		return l.varAtom(expr, b, dest)

	case *ast.PrimExpr:
		return l.prim(expr, b, dest)

	case *ast.FunExpr:
		return l.lambda(expr, b, dest)

	case *ast.AppExpr:
		return l.apply(expr, b, dest)

	case *ast.ExtCallExpr:
		args := l.atoms(expr.Args, b)
		return b.ExtCall(l.name(dest, expr.Func), expr.Func, args)

	case *ast.ConsExpr:
		return l.construct(expr, b, dest)

	case *ast.LetExpr:
		v := l.toAtom(expr.Value, b, expr.Name)
		if x, ok := v.(anf.Var); !ok || x.Name != expr.Name {
			b.Move(expr.Name, v)
		}
		return l.toAtom(expr.Cont, b, dest)

	case *ast.CaseExpr:
		scrut := l.toAtom(expr.Scrutinee, b, "")
		return l.match(b, scrut, expr.Rules, dest)

	case *ast.BlockExpr:
		l.block(expr, b)
		return l.toAtom(expr.Cont, b, dest)
	}

	line, col := e.Pos()
	fatal(diagnostic.Malformed, "cannot lower %T at %d:%d", e, line, col)
	return nil
}

// atoms lowers es left to right.
func (l *lowerer) atoms(es []ast.Expr, b *anf.Builder) []anf.Atom {
	out := make([]anf.Atom, len(es))
	for i, e := range es {
		out[i] = l.toAtom(e, b, "")
	}
	return out
}

func litAtom(v ast.Lit) anf.Atom {
	switch v.Kind {
	case ast.LitInt:
		return anf.Int{Value: v.Int}
	case ast.LitReal:
		return anf.Real{Value: v.Real}
	case ast.LitBool:
		return anf.Bool{Value: v.Bool}
	case ast.LitChar:
		return anf.Char{Value: v.Char}
	default:
		return anf.Unit{}
	}
}

func (l *lowerer) varAtom(v *ast.VarExpr, b *anf.Builder, dest string) anf.Atom {
	if _, ok := l.globals[v.Name]; ok {
		return l.globalClosure(v.Name, b, dest)
	}
	if _, ok := l.known[v.Name]; ok {
		fatal(diagnostic.Malformed, "local function '%s' used as a value was not closure converted", v.Name)
	}
	return anf.V(v.Name)
}

func (l *lowerer) prim(p *ast.PrimExpr, b *anf.Builder, dest string) anf.Atom {
	if len(p.Args) != p.Prim.Arity() {
		fatal(diagnostic.ArityMismatch, "builtin '%s' applied to %d arguments", p.Prim, len(p.Args))
	}
	args := l.atoms(p.Args, b)
	bind := l.name(dest, p.Prim.String())
	switch p.Prim {
	case ast.INeg:
		return b.UnOp(bind, anf.INeg, args[0])
	case ast.BNot:
		return b.UnOp(bind, anf.BNot, args[0])
	}
	op, ok := binPrims[p.Prim]
	if !ok {
		fatal(diagnostic.Malformed, "unknown builtin %d", int(p.Prim))
	}
	return b.BinOp(bind, op, args[0], args[1])
}

// apply lowers a call. The callee is evaluated first, then the arguments
// left to right. Known functions are called by name; any other callee is a
// closure block whose word 0 holds the code.
func (l *lowerer) apply(app *ast.AppExpr, b *anf.Builder, dest string) anf.Atom {
	if v, ok := app.Func.(*ast.VarExpr); ok {
		if arity, ok := l.direct(v.Name); ok {
			if arity != len(app.Args) {
				fatal(diagnostic.ArityMismatch, "'%s' takes %d arguments, called with %d", v.Name, arity, len(app.Args))
			}
			args := l.atoms(app.Args, b)
			return b.Call(l.name(dest, "r"), anf.V(v.Name), args)
		}
	}
	clo := l.toAtom(app.Func, b, "")
	args := l.atoms(app.Args, b)
	code := b.Load(l.supply.Fresh("code"), clo, 0)
	return b.Call(l.name(dest, "r"), code, append([]anf.Atom{clo}, args...))
}

// construct allocates a constructor block, stores the tag and the fields
// and returns the value pointer.
func (l *lowerer) construct(c *ast.ConsExpr, b *anf.Builder, dest string) anf.Atom {
	lay := l.lookup(c.Cons)
	if lay.Arity != len(c.Args) {
		fatal(diagnostic.ArityMismatch, "constructor '%s' takes %d fields, given %d", c.Cons, lay.Arity, len(c.Args))
	}
	args := l.atoms(c.Args, b)
	bind := l.name(dest, strings.ToLower(c.Cons))

	var v anf.Atom
	if base := l.table.FieldBase(); base > 0 {
		blk := b.Alloc(l.supply.Fresh("blk"), l.table.BlockSize(lay))
		v = b.Offset(bind, blk, base)
	} else {
		v = b.Alloc(bind, l.table.BlockSize(lay))
	}
	b.Store(v, l.table.TagIndex(), anf.Int{Value: int64(lay.Tag)})
	for i, a := range args {
		b.Store(v, l.table.FieldIndex(i), a)
	}
	return v
}
