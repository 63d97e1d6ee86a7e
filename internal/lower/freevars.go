package lower

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/names"
)

// collect records the names e references and the names it binds. Names are
// unique within a unit, so a name is free in e exactly when it is
// referenced and not bound.
func collect(e ast.Expr, refs, binds map[string]bool) {
	ast.Inspect(e, func(e ast.Expr) bool {
		switch expr := e.(type) {
		case *ast.VarExpr:
			refs[expr.Name] = true
		case *ast.FunExpr:
			for _, p := range expr.Params {
				binds[p] = true
			}
		case *ast.LetExpr:
			binds[expr.Name] = true
		case *ast.CaseExpr:
			for _, r := range expr.Rules {
				for _, name := range ast.PatternVars(r.Pattern) {
					binds[name] = true
				}
			}
		case *ast.BlockExpr:
			for _, d := range expr.Decls {
				if fn, ok := d.(*ast.FuncDecl); ok {
					binds[fn.Name] = true
					for _, p := range fn.Params {
						binds[p.Name] = true
					}
				}
			}
		}
		return true
	})
}

// freeVars returns the sorted names body needs from its environment,
// leaving out exclude and the top-level functions.
func (l *lowerer) freeVars(body ast.Expr, exclude ...string) []string {
	refs := make(map[string]bool)
	binds := make(map[string]bool)
	collect(body, refs, binds)
	for _, name := range exclude {
		binds[name] = true
	}
	var out []string
	for name := range refs {
		if binds[name] {
			continue
		}
		if _, global := l.globals[name]; global {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// seed claims every binder of prog in a new supply and moves its counter
// past their numeric suffixes, so a tree renamed with another supply keeps
// its names unique.
func seed(supply *names.Supply, prog *ast.Program) {
	binds := make(map[string]bool)
	for _, fn := range prog.Funcs() {
		binds[fn.Name] = true
		for _, p := range fn.Params {
			binds[p.Name] = true
		}
		collect(fn.Body, make(map[string]bool), binds)
	}
	for name := range binds {
		if !supply.Taken(name) {
			supply.Reserve(name)
		}
		if i := strings.LastIndexByte(name, '.'); i > 0 {
			if n, err := strconv.Atoi(name[i+1:]); err == nil {
				supply.Advance(n)
			}
		}
	}
}
