package linter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
)

// Linter performs case-analysis and style checks on a parsed program.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	prog *ast.Program
	sig  *signature
	diag *diagnostic.Diagnostics
}

// Lint runs all lint rules on the given program and returns diagnostics.
func Lint(prog *ast.Program) *diagnostic.Diagnostics {
	l := &Linter{
		prog: prog,
		sig:  newSignature(ast.DataDecls(prog)),
		diag: diagnostic.New(),
	}

	for _, fn := range prog.Funcs() {
		l.lintFunction(fn)
	}
	l.lintData()

	return l.diag
}

// lintFunction checks one top-level function and everything nested in it.
func (l *Linter) lintFunction(fn *ast.FuncDecl) {
	l.checkFunctionNaming(fn.Name, fn.Line, fn.Column)

	used := collectUsedNames(fn.Body)
	l.checkUnusedParams(fn.Name, fn.Params, used)

	ast.Inspect(fn.Body, func(e ast.Expr) bool {
		switch expr := e.(type) {
		case *ast.LetExpr:
			if !used[expr.Name] && !ignored(expr.Name) {
				l.diag.Warningf(expr.Line, expr.Column,
					"variable '%s' is declared but never used", expr.Name)
			}
		case *ast.FunExpr:
			for _, p := range expr.Params {
				if !used[p] && !ignored(p) {
					l.diag.Warningf(expr.Line, expr.Column,
						"parameter '%s' of anonymous function is never used", p)
				}
			}
		case *ast.BlockExpr:
			for _, d := range expr.Decls {
				if inner, ok := d.(*ast.FuncDecl); ok {
					l.checkFunctionNaming(inner.Name, inner.Line, inner.Column)
					l.checkUnusedParams(inner.Name, inner.Params, used)
					if !used[inner.Name] {
						l.diag.Warningf(inner.Line, inner.Column,
							"local function '%s' is never called", inner.Name)
					}
				}
			}
		case *ast.CaseExpr:
			l.checkCase(expr)
		}
		return true
	})
}

// lintData checks data declarations, including those nested in blocks.
func (l *Linter) lintData() {
	for _, d := range ast.DataDecls(l.prog) {
		for _, v := range d.Variants {
			if !isPascalCase(v.Cons) {
				l.diag.Warningf(v.Line, v.Column,
					"constructor '%s' in '%s' should use PascalCase naming", v.Cons, d.Name)
			}
		}
	}
}

// --- Lint rules ---

// checkCase warns about rules that can never match and about values no
// rule matches.
func (l *Linter) checkCase(c *ast.CaseExpr) {
	var rows [][]pat
	for i, r := range c.Rules {
		p := l.sig.convert(r.Pattern)
		if !l.sig.useful(rows, []pat{p}) {
			l.diag.WarningWithHint(r.Line, r.Column,
				fmt.Sprintf("rule %d can never match", i+1),
				fmt.Sprintf("earlier rules already cover '%s'", ast.Print(r.Pattern)))
		}
		rows = append(rows, []pat{p})
	}
	if w, ok := l.sig.witness(rows, 1); ok {
		l.diag.WarningWithHint(c.Line, c.Column,
			"case is not exhaustive",
			fmt.Sprintf("'%s' is not matched and traps at run time", w[0]))
	}
}

// checkFunctionNaming warns if a function name is not snake_case.
func (l *Linter) checkFunctionNaming(name string, line, col int) {
	if !isSnakeCase(name) {
		l.diag.Warningf(line, col,
			"function '%s' should use snake_case naming", name)
	}
}

// checkUnusedParams warns about function parameters that are never read in the body.
func (l *Linter) checkUnusedParams(scopeName string, params []*ast.Param, usedNames map[string]bool) {
	for _, p := range params {
		if !usedNames[p.Name] && !ignored(p.Name) {
			l.diag.Warningf(p.Line, p.Column,
				"parameter '%s' in '%s' is never used", p.Name, scopeName)
		}
	}
}

// --- Name collection helpers ---

// collectUsedNames collects every name an expression reads. Binders are
// not reads.
func collectUsedNames(e ast.Expr) map[string]bool {
	used := make(map[string]bool)
	ast.Inspect(e, func(e ast.Expr) bool {
		if v, ok := e.(*ast.VarExpr); ok {
			used[v.Name] = true
		}
		return true
	})
	return used
}

// ignored reports whether a binder opts out of unused checks.
func ignored(name string) bool {
	return strings.HasPrefix(name, "_")
}

// --- Naming convention helpers ---

// isSnakeCase returns true if the name follows snake_case conventions:
// lowercase letters, digits, and underscores only, not starting with a digit.
func isSnakeCase(name string) bool {
	if len(name) == 0 || unicode.IsDigit(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if !unicode.IsLower(r) && r != '_' && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isPascalCase returns true if the name starts with an uppercase letter
// and contains no underscores.
func isPascalCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	return !strings.ContainsRune(name, '_')
}
