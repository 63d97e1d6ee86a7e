// Package lower turns a renamed surface program into flat ANF function
// declarations: expressions are normalised to atoms, case expressions
// become decision trees over tags and literals, constructors become
// explicit allocation and stores, and lambdas are closure converted.
package lower

import (
	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/layout"
	"github.com/lhaig/anfc/internal/names"
)

// MatchFailure is the foreign function a non-exhaustive case calls when
// no rule matches.
const MatchFailure = "match_failure"

// Options configures the lowering of one compilation unit.
type Options struct {
	// Policy fixes where constructor blocks keep their tag.
	Policy layout.Policy
	// Supply issues fresh names. Pass the supply used to rename the unit;
	// nil starts a new one that first claims every binder in the program.
	Supply *names.Supply
}

type lowerer struct {
	table    *layout.Table
	supply   *names.Supply
	globals  map[string]int // top-level function -> arity
	known    map[string]int // local functions called directly -> arity
	escapes  map[*ast.BlockExpr]bool
	wrappers map[string]string // top-level function -> closure wrapper
	lifted   []*anf.Decl
}

// Lower lowers every function of prog. The result lists the top-level
// functions in source order followed by the lifted ones. Any broken input
// contract aborts the whole unit with an InternalError; there is no partial
// output.
func Lower(prog *ast.Program, opts Options) (decls []*anf.Decl, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				if _, internal := diagnostic.AsInternal(e); internal {
					decls, err = nil, e
					return
				}
			}
			panic(r)
		}
	}()

	table, err := layout.New(opts.Policy, ast.DataDecls(prog))
	if err != nil {
		return nil, err
	}
	supply := opts.Supply
	if supply == nil {
		supply = names.NewSupply()
		seed(supply, prog)
	}
	l := &lowerer{
		table:    table,
		supply:   supply,
		globals:  make(map[string]int),
		known:    make(map[string]int),
		wrappers: make(map[string]string),
	}

	fns := prog.Funcs()
	for _, fn := range fns {
		if _, dup := l.globals[fn.Name]; dup {
			return nil, diagnostic.Internalf(diagnostic.NameCollision, "function '%s' declared twice", fn.Name)
		}
		l.globals[fn.Name] = len(fn.Params)
		if !supply.Taken(fn.Name) {
			supply.Reserve(fn.Name)
		}
	}
	l.escapes = analyzeEscapes(prog)

	for _, fn := range fns {
		decls = append(decls, &anf.Decl{
			Name:   fn.Name,
			Params: fn.ParamNames(),
			Body:   l.normalize(fn.Body),
		})
	}
	return append(decls, l.lifted...), nil
}

// direct reports whether name can be called without going through a
// closure, and with how many arguments.
func (l *lowerer) direct(name string) (int, bool) {
	if n, ok := l.globals[name]; ok {
		return n, true
	}
	n, ok := l.known[name]
	return n, ok
}

func (l *lowerer) lookup(cons string) *layout.Constructor {
	c, err := l.table.Lookup(cons)
	if err != nil {
		panic(err)
	}
	return c
}

func fatal(kind diagnostic.InternalKind, format string, args ...interface{}) {
	panic(diagnostic.Internalf(kind, format, args...))
}
