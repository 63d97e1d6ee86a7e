package compiler

import (
	"context"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/layout"
	"github.com/lhaig/anfc/internal/linter"
	"github.com/lhaig/anfc/internal/lower"
	"github.com/lhaig/anfc/internal/names"
	"github.com/lhaig/anfc/internal/parser"
	"github.com/lhaig/anfc/internal/rename"
)

// Options configures a compilation.
type Options struct {
	// Policy fixes where constructor blocks keep their tag.
	Policy layout.Policy
	// Backend names the renderer; empty means "text".
	Backend string
	// Validate checks the lowered declarations before rendering.
	Validate bool
	// Parallelism bounds concurrent units and validations; 0 means
	// GOMAXPROCS.
	Parallelism int
	// Logger receives debug events; nil discards them.
	Logger *zerolog.Logger
}

// DefaultOptions returns the options the CLI starts from.
func DefaultOptions() Options {
	return Options{Policy: layout.Header, Backend: "text", Validate: true}
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

func (o Options) jobs() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// Unit is one source file compiled on its own.
type Unit struct {
	Name   string
	Source string
}

// Result holds the output of a compilation
type Result struct {
	Name        string
	Diagnostics *diagnostic.Diagnostics
	Program     *ast.Program
	Decls       []*anf.Decl
	Output      []byte
}

// Compile runs the full pipeline on one source: parse -> rename -> lower ->
// validate -> render. User errors are reported in the result's
// diagnostics; the returned error is reserved for broken internal
// contracts.
func Compile(source string, opts Options) (*Result, error) {
	return CompileUnit(context.Background(), Unit{Name: "input", Source: source}, opts)
}

// CompileUnit compiles one unit.
func CompileUnit(ctx context.Context, unit Unit, opts Options) (*Result, error) {
	log := opts.logger().With().Str("unit", unit.Name).Logger()
	res := &Result{Name: unit.Name}

	be, err := getBackend(opts)
	if err != nil {
		return nil, err
	}

	// Parse
	p := parser.New(unit.Source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		res.Diagnostics = p.Diagnostics()
		return res, nil
	}
	log.Debug().Int("decls", len(prog.Decls)).Msg("parsed")

	// Resolve names; the supply carries over into lowering
	supply := names.NewSupply()
	rr := rename.Resolve(prog, supply)
	res.Diagnostics = rr.Diagnostics
	if rr.Diagnostics.HasErrors() {
		return res, nil
	}
	res.Program = rr.Program
	log.Debug().Int("names", supply.Counter()).Msg("renamed")

	decls, err := lower.Lower(rr.Program, lower.Options{Policy: opts.Policy, Supply: supply})
	if err != nil {
		return nil, errors.Wrapf(err, "%s", unit.Name)
	}
	res.Decls = decls
	log.Debug().Int("functions", len(decls)).Int("steps", countSteps(decls)).Msg("lowered")

	if opts.Validate {
		if err := Validate(ctx, decls, opts.jobs()); err != nil {
			return nil, errors.Wrapf(err, "%s", unit.Name)
		}
		log.Debug().Msg("validated")
	}

	out, err := be.Generate(decls)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", unit.Name)
	}
	res.Output = out
	log.Debug().Str("backend", be.Name()).Int("bytes", len(out)).Msg("rendered")

	return res, nil
}

// CompileUnits compiles independent units concurrently. Results come back
// in the order of units. The first internal error cancels the rest.
func CompileUnits(ctx context.Context, units []Unit, opts Options) ([]*Result, error) {
	results := make([]*Result, len(units))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs())

	for i, u := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := CompileUnit(ctx, u, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Validate checks the declarations of one unit concurrently and returns a
// Malformed internal error listing every problem found.
func Validate(ctx context.Context, decls []*anf.Decl, jobs int) error {
	globals := make(map[string]bool, len(decls))
	var problems []string
	for _, d := range decls {
		if globals[d.Name] {
			problems = append(problems, "function "+d.Name+" declared twice")
		}
		globals[d.Name] = true
	}

	found := make([][]string, len(decls))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, d := range decls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found[i] = anf.ValidateDecl(d, globals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, f := range found {
		problems = append(problems, f...)
	}
	if len(problems) > 0 {
		return diagnostic.Internalf(diagnostic.Malformed, "lowered code is malformed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

// Check runs parse + rename + lint only (no lowering).
func Check(source string) *diagnostic.Diagnostics {
	p := parser.New(source)
	prog := p.Parse()

	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}

	diag := Lint(prog)
	rr := rename.Resolve(prog, names.NewSupply())
	diag.Merge("", rr.Diagnostics)
	return diag
}

// Lint runs the case-analysis and style checks on a parsed program.
func Lint(prog *ast.Program) *diagnostic.Diagnostics {
	return linter.Lint(prog)
}

// Format parses source and prints it back in canonical form.
func Format(source string) (string, *diagnostic.Diagnostics) {
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return "", p.Diagnostics()
	}
	return ast.Print(prog), p.Diagnostics()
}

func backendName(opts Options) string {
	if opts.Backend == "" {
		return "text"
	}
	return opts.Backend
}

func countSteps(decls []*anf.Decl) int {
	n := 0
	for _, d := range decls {
		n += anf.CountSteps(d)
	}
	return n
}
