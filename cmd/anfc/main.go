package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lhaig/anfc/internal/compiler"
	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/parser"
)

const usage = `anfc - lowers a small functional language to A-normal form

Usage:
  anfc lower [options] <path>...    Lower source files and print or write the IR
  anfc check <path>...              Parse, resolve names and report case warnings
  anfc lint <path>...               Run case-analysis and style checks only
  anfc fmt [--write] <path>...      Print source files in canonical form
  anfc repl [options]               Interactive session

A path may be a file or a directory; directories contribute every .fun file
below them.

Options:
  --tags header|inband   Where constructor tags live (env ANFC_TAGS)
  --backend text|json    Output format (env ANFC_BACKEND)
  --jobs N, -j N         Units lowered at once; 0 means one per CPU (env ANFC_JOBS)
  --out DIR, -o DIR      Write one output file per unit into DIR
  --no-validate          Skip checking the lowered IR
  --write, -w            fmt: rewrite files in place
  --no-color             Plain output (env NO_COLOR)
  --verbose, -v          Debug logging on stderr (env ANFC_LOG_LEVEL)

Examples:
  anfc lower list.fun                 Print the lowered IR of list.fun
  anfc lower --backend json -o out .  Write out/<unit>.json for every unit
  anfc check list.fun                 Check for errors without lowering
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Print(usage)
		return
	}

	cfg, err := defaultConfig()
	if err != nil {
		fatalf("%s", err)
	}
	if err := parseArgs(cfg, os.Args[2:]); err != nil {
		fatalf("%s", err)
	}
	setupColor(cfg)
	logger := newLogger(cfg)
	cfg.opts.Logger = &logger

	switch command {
	case "lower":
		handleLower(cfg)
	case "check":
		handleCheck(cfg)
	case "lint":
		handleLint(cfg)
	case "fmt":
		handleFmt(cfg)
	case "repl":
		handleRepl(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func discover(cfg *config) []compiler.Unit {
	if len(cfg.paths) == 0 {
		fatalf("no input file specified")
	}
	units, err := compiler.Discover(cfg.paths...)
	if err != nil {
		fatalf("%s", err)
	}
	if len(units) == 0 {
		fatalf("no %s files found", compiler.SourceExt)
	}
	return units
}

func reportResults(results []*compiler.Result) bool {
	failed := false
	for _, res := range results {
		printDiagnostics(os.Stderr, res.Name, res.Diagnostics)
		if res.Diagnostics.HasErrors() {
			failed = true
		}
	}
	return failed
}

func handleLower(cfg *config) {
	units := discover(cfg)
	ctx := context.Background()

	if cfg.outDir != "" {
		results, written, err := compiler.EmitToFile(ctx, units, cfg.outDir, cfg.opts)
		if err != nil {
			exitOnError(err)
		}
		failed := reportResults(results)
		for _, path := range written {
			fmt.Printf("Wrote %s\n", path)
		}
		if failed {
			os.Exit(1)
		}
		return
	}

	results, err := compiler.CompileUnits(ctx, units, cfg.opts)
	if err != nil {
		exitOnError(err)
	}
	failed := reportResults(results)
	for _, res := range results {
		os.Stdout.Write(res.Output)
	}
	if failed {
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if _, ok := diagnostic.AsInternal(err); ok {
		internalFailure(err)
	}
	fatalf("%s", err)
}

func handleCheck(cfg *config) {
	failed := false
	for _, u := range discover(cfg) {
		diag := compiler.Check(u.Source)
		printDiagnostics(os.Stderr, u.Name, diag)
		if diag.HasErrors() {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	fmt.Println(okColor.Sprint("No errors found."))
}

func handleLint(cfg *config) {
	count := 0
	for _, u := range discover(cfg) {
		p := parser.New(u.Source)
		prog := p.Parse()
		if p.Diagnostics().HasErrors() {
			printDiagnostics(os.Stderr, u.Name, p.Diagnostics())
			os.Exit(1)
		}
		diag := compiler.Lint(prog)
		printDiagnostics(os.Stdout, u.Name, diag)
		count += diag.Count()
	}

	if count == 0 {
		fmt.Println(okColor.Sprint("No lint warnings."))
		return
	}
	fmt.Println()
	fmt.Printf("%d warning(s) found.\n", count)
}

func handleFmt(cfg *config) {
	failed := false
	for _, u := range discover(cfg) {
		out, diag := compiler.Format(u.Source)
		if diag.HasErrors() {
			printDiagnostics(os.Stderr, u.Name, diag)
			failed = true
			continue
		}
		if !cfg.write {
			fmt.Print(out)
			continue
		}
		if out == u.Source {
			continue
		}
		if err := os.WriteFile(u.Name, []byte(out), 0644); err != nil {
			fatalf("writing %s: %s", u.Name, err)
		}
		fmt.Printf("Formatted %s\n", u.Name)
	}
	if failed {
		os.Exit(1)
	}
}
