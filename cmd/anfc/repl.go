package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/lmorg/readline"

	"github.com/lhaig/anfc/internal/anf"
	"github.com/lhaig/anfc/internal/compiler"
	"github.com/lhaig/anfc/internal/interp"
	"github.com/lhaig/anfc/internal/layout"
)

const replHelp = `Enter declarations (fun, data, type, extern) to add them to the session.
Any other line is an expression: it is lowered as 'fun it() = <expr>',
printed, and run.

  :tags header|inband   switch the tag policy
  :show                 print the session lowered
  :reset                forget all declarations
  :quit                 leave
`

// session is the state of one REPL: the declarations entered so far.
type session struct {
	decls []string
	opts  compiler.Options
	out   io.Writer
}

func newSession(cfg *config, out io.Writer) *session {
	opts := cfg.opts
	opts.Backend = "text"
	return &session{opts: opts, out: out}
}

func (s *session) source(extra string) string {
	return strings.Join(append(append([]string(nil), s.decls...), extra), "\n")
}

func isDeclaration(line string) bool {
	for _, kw := range []string{"fun ", "data ", "type ", "extern "} {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

// handle runs one input line and reports whether the session is over.
func (s *session) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == ":quit" || line == ":q":
		return true
	case line == ":help":
		fmt.Fprint(s.out, replHelp)
	case line == ":reset":
		s.decls = nil
	case line == ":show":
		if res, ok := s.compile(s.source("")); ok {
			fmt.Fprint(s.out, string(res.Output))
		}
	case strings.HasPrefix(line, ":tags"):
		policy, err := layout.ParsePolicy(strings.TrimSpace(strings.TrimPrefix(line, ":tags")))
		if err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		s.opts.Policy = policy
		fmt.Fprintf(s.out, "tags: %s\n", policy)
	case strings.HasPrefix(line, ":"):
		fmt.Fprintf(s.out, "unknown command %s (try :help)\n", line)
	case isDeclaration(line):
		if _, ok := s.compile(s.source(line)); ok {
			s.decls = append(s.decls, line)
		}
	default:
		s.eval(line)
	}
	return false
}

func (s *session) compile(src string) (*compiler.Result, bool) {
	res, err := compiler.Compile(src, s.opts)
	if err != nil {
		fmt.Fprintf(s.out, "internal error: %v\n", err)
		return nil, false
	}
	if res.Diagnostics.HasErrors() {
		printDiagnostics(s.out, "repl", res.Diagnostics)
		return nil, false
	}
	return res, true
}

func (s *session) eval(expr string) {
	res, ok := s.compile(s.source("fun it() = " + expr))
	if !ok {
		return
	}
	for _, d := range res.Decls {
		if d.Name == "it" {
			fmt.Fprint(s.out, anf.Print(d))
		}
	}

	m := interp.New(res.Decls, map[string]interp.Foreign{
		"print": func(args []interp.Value) (interp.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.String()
			}
			fmt.Fprintln(s.out, strings.Join(parts, " "))
			return interp.Unit(), nil
		},
	})
	v, err := m.Call("it")
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", errorColor.Sprint("error:"), err)
		return
	}
	fmt.Fprintf(s.out, "= %s\n", okColor.Sprint(v))
}

func handleRepl(cfg *config) {
	fmt.Println("anfc repl (:help for commands)")
	s := newSession(cfg, color.Output)
	rline := readline.NewInstance()
	rline.SetPrompt("anf> ")
	for {
		line, err := rline.Readline()
		if err != nil {
			return
		}
		if s.handle(line) {
			return
		}
	}
}
