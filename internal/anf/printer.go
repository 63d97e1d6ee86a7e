package anf

import (
	"strings"

	"github.com/lhaig/anfc/internal/pretty"
)

// Print renders one declaration in its committed text form.
func Print(d *Decl) string {
	w := pretty.New()
	printDecl(w, d)
	return w.String()
}

// PrintAll renders declarations separated by blank lines, with a trailing
// newline.
func PrintAll(decls []*Decl) string {
	var sb strings.Builder
	for i, d := range decls {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(Print(d))
		sb.WriteString("\n")
	}
	return sb.String()
}

// PrintStep renders a chain without an enclosing declaration.
func PrintStep(s Step) string {
	w := pretty.New()
	printStep(w, s)
	return w.String()
}

func printDecl(w *pretty.Writer, d *Decl) {
	w.Printf("fun %s(%s) =", d.Name, strings.Join(d.Params, ", "))
	w.Indent()
	w.Newline()
	printStep(w, d.Body)
	w.Dedent()
}

func atoms(as []Atom) string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = atomString(a)
	}
	return strings.Join(parts, ", ")
}

func atomString(a Atom) string {
	if a == nil {
		return "<nil>"
	}
	return a.String()
}

func printStep(w *pretty.Writer, s Step) {
	for s != nil {
		switch st := s.(type) {
		case *LetRec:
			w.WriteString("letrec")
			w.Indent()
			for _, d := range st.Decls {
				w.Newline()
				printDecl(w, d)
			}
			w.Dedent()
			w.Newline()
			w.WriteString("in")
			w.Indent()
			w.Newline()
			printStep(w, st.Cont)
			w.Dedent()
			w.Newline()
			w.WriteString("end")
			return

		case *UnOp:
			w.Printf("let %s = %s(%s);", st.Bind, st.Prim, atomString(st.Arg))
		case *BinOp:
			w.Printf("let %s = %s(%s, %s);", st.Bind, st.Prim, atomString(st.Arg1), atomString(st.Arg2))
		case *Call:
			w.Printf("let %s = %s(%s);", st.Bind, atomString(st.Func), atoms(st.Args))
		case *ExtCall:
			w.Printf("let %s = %s(%s);", st.Bind, st.Func, atoms(st.Args))
		case *Retn:
			w.Printf("return %s;", atomString(st.Arg))
			return
		case *Alloc:
			w.Printf("let %s = alloc[%d];", st.Bind, st.Size)
		case *Load:
			w.Printf("let %s = load %s[%d];", st.Bind, atomString(st.Arg), st.Index)
		case *Store:
			w.Printf("store %s[%d] := %s;", atomString(st.Arg), st.Index, atomString(st.Value))
		case *Offset:
			w.Printf("let %s = offset %s[%d];", st.Bind, atomString(st.Arg), st.Index)

		case *Ifte:
			w.Printf("let %s = if(%s) then", st.Bind, atomString(st.Cond))
			printBranch(w, st.Then)
			w.Newline()
			w.WriteString("else")
			printBranch(w, st.Else)
			w.Newline()
			w.WriteString(";")

		case *Switch:
			w.Printf("let %s = switch(%s) {", st.Bind, atomString(st.Arg))
			w.Indent()
			for _, c := range st.Cases {
				w.Newline()
				w.Printf("case %d:", c.Tag)
				printBranch(w, c.Body)
			}
			if st.Default != nil {
				w.Newline()
				w.WriteString("default:")
				printBranch(w, st.Default)
			}
			w.Dedent()
			w.Newline()
			w.WriteString("}")

		default:
			w.Printf("<%T>", s)
			return
		}
		s = Next(s)
		if s == nil {
			return
		}
		w.Newline()
	}
}

func printBranch(w *pretty.Writer, s Step) {
	w.Indent()
	w.Newline()
	printStep(w, s)
	w.Dedent()
}
