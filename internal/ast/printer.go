package ast

import (
	"fmt"
	"strconv"

	"github.com/lhaig/anfc/internal/pretty"
)

// Print renders a node in source form. The output parses back to an
// equivalent tree.
func Print(node Node) string {
	w := pretty.New()
	printNode(w, node)
	return w.String()
}

// FormatLit renders a literal value in source form.
func FormatLit(l Lit) string {
	switch l.Kind {
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitReal:
		return pretty.Real(l.Real)
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitChar:
		return pretty.Char(l.Char)
	case LitUnit:
		return "()"
	default:
		return "?"
	}
}

func printNode(w *pretty.Writer, node Node) {
	switch n := node.(type) {
	case *Program:
		for i, d := range n.Decls {
			if i > 0 {
				w.Newline()
				w.Newline()
			}
			printDecl(w, d)
		}
		w.WriteString("\n")
	case Decl:
		printDecl(w, n)
	case Expr:
		printExpr(w, n)
	case Pattern:
		printPattern(w, n)
	case Type:
		printType(w, n)
	case *Rule:
		printRule(w, n)
	case *Variant:
		printVariant(w, n)
	default:
		w.Printf("<%T>", node)
	}
}

func printExpr(w *pretty.Writer, e Expr) {
	switch expr := e.(type) {
	case *LitExpr:
		w.WriteString(FormatLit(expr.Value))

	case *VarExpr:
		w.WriteString(expr.Name)

	case *PrimExpr:
		w.Printf("@%s", expr.Prim)
		printArgs(w, expr.Args)

	case *FunExpr:
		w.WriteString("fn (")
		for i, p := range expr.Params {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteString(p)
		}
		w.WriteString(") {")
		w.Indent()
		w.Newline()
		printExpr(w, expr.Body)
		w.Dedent()
		w.Newline()
		w.WriteString("}")

	case *AppExpr:
		switch expr.Func.(type) {
		case *VarExpr, *AppExpr:
			printExpr(w, expr.Func)
		default:
			w.WriteString("(")
			printExpr(w, expr.Func)
			w.WriteString(")")
		}
		printArgs(w, expr.Args)

	case *ExtCallExpr:
		w.Printf("#%s", expr.Func)
		printArgs(w, expr.Args)

	case *ConsExpr:
		w.WriteString(expr.Cons)
		if len(expr.Args) > 0 {
			printArgs(w, expr.Args)
		}

	case *LetExpr:
		w.Printf("let %s = ", expr.Name)
		printExpr(w, expr.Value)
		w.WriteString(";")
		w.Newline()
		printExpr(w, expr.Cont)

	case *CaseExpr:
		w.WriteString("case ")
		printExpr(w, expr.Scrutinee)
		w.WriteString(" of")
		for _, rule := range expr.Rules {
			w.Newline()
			printRule(w, rule)
		}
		w.Newline()
		w.WriteString("end")

	case *BlockExpr:
		w.WriteString("letrec")
		w.Indent()
		for _, d := range expr.Decls {
			w.Newline()
			printDecl(w, d)
		}
		w.Dedent()
		w.Newline()
		w.WriteString("in")
		w.Indent()
		w.Newline()
		printExpr(w, expr.Cont)
		w.Dedent()
		w.Newline()
		w.WriteString("end")

	default:
		w.Printf("<%T>", e)
	}
}

func printArgs(w *pretty.Writer, args []Expr) {
	w.WriteString("(")
	for i, a := range args {
		if i > 0 {
			w.WriteString(", ")
		}
		printExpr(w, a)
	}
	w.WriteString(")")
}

func printRule(w *pretty.Writer, r *Rule) {
	w.WriteString("| ")
	printPattern(w, r.Pattern)
	w.WriteString(" => ")
	printExpr(w, r.Body)
}

func printPattern(w *pretty.Writer, p Pattern) {
	switch pat := p.(type) {
	case *VarPattern:
		w.WriteString(pat.Name)
	case *LitPattern:
		w.WriteString(FormatLit(pat.Value))
	case *ConsPattern:
		w.WriteString(pat.Cons)
		if len(pat.Args) > 0 {
			w.WriteString("(")
			for i, sub := range pat.Args {
				if i > 0 {
					w.WriteString(", ")
				}
				printPattern(w, sub)
			}
			w.WriteString(")")
		}
	case *WildPattern:
		w.WriteString("_")
	default:
		w.Printf("<%T>", p)
	}
}

func printDecl(w *pretty.Writer, d Decl) {
	switch decl := d.(type) {
	case *FuncDecl:
		w.Printf("fun %s(", decl.Name)
		for i, p := range decl.Params {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteString(p.Name)
			if p.Type != nil {
				w.WriteString(": ")
				printType(w, p.Type)
			}
		}
		w.WriteString(")")
		if decl.Result != nil {
			w.WriteString(": ")
			printType(w, decl.Result)
		}
		w.WriteString(" = ")
		printExpr(w, decl.Body)

	case *DataDecl:
		w.Printf("data %s%s =", decl.Name, typeParams(decl.TypeParams))
		for _, v := range decl.Variants {
			w.Newline()
			printVariant(w, v)
		}
		w.Newline()
		w.WriteString("end")

	case *TypeDecl:
		w.Printf("type %s%s = ", decl.Name, typeParams(decl.TypeParams))
		printType(w, decl.Type)
		w.WriteString(";")

	case *ExternDecl:
		w.Printf("extern %s%s: ", decl.Name, typeParams(decl.TypeParams))
		printType(w, decl.Type)
		w.WriteString(";")

	default:
		w.Printf("<%T>", d)
	}
}

func printVariant(w *pretty.Writer, v *Variant) {
	w.WriteString("| " + v.Cons)
	if len(v.Fields) > 0 {
		w.WriteString("[")
		for i, f := range v.Fields {
			if i > 0 {
				w.WriteString(", ")
			}
			printType(w, f)
		}
		w.WriteString("]")
	}
}

func printType(w *pretty.Writer, t Type) {
	switch typ := t.(type) {
	case *LitType:
		w.WriteString(typ.Kind.String())
	case *NameType:
		w.WriteString(typ.Name)
		if len(typ.Args) > 0 {
			w.WriteString("[")
			for i, a := range typ.Args {
				if i > 0 {
					w.WriteString(", ")
				}
				printType(w, a)
			}
			w.WriteString("]")
		}
	case *FunType:
		w.WriteString("fn(")
		for i, p := range typ.Params {
			if i > 0 {
				w.WriteString(", ")
			}
			printType(w, p)
		}
		w.WriteString(") -> ")
		printType(w, typ.Result)
	default:
		w.WriteString(fmt.Sprintf("<%T>", t))
	}
}

func typeParams(params []string) string {
	if len(params) == 0 {
		return ""
	}
	s := "["
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += p
	}
	return s + "]"
}
