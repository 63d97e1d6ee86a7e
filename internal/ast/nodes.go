package ast

// Node is the base interface for all surface tree nodes
type Node interface {
	Pos() (line, col int)
}

// Expr nodes
type Expr interface {
	Node
	exprNode()
}

// Pattern nodes
type Pattern interface {
	Node
	patternNode()
}

// Decl nodes
type Decl interface {
	Node
	DeclName() string
	declNode()
}

// Type nodes
type Type interface {
	Node
	typeNode()
}

// Program is a whole compilation unit: its top-level declarations in source order.
type Program struct {
	Decls []Decl
}

func (p *Program) Pos() (int, int) {
	if len(p.Decls) > 0 {
		return p.Decls[0].Pos()
	}
	return 0, 0
}

// Funcs returns the top-level function declarations in order.
func (p *Program) Funcs() []*FuncDecl {
	var fns []*FuncDecl
	for _, d := range p.Decls {
		if fn, ok := d.(*FuncDecl); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// --- Literals ---

// LitKind identifies the type of a literal value
type LitKind int

const (
	LitInt LitKind = iota
	LitReal
	LitBool
	LitChar
	LitUnit
)

// String returns the name of the literal's type
func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "Int"
	case LitReal:
		return "Real"
	case LitBool:
		return "Bool"
	case LitChar:
		return "Char"
	case LitUnit:
		return "()"
	default:
		return "unknown"
	}
}

// Lit is an immediate literal value. Only the field matching Kind is meaningful.
type Lit struct {
	Kind LitKind
	Int  int64
	Real float64
	Bool bool
	Char rune
}

// IntLit returns an integer literal.
func IntLit(v int64) Lit { return Lit{Kind: LitInt, Int: v} }

// RealLit returns a real literal.
func RealLit(v float64) Lit { return Lit{Kind: LitReal, Real: v} }

// BoolLit returns a boolean literal.
func BoolLit(v bool) Lit { return Lit{Kind: LitBool, Bool: v} }

// CharLit returns a character literal.
func CharLit(v rune) Lit { return Lit{Kind: LitChar, Char: v} }

// UnitLit returns the unit literal.
func UnitLit() Lit { return Lit{Kind: LitUnit} }

// --- Builtins ---

// Builtin is a primitive operation applied with @name(args).
type Builtin int

const (
	IAdd Builtin = iota
	ISub
	IMul
	IDiv
	IRem
	INeg
	RAdd
	RSub
	RMul
	RDiv
	BAnd
	BOr
	BNot
	ICmpEq
	ICmpNe
	ICmpGr
	ICmpGe
	ICmpLs
	ICmpLe
	RCmpEq
	RCmpNe
	RCmpGr
	RCmpGe
	RCmpLs
	RCmpLe
)

var builtinNames = [...]string{
	IAdd:   "iadd",
	ISub:   "isub",
	IMul:   "imul",
	IDiv:   "idiv",
	IRem:   "irem",
	INeg:   "ineg",
	RAdd:   "radd",
	RSub:   "rsub",
	RMul:   "rmul",
	RDiv:   "rdiv",
	BAnd:   "band",
	BOr:    "bor",
	BNot:   "bnot",
	ICmpEq: "icmpeq",
	ICmpNe: "icmpne",
	ICmpGr: "icmpgr",
	ICmpGe: "icmpge",
	ICmpLs: "icmpls",
	ICmpLe: "icmple",
	RCmpEq: "rcmpeq",
	RCmpNe: "rcmpne",
	RCmpGr: "rcmpgr",
	RCmpGe: "rcmpge",
	RCmpLs: "rcmpls",
	RCmpLe: "rcmple",
}

// String returns the builtin's source name
func (b Builtin) String() string {
	if int(b) >= 0 && int(b) < len(builtinNames) {
		return builtinNames[b]
	}
	return "unknown"
}

// Arity returns the number of operands the builtin takes.
func (b Builtin) Arity() int {
	switch b {
	case INeg, BNot:
		return 1
	default:
		return 2
	}
}

// LookupBuiltin resolves a source name such as "iadd".
func LookupBuiltin(name string) (Builtin, bool) {
	for i, n := range builtinNames {
		if n == name {
			return Builtin(i), true
		}
	}
	return 0, false
}

// --- Expressions ---

// LitExpr is a literal value
type LitExpr struct {
	Value  Lit
	Line   int
	Column int
}

func (e *LitExpr) Pos() (int, int) { return e.Line, e.Column }
func (*LitExpr) exprNode()         {}

// VarExpr references a bound name
type VarExpr struct {
	Name   string
	Line   int
	Column int
}

func (e *VarExpr) Pos() (int, int) { return e.Line, e.Column }
func (*VarExpr) exprNode()         {}

// PrimExpr applies a builtin primitive: @iadd(a, b)
type PrimExpr struct {
	Prim   Builtin
	Args   []Expr
	Line   int
	Column int
}

func (e *PrimExpr) Pos() (int, int) { return e.Line, e.Column }
func (*PrimExpr) exprNode()         {}

// FunExpr is an anonymous function: fn (x, y) { body }
type FunExpr struct {
	Params []string
	Body   Expr
	Line   int
	Column int
}

func (e *FunExpr) Pos() (int, int) { return e.Line, e.Column }
func (*FunExpr) exprNode()         {}

// AppExpr applies a function value: f(a, b)
type AppExpr struct {
	Func   Expr
	Args   []Expr
	Line   int
	Column int
}

func (e *AppExpr) Pos() (int, int) { return e.Line, e.Column }
func (*AppExpr) exprNode()         {}

// ExtCallExpr calls a foreign function: #puts(s)
type ExtCallExpr struct {
	Func   string
	Args   []Expr
	Line   int
	Column int
}

func (e *ExtCallExpr) Pos() (int, int) { return e.Line, e.Column }
func (*ExtCallExpr) exprNode()         {}

// ConsExpr applies a data constructor: Cons(x, xs)
type ConsExpr struct {
	Cons   string
	Args   []Expr
	Line   int
	Column int
}

func (e *ConsExpr) Pos() (int, int) { return e.Line, e.Column }
func (*ConsExpr) exprNode()         {}

// LetExpr binds a name for the rest of the expression: let x = e; cont
type LetExpr struct {
	Name   string
	Value  Expr
	Cont   Expr
	Line   int
	Column int
}

func (e *LetExpr) Pos() (int, int) { return e.Line, e.Column }
func (*LetExpr) exprNode()         {}

// CaseExpr matches a scrutinee against an ordered list of rules
type CaseExpr struct {
	Scrutinee Expr
	Rules     []*Rule
	Line      int
	Column    int
}

func (e *CaseExpr) Pos() (int, int) { return e.Line, e.Column }
func (*CaseExpr) exprNode()         {}

// BlockExpr introduces local declarations: letrec decls in cont end
type BlockExpr struct {
	Decls  []Decl
	Cont   Expr
	Line   int
	Column int
}

func (e *BlockExpr) Pos() (int, int) { return e.Line, e.Column }
func (*BlockExpr) exprNode()         {}

// Rule is one arm of a case expression
type Rule struct {
	Pattern Pattern
	Body    Expr
	Line    int
	Column  int
}

func (r *Rule) Pos() (int, int) { return r.Line, r.Column }

// --- Patterns ---

// VarPattern binds the matched value
type VarPattern struct {
	Name   string
	Line   int
	Column int
}

func (p *VarPattern) Pos() (int, int) { return p.Line, p.Column }
func (*VarPattern) patternNode()      {}

// LitPattern matches one literal value
type LitPattern struct {
	Value  Lit
	Line   int
	Column int
}

func (p *LitPattern) Pos() (int, int) { return p.Line, p.Column }
func (*LitPattern) patternNode()      {}

// ConsPattern matches a constructor and its fields
type ConsPattern struct {
	Cons   string
	Args   []Pattern
	Line   int
	Column int
}

func (p *ConsPattern) Pos() (int, int) { return p.Line, p.Column }
func (*ConsPattern) patternNode()      {}

// WildPattern matches anything without binding
type WildPattern struct {
	Line   int
	Column int
}

func (p *WildPattern) Pos() (int, int) { return p.Line, p.Column }
func (*WildPattern) patternNode()      {}

// IsWildOrVar reports whether p matches unconditionally.
func IsWildOrVar(p Pattern) bool {
	switch p.(type) {
	case *VarPattern, *WildPattern:
		return true
	}
	return false
}

// PatternVars returns the names a pattern binds, left to right.
func PatternVars(p Pattern) []string {
	var names []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch pat := p.(type) {
		case *VarPattern:
			names = append(names, pat.Name)
		case *ConsPattern:
			for _, sub := range pat.Args {
				walk(sub)
			}
		}
	}
	walk(p)
	return names
}

// --- Declarations ---

// Param is a function parameter with an optional type annotation
type Param struct {
	Name   string
	Type   Type // nil when unannotated
	Line   int
	Column int
}

func (p *Param) Pos() (int, int) { return p.Line, p.Column }

// FuncDecl declares a named function
type FuncDecl struct {
	Name   string
	Params []*Param
	Result Type // nil when unannotated
	Body   Expr
	Line   int
	Column int
}

func (d *FuncDecl) Pos() (int, int)  { return d.Line, d.Column }
func (d *FuncDecl) DeclName() string { return d.Name }
func (*FuncDecl) declNode()          {}

// ParamNames returns the parameter names in order.
func (d *FuncDecl) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}

// DataDecl declares an algebraic data type
type DataDecl struct {
	Name       string
	TypeParams []string
	Variants   []*Variant
	Line       int
	Column     int
}

func (d *DataDecl) Pos() (int, int)  { return d.Line, d.Column }
func (d *DataDecl) DeclName() string { return d.Name }
func (*DataDecl) declNode()          {}

// Variant is one constructor of a data type and its field types
type Variant struct {
	Cons   string
	Fields []Type
	Line   int
	Column int
}

func (v *Variant) Pos() (int, int) { return v.Line, v.Column }

// TypeDecl declares a type alias
type TypeDecl struct {
	Name       string
	TypeParams []string
	Type       Type
	Line       int
	Column     int
}

func (d *TypeDecl) Pos() (int, int)  { return d.Line, d.Column }
func (d *TypeDecl) DeclName() string { return d.Name }
func (*TypeDecl) declNode()          {}

// ExternDecl declares the signature of a foreign function
type ExternDecl struct {
	Name       string
	TypeParams []string
	Type       Type
	Line       int
	Column     int
}

func (d *ExternDecl) Pos() (int, int)  { return d.Line, d.Column }
func (d *ExternDecl) DeclName() string { return d.Name }
func (*ExternDecl) declNode()          {}

// --- Types ---

// LitType is one of the built-in base types
type LitType struct {
	Kind   LitKind
	Line   int
	Column int
}

func (t *LitType) Pos() (int, int) { return t.Line, t.Column }
func (*LitType) typeNode()         {}

// NameType is a type variable or an applied type constructor: a, List, Map[a, b]
type NameType struct {
	Name   string
	Args   []Type
	Line   int
	Column int
}

func (t *NameType) Pos() (int, int) { return t.Line, t.Column }
func (*NameType) typeNode()         {}

// FunType is a function type: fn(a, b) -> c
type FunType struct {
	Params []Type
	Result Type
	Line   int
	Column int
}

func (t *FunType) Pos() (int, int) { return t.Line, t.Column }
func (*FunType) typeNode()         {}
