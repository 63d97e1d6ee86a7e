package rename

// SymbolKind represents the kind of symbol
type SymbolKind int

const (
	SymLocal SymbolKind = iota
	SymParam
	SymFunction
	SymLocalFunction
	SymExtern
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymLocal:
		return "variable"
	case SymParam:
		return "parameter"
	case SymFunction:
		return "function"
	case SymLocalFunction:
		return "local function"
	case SymExtern:
		return "foreign function"
	default:
		return "unknown"
	}
}

// Symbol is a resolved binder: the source name and the unique name it was
// given.
type Symbol struct {
	Name   string
	Unique string
	Kind   SymbolKind
}

// Constructor records the arity declared for a data constructor.
type Constructor struct {
	Name  string
	Type  string
	Arity int
}

// externKey keeps foreign signatures apart from ordinary bindings.
func externKey(name string) string { return "#" + name }

// Scope represents a lexical scope with a symbol table
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	cons    map[string]*Constructor
}

// NewScope creates a new scope with an optional parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
		cons:    make(map[string]*Constructor),
	}
}

// Define adds a symbol to the current scope, shadowing any outer binding.
func (s *Scope) Define(sym *Symbol) {
	s.symbols[sym.Name] = sym
}

// Resolve looks up a symbol in the current scope and parent scopes.
// Returns nil if the symbol is not found
func (s *Scope) Resolve(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// ResolveLocal looks up a symbol only in the current scope (not parent scopes)
func (s *Scope) ResolveLocal(name string) *Symbol {
	return s.symbols[name]
}

// DefineCons adds a constructor to the current scope.
func (s *Scope) DefineCons(c *Constructor) {
	s.cons[c.Name] = c
}

// ResolveCons looks up a constructor through the scope chain.
func (s *Scope) ResolveCons(name string) *Constructor {
	for sc := s; sc != nil; sc = sc.parent {
		if c, ok := sc.cons[name]; ok {
			return c
		}
	}
	return nil
}
