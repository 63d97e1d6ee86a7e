package anf

// Builder accumulates a chain of steps with one open continuation. Each
// emitted step fills the previous hole and opens its own.
type Builder struct {
	head Step
	hole *Step
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Empty reports whether no step has been emitted since the last Close.
func (b *Builder) Empty() bool {
	return b.head == nil
}

func (b *Builder) emit(s Step, next *Step) {
	if b.head == nil {
		b.head = s
	} else {
		*b.hole = s
	}
	b.hole = next
}

// Close fills the open continuation with end and returns the chain. The
// builder is empty afterwards.
func (b *Builder) Close(end Step) Step {
	if b.head == nil {
		return end
	}
	*b.hole = end
	head := b.head
	b.head, b.hole = nil, nil
	return head
}

// Return closes the chain with return a.
func (b *Builder) Return(a Atom) Step {
	return b.Close(&Retn{Arg: a})
}

// UnOp emits let bind = prim(arg).
func (b *Builder) UnOp(bind string, prim UnPrim, arg Atom) Atom {
	s := &UnOp{Bind: bind, Prim: prim, Arg: arg}
	b.emit(s, &s.Cont)
	return V(bind)
}

// Move emits let bind = move(arg).
func (b *Builder) Move(bind string, arg Atom) Atom {
	return b.UnOp(bind, Move, arg)
}

// BinOp emits let bind = prim(a1, a2).
func (b *Builder) BinOp(bind string, prim BinPrim, a1, a2 Atom) Atom {
	s := &BinOp{Bind: bind, Prim: prim, Arg1: a1, Arg2: a2}
	b.emit(s, &s.Cont)
	return V(bind)
}

// Call emits let bind = f(args).
func (b *Builder) Call(bind string, f Atom, args []Atom) Atom {
	s := &Call{Bind: bind, Func: f, Args: args}
	b.emit(s, &s.Cont)
	return V(bind)
}

// ExtCall emits let bind = f(args) for a foreign f.
func (b *Builder) ExtCall(bind, f string, args []Atom) Atom {
	s := &ExtCall{Bind: bind, Func: f, Args: args}
	b.emit(s, &s.Cont)
	return V(bind)
}

// Alloc emits let bind = alloc[size].
func (b *Builder) Alloc(bind string, size int) Atom {
	s := &Alloc{Bind: bind, Size: size}
	b.emit(s, &s.Cont)
	return V(bind)
}

// Load emits let bind = load arg[index].
func (b *Builder) Load(bind string, arg Atom, index int) Atom {
	s := &Load{Bind: bind, Arg: arg, Index: index}
	b.emit(s, &s.Cont)
	return V(bind)
}

// Store emits store arg[index] := value.
func (b *Builder) Store(arg Atom, index int, value Atom) {
	s := &Store{Arg: arg, Index: index, Value: value}
	b.emit(s, &s.Cont)
}

// Offset emits let bind = offset arg[index].
func (b *Builder) Offset(bind string, arg Atom, index int) Atom {
	s := &Offset{Bind: bind, Arg: arg, Index: index}
	b.emit(s, &s.Cont)
	return V(bind)
}

// LetRec emits a local function group.
func (b *Builder) LetRec(decls []*Decl) {
	s := &LetRec{Decls: decls}
	b.emit(s, &s.Cont)
}

// Ifte emits let bind = if(cond) then ... else ... ;
func (b *Builder) Ifte(bind string, cond Atom, then, els Step) Atom {
	s := &Ifte{Bind: bind, Cond: cond, Then: then, Else: els}
	b.emit(s, &s.Cont)
	return V(bind)
}

// Switch emits let bind = switch(arg) { ... }. dflt may be nil.
func (b *Builder) Switch(bind string, arg Atom, cases []*Case, dflt Step) Atom {
	s := &Switch{Bind: bind, Arg: arg, Cases: cases, Default: dflt}
	b.emit(s, &s.Cont)
	return V(bind)
}
