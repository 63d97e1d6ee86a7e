package backend

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/lhaig/anfc/internal/anf"
)

// JSONBackend renders declarations as a JSON document. Each chain becomes
// an array of steps ending in a return.
type JSONBackend struct{}

// Name returns the backend name.
func (b *JSONBackend) Name() string {
	return "json"
}

// Extension returns the file extension for JSON output.
func (b *JSONBackend) Extension() string {
	return ".json"
}

type jsonAtom struct {
	Kind  string      `json:"kind"`
	Value interface{} `json:"value"`
}

type jsonCase struct {
	Tag  int        `json:"tag"`
	Body []jsonStep `json:"body"`
}

type jsonDecl struct {
	Name   string     `json:"name"`
	Params []string   `json:"params"`
	Body   []jsonStep `json:"body"`
}

type jsonStep struct {
	Op      string     `json:"op"`
	Bind    string     `json:"bind,omitempty"`
	Prim    string     `json:"prim,omitempty"`
	Func    *jsonAtom  `json:"func,omitempty"`
	Foreign string     `json:"foreign,omitempty"`
	Args    []jsonAtom `json:"args,omitempty"`
	Arg     *jsonAtom  `json:"arg,omitempty"`
	Value   *jsonAtom  `json:"value,omitempty"`
	Size    *int       `json:"size,omitempty"`
	Index   *int       `json:"index,omitempty"`
	Then    []jsonStep `json:"then,omitempty"`
	Else    []jsonStep `json:"else,omitempty"`
	Cases   []jsonCase `json:"cases,omitempty"`
	Default []jsonStep `json:"default,omitempty"`
	Decls   []jsonDecl `json:"decls,omitempty"`
}

// Generate renders decls as an indented JSON array.
func (b *JSONBackend) Generate(decls []*anf.Decl) ([]byte, error) {
	out := make([]jsonDecl, len(decls))
	for i, d := range decls {
		out[i] = encodeDecl(d)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding declarations")
	}
	return append(data, '\n'), nil
}

func encodeDecl(d *anf.Decl) jsonDecl {
	params := d.Params
	if params == nil {
		params = []string{}
	}
	return jsonDecl{Name: d.Name, Params: params, Body: encodeChain(d.Body)}
}

func encodeAtom(a anf.Atom) jsonAtom {
	switch at := a.(type) {
	case anf.Var:
		return jsonAtom{Kind: "var", Value: at.Name}
	case anf.Int:
		return jsonAtom{Kind: "int", Value: at.Value}
	case anf.Real:
		return jsonAtom{Kind: "real", Value: at.Value}
	case anf.Bool:
		return jsonAtom{Kind: "bool", Value: at.Value}
	case anf.Char:
		return jsonAtom{Kind: "char", Value: string(at.Value)}
	}
	return jsonAtom{Kind: "unit"}
}

func atomRef(a anf.Atom) *jsonAtom {
	j := encodeAtom(a)
	return &j
}

func encodeAtoms(as []anf.Atom) []jsonAtom {
	out := make([]jsonAtom, len(as))
	for i, a := range as {
		out[i] = encodeAtom(a)
	}
	return out
}

func intRef(n int) *int { return &n }

func encodeChain(s anf.Step) []jsonStep {
	var out []jsonStep
	for ; s != nil; s = anf.Next(s) {
		var j jsonStep
		switch st := s.(type) {
		case *anf.LetRec:
			j = jsonStep{Op: "letrec"}
			for _, d := range st.Decls {
				j.Decls = append(j.Decls, encodeDecl(d))
			}
		case *anf.UnOp:
			j = jsonStep{Op: "unop", Bind: st.Bind, Prim: st.Prim.String(), Arg: atomRef(st.Arg)}
		case *anf.BinOp:
			j = jsonStep{Op: "binop", Bind: st.Bind, Prim: st.Prim.String(),
				Args: encodeAtoms([]anf.Atom{st.Arg1, st.Arg2})}
		case *anf.Call:
			j = jsonStep{Op: "call", Bind: st.Bind, Func: atomRef(st.Func), Args: encodeAtoms(st.Args)}
		case *anf.ExtCall:
			j = jsonStep{Op: "extcall", Bind: st.Bind, Foreign: st.Func, Args: encodeAtoms(st.Args)}
		case *anf.Retn:
			j = jsonStep{Op: "return", Arg: atomRef(st.Arg)}
		case *anf.Alloc:
			j = jsonStep{Op: "alloc", Bind: st.Bind, Size: intRef(st.Size)}
		case *anf.Load:
			j = jsonStep{Op: "load", Bind: st.Bind, Arg: atomRef(st.Arg), Index: intRef(st.Index)}
		case *anf.Store:
			j = jsonStep{Op: "store", Arg: atomRef(st.Arg), Index: intRef(st.Index), Value: atomRef(st.Value)}
		case *anf.Offset:
			j = jsonStep{Op: "offset", Bind: st.Bind, Arg: atomRef(st.Arg), Index: intRef(st.Index)}
		case *anf.Ifte:
			j = jsonStep{Op: "if", Bind: st.Bind, Arg: atomRef(st.Cond),
				Then: encodeChain(st.Then), Else: encodeChain(st.Else)}
		case *anf.Switch:
			j = jsonStep{Op: "switch", Bind: st.Bind, Arg: atomRef(st.Arg)}
			for _, c := range st.Cases {
				j.Cases = append(j.Cases, jsonCase{Tag: c.Tag, Body: encodeChain(c.Body)})
			}
			if st.Default != nil {
				j.Default = encodeChain(st.Default)
			}
		}
		out = append(out, j)
	}
	return out
}
