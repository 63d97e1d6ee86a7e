package backend

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/lhaig/anfc/internal/anf"
)

func sampleDecls() []*anf.Decl {
	b := anf.NewBuilder()
	tag := b.Load("tag.1", anf.V("l"), -1)
	arm := anf.NewBuilder()
	fld := arm.Load("fld.2", anf.V("l"), 0)
	res := b.Switch("m.3", tag, []*anf.Case{
		{Tag: 0, Body: &anf.Retn{Arg: anf.Int{Value: 0}}},
		{Tag: 1, Body: arm.Return(fld)},
	}, nil)
	head := &anf.Decl{Name: "head", Params: []string{"l"}, Body: b.Return(res)}

	u := anf.NewBuilder()
	n := u.BinOp("n", anf.IAdd, anf.Int{Value: 1}, anf.Int{Value: 2})
	c := u.ExtCall("c", "print", []anf.Atom{n})
	unit := &anf.Decl{Name: "main", Body: u.Return(c)}
	return []*anf.Decl{head, unit}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"text", "json"} {
		b, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if b.Name() != name {
			t.Errorf("expected backend %q, got %q", name, b.Name())
		}
	}
	if _, err := Lookup("rust"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
	if got := strings.Join(Names(), ","); got != "json,text" {
		t.Errorf("expected json,text, got %s", got)
	}
}

func TestTextBackend(t *testing.T) {
	decls := sampleDecls()
	out, err := (&TextBackend{}).Generate(decls)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != anf.PrintAll(decls) {
		t.Errorf("text backend must match the printer:\n%s", out)
	}
	if !strings.Contains(string(out), "let c = print(n);") {
		t.Errorf("missing foreign call in:\n%s", out)
	}
}

func TestJSONBackend(t *testing.T) {
	out, err := (&JSONBackend{}).Generate(sampleDecls())
	if err != nil {
		t.Fatal(err)
	}

	var decoded []struct {
		Name   string   `json:"name"`
		Params []string `json:"params"`
		Body   []struct {
			Op    string `json:"op"`
			Bind  string `json:"bind"`
			Index *int   `json:"index"`
			Cases []struct {
				Tag  int `json:"tag"`
				Body []struct {
					Op string `json:"op"`
				} `json:"body"`
			} `json:"cases"`
			Foreign string `json:"foreign"`
		} `json:"body"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decoded))
	}

	head := decoded[0]
	if head.Name != "head" || len(head.Params) != 1 {
		t.Errorf("unexpected head declaration %+v", head)
	}
	var ops []string
	for _, s := range head.Body {
		ops = append(ops, s.Op)
	}
	if strings.Join(ops, ",") != "load,switch,return" {
		t.Errorf("expected load,switch,return, got %v", ops)
	}
	if idx := head.Body[0].Index; idx == nil || *idx != -1 {
		t.Errorf("expected tag load at -1, got %v", idx)
	}
	sw := head.Body[1]
	if len(sw.Cases) != 2 || sw.Cases[1].Tag != 1 || sw.Cases[1].Body[0].Op != "load" {
		t.Errorf("unexpected switch %+v", sw)
	}

	main := decoded[1]
	if main.Params == nil {
		t.Error("params must encode as an empty array")
	}
	if main.Body[1].Op != "extcall" || main.Body[1].Foreign != "print" {
		t.Errorf("expected extcall to print, got %+v", main.Body[1])
	}
}
