package parser

import (
	"strconv"
	"unicode/utf8"

	"github.com/lhaig/anfc/internal/ast"
	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/lexer"
)

// New creates a new parser
func New(source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		diags:  diagnostic.New(),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for !p.check(lexer.EOF) {
		if !isDeclStart(p.current().Type) {
			p.errorAt(p.current(), "unexpected %s at top level", describe(p.current()))
			startPos := p.pos
			p.synchronize()
			if p.pos == startPos {
				p.advance() // ensure forward progress to avoid infinite loop
			}
			continue
		}
		if d := p.parseDecl(); d != nil {
			prog.Decls = append(prog.Decls, d)
		}
	}
	return prog
}

// ParseExpr parses a single expression followed by end of input.
func (p *Parser) ParseExpr() ast.Expr {
	e := p.parseExpr()
	if !p.check(lexer.EOF) {
		p.errorAt(p.current(), "unexpected %s after expression", describe(p.current()))
	}
	return e
}

func isDeclStart(tt lexer.TokenType) bool {
	switch tt {
	case lexer.FUN, lexer.DATA, lexer.TYPE, lexer.EXTERN:
		return true
	}
	return false
}

// --- Declarations ---

func (p *Parser) parseDecl() ast.Decl {
	switch p.current().Type {
	case lexer.FUN:
		return p.parseFuncDecl()
	case lexer.DATA:
		return p.parseDataDecl()
	case lexer.TYPE:
		return p.parseTypeDecl()
	case lexer.EXTERN:
		return p.parseExternDecl()
	}
	p.errorAt(p.current(), "expected declaration, got %s", describe(p.current()))
	p.advance()
	return nil
}

// parseFuncDecl parses: fun <name>(<params>) [: <type>] = <expr>
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	tok := p.expect(lexer.FUN)
	name := p.expect(lexer.IDENT)

	fn := &ast.FuncDecl{
		Name:   name.Literal,
		Line:   tok.Line,
		Column: tok.Column,
	}

	p.expect(lexer.LPAREN)
	if !p.check(lexer.RPAREN) {
		fn.Params = append(fn.Params, p.parseParam())
		for p.match(lexer.COMMA) {
			fn.Params = append(fn.Params, p.parseParam())
		}
	}
	p.expect(lexer.RPAREN)

	if p.match(lexer.COLON) {
		fn.Result = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	fn.Body = p.parseExpr()
	return fn
}

func (p *Parser) parseParam() *ast.Param {
	name := p.expect(lexer.IDENT)
	param := &ast.Param{Name: name.Literal, Line: name.Line, Column: name.Column}
	if p.match(lexer.COLON) {
		param.Type = p.parseType()
	}
	return param
}

// parseDataDecl parses: data <Name>[<params>] = | <Variant> ... end
func (p *Parser) parseDataDecl() *ast.DataDecl {
	tok := p.expect(lexer.DATA)
	name := p.expectTypeName()

	data := &ast.DataDecl{
		Name:       name.Literal,
		TypeParams: p.parseTypeParams(),
		Line:       tok.Line,
		Column:     tok.Column,
	}
	p.expect(lexer.ASSIGN)

	for p.check(lexer.BAR) {
		p.advance()
		cons := p.expect(lexer.CONS)
		v := &ast.Variant{Cons: cons.Literal, Line: cons.Line, Column: cons.Column}
		if p.match(lexer.LBRACKET) {
			v.Fields = append(v.Fields, p.parseType())
			for p.match(lexer.COMMA) {
				v.Fields = append(v.Fields, p.parseType())
			}
			p.expect(lexer.RBRACKET)
		}
		data.Variants = append(data.Variants, v)
	}
	if len(data.Variants) == 0 {
		p.errorAt(p.current(), "data type '%s' must declare at least one variant", data.Name)
	}
	p.expect(lexer.END)
	return data
}

// parseTypeDecl parses: type <Name>[<params>] = <type>;
func (p *Parser) parseTypeDecl() *ast.TypeDecl {
	tok := p.expect(lexer.TYPE)
	name := p.expectTypeName()
	decl := &ast.TypeDecl{
		Name:       name.Literal,
		TypeParams: p.parseTypeParams(),
		Line:       tok.Line,
		Column:     tok.Column,
	}
	p.expect(lexer.ASSIGN)
	decl.Type = p.parseType()
	p.expect(lexer.SEMICOLON)
	return decl
}

// parseExternDecl parses: extern <name>[<params>]: <type>;
func (p *Parser) parseExternDecl() *ast.ExternDecl {
	tok := p.expect(lexer.EXTERN)
	name := p.expect(lexer.IDENT)
	decl := &ast.ExternDecl{
		Name:       name.Literal,
		TypeParams: p.parseTypeParams(),
		Line:       tok.Line,
		Column:     tok.Column,
	}
	p.expect(lexer.COLON)
	decl.Type = p.parseType()
	p.expect(lexer.SEMICOLON)
	return decl
}

// expectTypeName accepts either capitalisation for type names.
func (p *Parser) expectTypeName() lexer.Token {
	if p.check(lexer.CONS) {
		return p.advance()
	}
	return p.expect(lexer.IDENT)
}

func (p *Parser) parseTypeParams() []string {
	if !p.match(lexer.LBRACKET) {
		return nil
	}
	var params []string
	params = append(params, p.expect(lexer.IDENT).Literal)
	for p.match(lexer.COMMA) {
		params = append(params, p.expect(lexer.IDENT).Literal)
	}
	p.expect(lexer.RBRACKET)
	return params
}

// --- Types ---

func (p *Parser) parseType() ast.Type {
	tok := p.current()
	switch tok.Type {
	case lexer.INT_TYPE:
		p.advance()
		return &ast.LitType{Kind: ast.LitInt, Line: tok.Line, Column: tok.Column}
	case lexer.REAL_TYPE:
		p.advance()
		return &ast.LitType{Kind: ast.LitReal, Line: tok.Line, Column: tok.Column}
	case lexer.BOOL_TYPE:
		p.advance()
		return &ast.LitType{Kind: ast.LitBool, Line: tok.Line, Column: tok.Column}
	case lexer.CHAR_TYPE:
		p.advance()
		return &ast.LitType{Kind: ast.LitChar, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		p.expect(lexer.RPAREN)
		return &ast.LitType{Kind: ast.LitUnit, Line: tok.Line, Column: tok.Column}
	case lexer.IDENT, lexer.CONS:
		p.advance()
		t := &ast.NameType{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
		if p.match(lexer.LBRACKET) {
			t.Args = append(t.Args, p.parseType())
			for p.match(lexer.COMMA) {
				t.Args = append(t.Args, p.parseType())
			}
			p.expect(lexer.RBRACKET)
		}
		return t
	case lexer.FN:
		p.advance()
		t := &ast.FunType{Line: tok.Line, Column: tok.Column}
		p.expect(lexer.LPAREN)
		if !p.check(lexer.RPAREN) {
			t.Params = append(t.Params, p.parseType())
			for p.match(lexer.COMMA) {
				t.Params = append(t.Params, p.parseType())
			}
		}
		p.expect(lexer.RPAREN)
		p.expect(lexer.RARROW)
		t.Result = p.parseType()
		return t
	}
	p.errorAt(tok, "expected type, got %s", describe(tok))
	p.advance()
	return &ast.LitType{Kind: ast.LitUnit, Line: tok.Line, Column: tok.Column}
}

// --- Expressions ---

func (p *Parser) parseExpr() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.LET:
		return p.parseLetExpr()
	case lexer.CASE:
		return p.parseCaseExpr()
	case lexer.LETREC:
		return p.parseBlockExpr()
	case lexer.FN:
		return p.parseFunExpr()
	}
	return p.parsePostfix()
}

// parseLetExpr parses: let <name> = <expr>; <expr>
func (p *Parser) parseLetExpr() *ast.LetExpr {
	tok := p.expect(lexer.LET)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.ASSIGN)
	value := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	cont := p.parseExpr()
	return &ast.LetExpr{
		Name:   name.Literal,
		Value:  value,
		Cont:   cont,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseCaseExpr parses: case <expr> of | <pattern> => <expr> ... end
func (p *Parser) parseCaseExpr() *ast.CaseExpr {
	tok := p.expect(lexer.CASE)
	c := &ast.CaseExpr{
		Scrutinee: p.parseExpr(),
		Line:      tok.Line,
		Column:    tok.Column,
	}
	p.expect(lexer.OF)
	for p.check(lexer.BAR) {
		bar := p.advance()
		pat := p.parsePattern()
		p.expect(lexer.ARROW)
		body := p.parseExpr()
		c.Rules = append(c.Rules, &ast.Rule{Pattern: pat, Body: body, Line: bar.Line, Column: bar.Column})
	}
	if len(c.Rules) == 0 {
		p.errorAt(p.current(), "case expression must have at least one rule")
	}
	p.expect(lexer.END)
	return c
}

// parseBlockExpr parses: letrec <decls> in <expr> end
func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	tok := p.expect(lexer.LETREC)
	blk := &ast.BlockExpr{Line: tok.Line, Column: tok.Column}
	for isDeclStart(p.current().Type) {
		if d := p.parseDecl(); d != nil {
			blk.Decls = append(blk.Decls, d)
		}
	}
	p.expect(lexer.IN)
	blk.Cont = p.parseExpr()
	p.expect(lexer.END)
	return blk
}

// parseFunExpr parses: fn (<names>) { <expr> }
func (p *Parser) parseFunExpr() *ast.FunExpr {
	tok := p.expect(lexer.FN)
	fn := &ast.FunExpr{Line: tok.Line, Column: tok.Column}
	p.expect(lexer.LPAREN)
	if !p.check(lexer.RPAREN) {
		fn.Params = append(fn.Params, p.expect(lexer.IDENT).Literal)
		for p.match(lexer.COMMA) {
			fn.Params = append(fn.Params, p.expect(lexer.IDENT).Literal)
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	fn.Body = p.parseExpr()
	p.expect(lexer.RBRACE)
	return fn
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for p.check(lexer.LPAREN) {
		tok := p.current()
		args := p.parseArgList()
		line, col := expr.Pos()
		if line == 0 {
			line, col = tok.Line, tok.Column
		}
		expr = &ast.AppExpr{Func: expr, Args: args, Line: line, Column: col}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.INT_LIT, lexer.REAL_LIT, lexer.CHAR_LIT, lexer.TRUE, lexer.FALSE, lexer.MINUS:
		lit, ok := p.parseLit()
		if !ok {
			return &ast.LitExpr{Value: ast.UnitLit(), Line: tok.Line, Column: tok.Column}
		}
		return &ast.LitExpr{Value: lit, Line: tok.Line, Column: tok.Column}

	case lexer.LPAREN:
		p.advance()
		if p.match(lexer.RPAREN) {
			return &ast.LitExpr{Value: ast.UnitLit(), Line: tok.Line, Column: tok.Column}
		}
		e := p.parseExpr()
		p.expect(lexer.RPAREN)
		return e

	case lexer.IDENT:
		p.advance()
		return &ast.VarExpr{Name: tok.Literal, Line: tok.Line, Column: tok.Column}

	case lexer.CONS:
		p.advance()
		c := &ast.ConsExpr{Cons: tok.Literal, Line: tok.Line, Column: tok.Column}
		if p.check(lexer.LPAREN) {
			c.Args = p.parseArgList()
		}
		return c

	case lexer.AT:
		p.advance()
		name := p.expect(lexer.IDENT)
		args := p.parseArgList()
		prim, ok := ast.LookupBuiltin(name.Literal)
		if !ok {
			p.errorAt(name, "unknown builtin '@%s'", name.Literal)
		} else if len(args) != prim.Arity() {
			p.errorAt(name, "builtin '@%s' expects %d arguments, got %d", name.Literal, prim.Arity(), len(args))
		}
		return &ast.PrimExpr{Prim: prim, Args: args, Line: tok.Line, Column: tok.Column}

	case lexer.HASH:
		p.advance()
		name := p.expect(lexer.IDENT)
		args := p.parseArgList()
		return &ast.ExtCallExpr{Func: name.Literal, Args: args, Line: tok.Line, Column: tok.Column}
	}

	p.errorAt(tok, "expected expression, got %s", describe(tok))
	if !p.check(lexer.EOF) {
		p.advance()
	}
	return &ast.LitExpr{Value: ast.UnitLit(), Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	if !p.check(lexer.RPAREN) {
		args = append(args, p.parseExpr())
		for p.match(lexer.COMMA) {
			args = append(args, p.parseExpr())
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

// parseLit parses a literal other than unit. A leading minus is accepted
// before numeric literals.
func (p *Parser) parseLit() (ast.Lit, bool) {
	tok := p.advance()
	switch tok.Type {
	case lexer.TRUE:
		return ast.BoolLit(true), true
	case lexer.FALSE:
		return ast.BoolLit(false), true
	case lexer.CHAR_LIT:
		r, _ := utf8.DecodeRuneInString(tok.Literal)
		return ast.CharLit(r), true
	case lexer.MINUS:
		num := p.current()
		if num.Type != lexer.INT_LIT && num.Type != lexer.REAL_LIT {
			p.errorAt(num, "expected number after '-', got %s", describe(num))
			return ast.Lit{}, false
		}
		lit, ok := p.parseLit()
		if lit.Kind == ast.LitInt {
			lit.Int = -lit.Int
		} else {
			lit.Real = -lit.Real
		}
		return lit, ok
	case lexer.INT_LIT:
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorAt(tok, "integer literal %s out of range", tok.Literal)
			return ast.Lit{}, false
		}
		return ast.IntLit(v), true
	case lexer.REAL_LIT:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorAt(tok, "malformed real literal %s", tok.Literal)
			return ast.Lit{}, false
		}
		return ast.RealLit(v), true
	}
	p.errorAt(tok, "expected literal, got %s", describe(tok))
	return ast.Lit{}, false
}

// --- Patterns ---

func (p *Parser) parsePattern() ast.Pattern {
	tok := p.current()
	switch tok.Type {
	case lexer.WILDCARD:
		p.advance()
		return &ast.WildPattern{Line: tok.Line, Column: tok.Column}
	case lexer.IDENT:
		p.advance()
		return &ast.VarPattern{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.CONS:
		p.advance()
		pat := &ast.ConsPattern{Cons: tok.Literal, Line: tok.Line, Column: tok.Column}
		if p.match(lexer.LPAREN) {
			pat.Args = append(pat.Args, p.parsePattern())
			for p.match(lexer.COMMA) {
				pat.Args = append(pat.Args, p.parsePattern())
			}
			p.expect(lexer.RPAREN)
		}
		return pat
	case lexer.LPAREN:
		p.advance()
		p.expect(lexer.RPAREN)
		return &ast.LitPattern{Value: ast.UnitLit(), Line: tok.Line, Column: tok.Column}
	case lexer.INT_LIT, lexer.REAL_LIT, lexer.CHAR_LIT, lexer.TRUE, lexer.FALSE, lexer.MINUS:
		lit, _ := p.parseLit()
		return &ast.LitPattern{Value: lit, Line: tok.Line, Column: tok.Column}
	}
	p.errorAt(tok, "expected pattern, got %s", describe(tok))
	if !p.check(lexer.EOF) {
		p.advance()
	}
	return &ast.WildPattern{Line: tok.Line, Column: tok.Column}
}
