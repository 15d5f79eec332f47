package parser

import (
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/lexer"
	"github.com/funvibe/shapeshift/internal/token"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

func newLexer(src string, at token.Token) *lexer.Lexer {
	return lexer.NewAt(src, at.Line, at.Column)
}

func result[T any](v T, p *Parser) (T, error) {
	if errs := p.Errors(); len(errs) > 0 {
		var zero T
		return zero, diagnostics.Aggregate("", errs)
	}
	return v, nil
}

// ParseType parses a declared (placeholder-free) type such as a variant
// field type.
func ParseType(src string) (typesystem.Type, error) {
	return ParseTypeAt(src, token.Token{})
}

// ParseTypeAt is ParseType with positions relative to at.
func ParseTypeAt(src string, at token.Token) (typesystem.Type, error) {
	p := New(newLexer(src, at))
	t := p.parseType()
	if t != nil {
		p.expectEOF()
	}
	return result(t, p)
}

// ParsePredicate parses a declared where-clause predicate (T: Clone + 'a).
func ParsePredicate(src string, at token.Token) (*ast.Predicate, error) {
	p := New(newLexer(src, at))
	pred := p.parsePredicate()
	if pred != nil {
		p.expectEOF()
	}
	return result(pred, p)
}

// ParseGenericParam parses T, T: Bound, Rhs = Self, 'a.
func ParseGenericParam(src string, at token.Token) (*ast.GenericParam, error) {
	p := New(newLexer(src, at))
	g := p.parseGenericParam()
	if g != nil {
		p.expectEOF()
	}
	return result(g, p)
}

// ParseAssocType parses an associated type declaration: Item, Target: ?Sized,
// Output = Self, optionally prefixed with `type`.
func ParseAssocType(src string, at token.Token) (*ast.AssocTypeDecl, error) {
	p := New(newLexer(src, at))
	a := p.parseAssocType()
	if a != nil {
		p.expectEOF()
	}
	return result(a, p)
}

// ParseMethodSig parses fn name<G>(receiver, params) -> Ret.
func ParseMethodSig(src string, at token.Token) (*ast.MethodSig, error) {
	p := New(newLexer(src, at))
	m := p.parseMethodSig()
	if m != nil {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		p.expectEOF()
	}
	return result(m, p)
}

func (p *Parser) parseGenericParam() *ast.GenericParam {
	g := &ast.GenericParam{Token: p.curToken}
	switch {
	case p.curTokenIs(token.LIFETIME):
		g.Name = p.curToken.Lexeme
		g.Lifetime = true
		p.nextToken()
	case p.curTokenIs(token.IDENT):
		g.Name = p.curToken.Lexeme
		p.nextToken()
	default:
		p.errorf(diagnostics.ErrP005, p.curToken, "expected generic parameter, found %s", p.curToken.Describe())
		return nil
	}
	if p.curTokenIs(token.COLON) {
		p.nextToken()
		bounds, ok := p.parseBounds()
		if !ok {
			return nil
		}
		g.Bounds = bounds
	}
	if p.curTokenIs(token.ASSIGN) {
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil
		}
		g.Default = t
	}
	return g
}

func (p *Parser) parseGenericParams() ([]*ast.GenericParam, bool) {
	p.nextToken() // consume <
	var params []*ast.GenericParam
	for !p.curTokenIs(token.GT) {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed generic parameter list")
			return nil, false
		}
		g := p.parseGenericParam()
		if g == nil {
			return nil, false
		}
		params = append(params, g)
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(token.GT) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected ',' or '>', found %s", p.curToken.Describe())
			return nil, false
		}
	}
	p.nextToken() // consume >
	return params, true
}

func (p *Parser) parseAssocType() *ast.AssocTypeDecl {
	if p.curTokenIs(token.IDENT) && p.curToken.Lexeme == "type" && p.peekTokenIs(token.IDENT) {
		p.nextToken()
	}
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diagnostics.ErrP005, p.curToken, "expected associated type name, found %s", p.curToken.Describe())
		return nil
	}
	a := &ast.AssocTypeDecl{Token: p.curToken, Name: p.curToken.Lexeme}
	p.nextToken()
	if p.curTokenIs(token.COLON) {
		p.nextToken()
		bounds, ok := p.parseBounds()
		if !ok {
			return nil
		}
		a.Bounds = bounds
	}
	if p.curTokenIs(token.ASSIGN) {
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil
		}
		a.Default = t
	}
	if p.curTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return a
}

func (p *Parser) parseMethodSig() *ast.MethodSig {
	if !p.expect(token.FN) {
		return nil
	}
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diagnostics.ErrP005, p.curToken, "expected method name, found %s", p.curToken.Describe())
		return nil
	}
	m := &ast.MethodSig{Token: p.curToken, Name: p.curToken.Lexeme}
	p.nextToken()

	if p.curTokenIs(token.LT) {
		generics, ok := p.parseGenericParams()
		if !ok {
			return nil
		}
		m.Generics = generics
	}

	if !p.expect(token.LPAREN) {
		return nil
	}
	m.Receiver = p.parseReceiver()
	if m.Receiver != ast.ReceiverNone && p.curTokenIs(token.COMMA) {
		p.nextToken()
	}

	for !p.curTokenIs(token.RPAREN) {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed parameter list of `%s`", m.Name)
			return nil
		}
		param := p.parseParam()
		if param == nil {
			return nil
		}
		m.Params = append(m.Params, param)
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(token.RPAREN) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected ',' or ')', found %s", p.curToken.Describe())
			return nil
		}
	}
	p.nextToken() // consume )

	if p.curTokenIs(token.ARROW) {
		p.nextToken()
		ret := p.parseType()
		if ret == nil {
			return nil
		}
		if !typesystem.IsUnit(ret) {
			m.Return = ret
		}
	}
	return m
}

// parseReceiver consumes self, mut self, &self, &mut self, &'a self.
// A parameter list never starts with `&` otherwise.
func (p *Parser) parseReceiver() ast.Receiver {
	switch {
	case p.curTokenIs(token.SELF):
		p.nextToken()
		return ast.ReceiverValue
	case p.curTokenIs(token.MUT) && p.peekTokenIs(token.SELF):
		p.nextToken()
		p.nextToken()
		return ast.ReceiverMutValue
	case p.curTokenIs(token.AMP):
		p.nextToken()
		if p.curTokenIs(token.LIFETIME) {
			p.nextToken()
		}
		mutable := false
		if p.curTokenIs(token.MUT) {
			mutable = true
			p.nextToken()
		}
		if !p.curTokenIs(token.SELF) {
			p.errorf(diagnostics.ErrP005, p.curToken, "expected 'self' after '&', found %s", p.curToken.Describe())
			return ast.ReceiverNone
		}
		p.nextToken()
		if mutable {
			return ast.ReceiverRefMut
		}
		return ast.ReceiverRef
	}
	return ast.ReceiverNone
}

func (p *Parser) parseParam() *ast.Param {
	if p.curTokenIs(token.MUT) {
		p.nextToken()
	}
	var name string
	switch {
	case p.curTokenIs(token.IDENT), p.curTokenIs(token.UNDERSCORE):
		name = p.curToken.Lexeme
	default:
		p.errorf(diagnostics.ErrP005, p.curToken, "expected parameter name, found %s", p.curToken.Describe())
		return nil
	}
	p.nextToken()
	if !p.expect(token.COLON) {
		return nil
	}
	t := p.parseType()
	if t == nil {
		return nil
	}
	return &ast.Param{Name: name, Type: t}
}
