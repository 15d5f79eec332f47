package parser

import (
	"strconv"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/token"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

func (p *Parser) parseType() typesystem.Type {
	switch p.curToken.Type {
	case token.AMP:
		return p.parseReferenceType()
	case token.LPAREN:
		return p.parseTupleType()
	case token.LBRACKET:
		return p.parseSliceType()
	case token.UNDERSCORE:
		p.nextToken()
		return typesystem.TInfer{}
	case token.BANG:
		p.nextToken()
		return typesystem.TCon{Name: "!"}
	case token.DYN, token.IMPL:
		return p.parseObjectType()
	case token.IDENT:
		return p.parsePathType()
	}
	p.errorf(diagnostics.ErrP005, p.curToken, "expected type, found %s", p.curToken.Describe())
	return nil
}

// &T, &mut T, &'a T
func (p *Parser) parseReferenceType() typesystem.Type {
	p.nextToken() // consume &
	ref := typesystem.TRef{}
	if p.curTokenIs(token.LIFETIME) {
		ref.Lifetime = p.curToken.Lexeme
		p.nextToken()
	}
	if p.curTokenIs(token.MUT) {
		ref.Mutable = true
		p.nextToken()
	}
	elem := p.parseType()
	if elem == nil {
		return nil
	}
	ref.Elem = elem
	return ref
}

// (), (T), (T,), (A, B)
func (p *Parser) parseTupleType() typesystem.Type {
	open := p.curToken
	p.nextToken() // consume (
	var elems []typesystem.Type
	trailingComma := false
	for !p.curTokenIs(token.RPAREN) {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed '(' opened at %d:%d", open.Line, open.Column)
			return nil
		}
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
		trailingComma = false
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			trailingComma = true
			continue
		}
		if !p.curTokenIs(token.RPAREN) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected ',' or ')', found %s", p.curToken.Describe())
			return nil
		}
	}
	p.nextToken() // consume )
	if len(elems) == 1 && !trailingComma {
		return elems[0]
	}
	return typesystem.TTuple{Elements: elems}
}

// [T], [T; N]
func (p *Parser) parseSliceType() typesystem.Type {
	p.nextToken() // consume [
	elem := p.parseType()
	if elem == nil {
		return nil
	}
	if p.curTokenIs(token.SEMICOLON) {
		p.nextToken()
		if !p.curTokenIs(token.INT) && !p.curTokenIs(token.IDENT) {
			p.errorf(diagnostics.ErrP005, p.curToken, "expected array length, found %s", p.curToken.Describe())
			return nil
		}
		length := p.curToken.Lexeme
		p.nextToken()
		if !p.expect(token.RBRACKET) {
			return nil
		}
		return typesystem.TArray{Elem: elem, Len: length}
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return typesystem.TSlice{Elem: elem}
}

// dyn A + B + 'a, impl Iterator<Item = u8>
func (p *Parser) parseObjectType() typesystem.Type {
	obj := typesystem.TObject{Keyword: p.curToken.Lexeme}
	p.nextToken()
	for {
		if p.curTokenIs(token.LIFETIME) {
			obj.Bounds = append(obj.Bounds, typesystem.TLifetime{Name: p.curToken.Lexeme})
			p.nextToken()
		} else {
			tr, ok := p.parseTraitRef()
			if !ok {
				return nil
			}
			obj.Bounds = append(obj.Bounds, tr)
		}
		if !p.curTokenIs(token.PLUS) {
			break
		}
		p.nextToken()
	}
	return obj
}

func (p *Parser) parsePathType() typesystem.Type {
	name, ok := p.parsePath()
	if !ok {
		return nil
	}
	if p.curTokenIs(token.LT) {
		args, bindings, ok := p.parseGenericArgs()
		if !ok {
			return nil
		}
		return typesystem.TApp{Constructor: typesystem.TCon{Name: name}, Args: args, Bindings: bindings}
	}
	if p.placeholders && typesystem.IsPlaceholderName(name) {
		return typesystem.TVar{Name: name}
	}
	return typesystem.TCon{Name: name}
}

// parsePath reads IDENT ('::' IDENT)*.
func (p *Parser) parsePath() (string, bool) {
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diagnostics.ErrP005, p.curToken, "expected identifier, found %s", p.curToken.Describe())
		return "", false
	}
	name := p.curToken.Lexeme
	p.nextToken()
	for p.curTokenIs(token.PATHSEP) {
		p.nextToken()
		if !p.curTokenIs(token.IDENT) {
			p.errorf(diagnostics.ErrP005, p.curToken, "expected identifier after '::', found %s", p.curToken.Describe())
			return "", false
		}
		name += "::" + p.curToken.Lexeme
		p.nextToken()
	}
	return name, true
}

// <A, 'a, Item = B>
func (p *Parser) parseGenericArgs() ([]typesystem.Type, []typesystem.AssocBinding, bool) {
	open := p.curToken
	p.nextToken() // consume <
	var args []typesystem.Type
	var bindings []typesystem.AssocBinding
	for !p.curTokenIs(token.GT) {
		switch {
		case p.curTokenIs(token.EOF):
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed '<' opened at %d:%d", open.Line, open.Column)
			return nil, nil, false
		case p.curTokenIs(token.LIFETIME):
			args = append(args, typesystem.TLifetime{Name: p.curToken.Lexeme})
			p.nextToken()
		case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN):
			name := p.curToken.Lexeme
			p.nextToken()
			p.nextToken()
			t := p.parseType()
			if t == nil {
				return nil, nil, false
			}
			bindings = append(bindings, typesystem.AssocBinding{Name: name, Type: t})
		default:
			t := p.parseType()
			if t == nil {
				return nil, nil, false
			}
			args = append(args, t)
		}
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(token.GT) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected ',' or '>', found %s", p.curToken.Describe())
			return nil, nil, false
		}
	}
	p.nextToken() // consume >
	return args, bindings, true
}

// parseTraitRef reads a trait path with optional generic arguments.
func (p *Parser) parseTraitRef() (typesystem.TApp, bool) {
	name, ok := p.parsePath()
	if !ok {
		return typesystem.TApp{}, false
	}
	ref := typesystem.TApp{Constructor: typesystem.TCon{Name: name}}
	if p.curTokenIs(token.LT) {
		args, bindings, ok := p.parseGenericArgs()
		if !ok {
			return typesystem.TApp{}, false
		}
		ref.Args = args
		ref.Bindings = bindings
	}
	return ref, true
}

// parseBounds reads Bound ('+' Bound)*.
func (p *Parser) parseBounds() ([]*ast.Bound, bool) {
	var bounds []*ast.Bound
	for {
		b := p.parseBound()
		if b == nil {
			return nil, false
		}
		bounds = append(bounds, b)
		if !p.curTokenIs(token.PLUS) {
			return bounds, true
		}
		p.nextToken()
	}
}

// ^Trait<..>, ?Sized, Trait, 'a
func (p *Parser) parseBound() *ast.Bound {
	b := &ast.Bound{Token: p.curToken}
	if p.curTokenIs(token.LIFETIME) {
		b.Kind = ast.BoundLifetime
		b.Lifetime = p.curToken.Lexeme
		p.nextToken()
		return b
	}
	if p.curTokenIs(token.CARET) {
		b.Forward = true
		p.nextToken()
	}
	if p.curTokenIs(token.QUESTION) {
		if b.Forward {
			p.errorf(diagnostics.ErrP007, p.curToken, "a relaxed bound cannot be forwarded")
		}
		b.Relaxed = true
		p.nextToken()
	}
	tr, ok := p.parseTraitRef()
	if !ok {
		return nil
	}
	b.Trait = tr
	return b
}

func (p *Parser) parseInt() (int, bool) {
	if !p.curTokenIs(token.INT) {
		return 0, false
	}
	n, ok := p.curToken.Literal.(int)
	if !ok {
		n, _ = strconv.Atoi(p.curToken.Lexeme)
	}
	p.nextToken()
	return n, true
}
