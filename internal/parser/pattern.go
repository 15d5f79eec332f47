package parser

import (
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/token"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// ParsePattern parses pattern text. at locates the text in its enclosing
// document; a zero token means the text starts at 1:1.
func ParsePattern(src string, at token.Token) (*ast.ShapePattern, []*diagnostics.DiagnosticError) {
	p := New(newLexer(src, at))
	p.placeholders = true
	pat := p.parseShapePattern(src)
	return pat, p.Errors()
}

func (p *Parser) parseShapePattern(src string) *ast.ShapePattern {
	pat := &ast.ShapePattern{Token: p.curToken, Source: src}

	if p.curTokenIs(token.EOF) || p.curTokenIs(token.WHERE) {
		p.errorf(diagnostics.ErrP003, p.curToken, "pattern has no alternatives")
		if p.curTokenIs(token.WHERE) {
			pat.Where = p.parseWhereClause()
		}
		return pat
	}

	for {
		alt := p.parseAlternative()
		if alt != nil {
			pat.Alternatives = append(pat.Alternatives, alt)
		} else {
			p.synchronize()
		}
		if !p.curTokenIs(token.PIPE) {
			break
		}
		p.nextToken()
	}

	if p.curTokenIs(token.WHERE) {
		pat.Where = p.parseWhereClause()
	}
	p.expectEOF()
	return pat
}

func (p *Parser) parseAlternative() *ast.Alternative {
	alt := &ast.Alternative{Token: p.curToken}
	if p.curTokenIs(token.DOLLAR) {
		alt.Marker = true
		p.nextToken()
	}

	var group *ast.PatternGroup
	switch p.curToken.Type {
	case token.LPAREN:
		group = p.parseUnnamedGroup()
	case token.LBRACE:
		group = p.parseNamedGroup()
	case token.PIPE, token.WHERE, token.EOF:
		group = &ast.PatternGroup{Token: p.curToken, Kind: ast.GroupUnit}
	default:
		p.errorf(diagnostics.ErrP001, p.curToken, "expected '(', '{' or '|', found %s", p.curToken.Describe())
		return nil
	}
	if group == nil {
		return nil
	}
	alt.Group = group
	return alt
}

// (T, i32, ..)
func (p *Parser) parseUnnamedGroup() *ast.PatternGroup {
	group := &ast.PatternGroup{Token: p.curToken, Kind: ast.GroupUnnamed}
	open := p.curToken
	p.nextToken() // consume (

	for !p.curTokenIs(token.RPAREN) {
		if p.isGroupTerminator() {
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed '(' opened at %d:%d", open.Line, open.Column)
			return nil
		}
		if group.Variadic != nil {
			p.errorf(diagnostics.ErrP004, group.Variadic.Token, "variadic marker must be the last element of a group")
			group.Variadic = nil
		}
		if p.curTokenIs(token.DOTDOT) {
			v := p.parseVariadic()
			if v == nil {
				return nil
			}
			group.Variadic = v
		} else {
			slot := p.parseSlot()
			if slot == nil {
				return nil
			}
			group.Slots = append(group.Slots, slot)
		}
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if p.isGroupTerminator() {
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed '(' opened at %d:%d", open.Line, open.Column)
			return nil
		}
		if !p.curTokenIs(token.RPAREN) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected ',' or ')', found %s", p.curToken.Describe())
			return nil
		}
	}
	p.nextToken() // consume )
	return group
}

// { name: T, id: i32, .. }
func (p *Parser) parseNamedGroup() *ast.PatternGroup {
	group := &ast.PatternGroup{Token: p.curToken, Kind: ast.GroupNamed}
	open := p.curToken
	p.nextToken() // consume {
	seen := make(map[string]bool)

	for !p.curTokenIs(token.RBRACE) {
		if p.isGroupTerminator() {
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed '{' opened at %d:%d", open.Line, open.Column)
			return nil
		}
		if group.Variadic != nil {
			p.errorf(diagnostics.ErrP004, group.Variadic.Token, "variadic marker must be the last element of a group")
			group.Variadic = nil
		}
		if p.curTokenIs(token.DOTDOT) {
			v := p.parseVariadic()
			if v == nil {
				return nil
			}
			group.Variadic = v
		} else {
			if !p.curTokenIs(token.IDENT) {
				p.errorf(diagnostics.ErrP005, p.curToken, "expected field name, found %s", p.curToken.Describe())
				return nil
			}
			keyTok := p.curToken
			p.nextToken()
			if !p.expect(token.COLON) {
				return nil
			}
			slot := p.parseSlot()
			if slot == nil {
				return nil
			}
			slot.Key = keyTok.Lexeme
			slot.Token = keyTok
			if seen[slot.Key] {
				p.errorf(diagnostics.ErrP006, keyTok, "field `%s` appears more than once", slot.Key)
			}
			seen[slot.Key] = true
			group.Slots = append(group.Slots, slot)
		}
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if p.isGroupTerminator() {
			p.errorf(diagnostics.ErrP001, p.curToken, "unclosed '{' opened at %d:%d", open.Line, open.Column)
			return nil
		}
		if !p.curTokenIs(token.RBRACE) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected ',' or '}', found %s", p.curToken.Describe())
			return nil
		}
	}
	p.nextToken() // consume }
	return group
}

// isGroupTerminator reports tokens that can never appear inside a group, so
// that a missing closing delimiter is reported where it is noticed.
func (p *Parser) isGroupTerminator() bool {
	switch p.curToken.Type {
	case token.EOF, token.PIPE, token.WHERE:
		return true
	}
	return false
}

// .., ..N
func (p *Parser) parseVariadic() *ast.Variadic {
	v := &ast.Variadic{Token: p.curToken}
	p.nextToken() // consume ..
	switch p.curToken.Type {
	case token.COMMA, token.RPAREN, token.RBRACE:
		return v
	case token.ASSIGN:
		// ..=N is read as ..N
		p.nextToken()
	}
	n, ok := p.parseInt()
	if !ok {
		p.errorf(diagnostics.ErrP002, p.curToken, "range marker must be followed by an integer literal, found %s", p.curToken.Describe())
		return nil
	}
	v.Min = n
	v.IsRange = true
	return v
}

func (p *Parser) parseSlot() *ast.Slot {
	slot := &ast.Slot{Token: p.curToken}
	if p.curTokenIs(token.UNDERSCORE) {
		p.nextToken()
		slot.Type = typesystem.TInfer{}
		slot.Kind = ast.SlotWildcard
		return slot
	}
	t := p.parseType()
	if t == nil {
		return nil
	}
	slot.Type = t
	switch {
	case isVar(t):
		slot.Kind = ast.SlotPlaceholder
	case typesystem.ContainsPlaceholder(t):
		slot.Kind = ast.SlotStructural
	default:
		slot.Kind = ast.SlotConcrete
	}
	return slot
}

func isVar(t typesystem.Type) bool {
	_, ok := t.(typesystem.TVar)
	return ok
}

// where T: Clone + ^Echo, i32: Copy
func (p *Parser) parseWhereClause() *ast.WhereClause {
	wc := &ast.WhereClause{Token: p.curToken}
	p.nextToken() // consume where

	if p.curTokenIs(token.EOF) {
		p.errorf(diagnostics.ErrP005, p.curToken, "expected predicate after 'where'")
		return wc
	}
	for !p.curTokenIs(token.EOF) {
		pred := p.parsePredicate()
		if pred == nil {
			return wc
		}
		wc.Predicates = append(wc.Predicates, pred)
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return wc
}

func (p *Parser) parsePredicate() *ast.Predicate {
	pred := &ast.Predicate{Token: p.curToken}
	if p.curTokenIs(token.LIFETIME) {
		pred.Kind = ast.PredicateLifetime
		pred.Bounded = typesystem.TLifetime{Name: p.curToken.Lexeme}
		p.nextToken()
	} else {
		t := p.parseType()
		if t == nil {
			return nil
		}
		pred.Bounded = t
	}
	if !p.expect(token.COLON) {
		return nil
	}
	bounds, ok := p.parseBounds()
	if !ok {
		return nil
	}
	pred.Bounds = bounds
	return pred
}
