// Package shapetest builds declarations for tests without going through a
// manifest.
package shapetest

import (
	"strings"
	"testing"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/parser"
	"github.com/funvibe/shapeshift/internal/token"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// Union declares name on line 1 with each variant on its own following line.
func Union(t testing.TB, name, pattern string, variants ...*ast.Variant) *ast.UnionDecl {
	t.Helper()
	u := &ast.UnionDecl{
		Token:        token.Token{Type: token.IDENT, Lexeme: name, Line: 1, Column: 1},
		Name:         name,
		Pattern:      pattern,
		PatternToken: token.Token{Line: 1, Column: 1},
		Variants:     variants,
	}
	for i, v := range variants {
		v.Token.Line = i + 2
		v.Token.Column = 3
	}
	return u
}

// Generic adds generic parameters (T, T: Clone, 'a) to u.
func Generic(t testing.TB, u *ast.UnionDecl, params ...string) *ast.UnionDecl {
	t.Helper()
	for _, src := range params {
		g, err := parser.ParseGenericParam(src, token.Token{})
		if err != nil {
			t.Fatalf("generic %q: %v", src, err)
		}
		u.Generics = append(u.Generics, g)
	}
	return u
}

// Tuple is a variant with unnamed fields.
func Tuple(t testing.TB, name string, types ...string) *ast.Variant {
	t.Helper()
	v := variant(name, ast.GroupUnnamed)
	for _, src := range types {
		v.Fields.Fields = append(v.Fields.Fields, &ast.Field{Type: Type(t, src)})
	}
	return v
}

// Struct is a variant with named fields, each given as "name: Type".
func Struct(t testing.TB, name string, fields ...string) *ast.Variant {
	t.Helper()
	v := variant(name, ast.GroupNamed)
	for _, src := range fields {
		key, typ, ok := strings.Cut(src, ": ")
		if !ok {
			t.Fatalf("field %q: expected `name: Type`", src)
		}
		v.Fields.Fields = append(v.Fields.Fields, &ast.Field{Name: key, Type: Type(t, typ)})
	}
	return v
}

// Unit is a variant without fields.
func Unit(name string) *ast.Variant {
	return variant(name, ast.GroupUnit)
}

func variant(name string, kind ast.GroupKind) *ast.Variant {
	return &ast.Variant{
		Token:  token.Token{Type: token.IDENT, Lexeme: name},
		Name:   name,
		Fields: &ast.FieldGroup{Kind: kind},
	}
}

// Type parses a declared type.
func Type(t testing.TB, src string) typesystem.Type {
	t.Helper()
	typ, err := parser.ParseType(src)
	if err != nil {
		t.Fatalf("type %q: %v", src, err)
	}
	return typ
}

// Capability declares a capability from its method signatures.
func Capability(t testing.TB, name string, methods ...string) *ast.CapabilityDecl {
	t.Helper()
	c := &ast.CapabilityDecl{Token: token.Token{Type: token.IDENT, Lexeme: name, Line: 1, Column: 1}, Name: name}
	for _, src := range methods {
		sig, err := parser.ParseMethodSig(src, token.Token{})
		if err != nil {
			t.Fatalf("method %q: %v", src, err)
		}
		c.Methods = append(c.Methods, sig)
	}
	return c
}

// WithGenerics adds generic parameters to c.
func WithGenerics(t testing.TB, c *ast.CapabilityDecl, params ...string) *ast.CapabilityDecl {
	t.Helper()
	for _, src := range params {
		g, err := parser.ParseGenericParam(src, token.Token{})
		if err != nil {
			t.Fatalf("generic %q: %v", src, err)
		}
		c.Generics = append(c.Generics, g)
	}
	return c
}

// WithAssoc adds associated types to c.
func WithAssoc(t testing.TB, c *ast.CapabilityDecl, types ...string) *ast.CapabilityDecl {
	t.Helper()
	for _, src := range types {
		a, err := parser.ParseAssocType(src, token.Token{})
		if err != nil {
			t.Fatalf("associated type %q: %v", src, err)
		}
		c.Assoc = append(c.Assoc, a)
	}
	return c
}

// Codes lists the codes of errs in order.
func Codes(errs []*diagnostics.DiagnosticError) []diagnostics.ErrorCode {
	out := make([]diagnostics.ErrorCode, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}
