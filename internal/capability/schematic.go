// Package capability holds capability schematics and the registry that
// resolves them by name.
package capability

import (
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/token"
)

// Schematic is the structural description of a capability interface. It is
// immutable once built and shared by every blueprint that references it.
type Schematic struct {
	Name     string
	Generics []*ast.GenericParam
	Assoc    []*ast.AssocTypeDecl
	Methods  []*ast.MethodSig
	Builtin  bool
	Origin   token.Token
}

// FromDecl builds a schematic from a declaration. The declaration's slices
// are copied so later edits to decl do not leak into the registry.
func FromDecl(decl *ast.CapabilityDecl) *Schematic {
	return &Schematic{
		Name:     decl.Name,
		Generics: append([]*ast.GenericParam(nil), decl.Generics...),
		Assoc:    append([]*ast.AssocTypeDecl(nil), decl.Assoc...),
		Methods:  append([]*ast.MethodSig(nil), decl.Methods...),
		Origin:   decl.Token,
	}
}

// RequiredGenerics is the number of generic parameters without a default.
func (s *Schematic) RequiredGenerics() int {
	n := 0
	for _, g := range s.Generics {
		if g.Default == nil && !g.Lifetime {
			n++
		}
	}
	return n
}

// TypeGenerics returns the non-lifetime generic parameters in order.
func (s *Schematic) TypeGenerics() []*ast.GenericParam {
	var out []*ast.GenericParam
	for _, g := range s.Generics {
		if !g.Lifetime {
			out = append(out, g)
		}
	}
	return out
}

// AssocDecl finds an associated type declaration by name.
func (s *Schematic) AssocDecl(name string) *ast.AssocTypeDecl {
	for _, a := range s.Assoc {
		if a.Name == name {
			return a
		}
	}
	return nil
}
