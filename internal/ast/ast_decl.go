package ast

import (
	"strings"

	"github.com/funvibe/shapeshift/internal/token"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// GenericParam is a generic parameter of a union, capability or method.
type GenericParam struct {
	Token    token.Token
	Name     string
	Lifetime bool
	Bounds   []*Bound
	Default  typesystem.Type
}

func (g *GenericParam) String() string {
	var b strings.Builder
	b.WriteString(g.Name)
	if len(g.Bounds) > 0 {
		bounds := make([]string, len(g.Bounds))
		for i, bd := range g.Bounds {
			bounds[i] = bd.String()
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(bounds, " + "))
	}
	if g.Default != nil {
		b.WriteString(" = ")
		b.WriteString(g.Default.String())
	}
	return b.String()
}

// AsType returns the parameter as it appears in a type position.
func (g *GenericParam) AsType() typesystem.Type {
	if g.Lifetime {
		return typesystem.TLifetime{Name: g.Name}
	}
	return typesystem.TCon{Name: g.Name}
}

type Field struct {
	Token token.Token
	Name  string // empty for unnamed fields
	Type  typesystem.Type
}

// FieldGroup is the concrete field layout of one variant.
type FieldGroup struct {
	Kind   GroupKind
	Fields []*Field
}

// Shape renders the group for diagnostics: (i32, String), { name: String }, unit.
func (g *FieldGroup) Shape() string {
	parts := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		if g.Kind == GroupNamed {
			parts[i] = f.Name + ": " + f.Type.String()
		} else {
			parts[i] = f.Type.String()
		}
	}
	switch g.Kind {
	case GroupUnnamed:
		return "(" + strings.Join(parts, ", ") + ")"
	case GroupNamed:
		if len(parts) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return "unit"
}

// FieldByName finds a named field.
func (g *FieldGroup) FieldByName(name string) (int, *Field) {
	for i, f := range g.Fields {
		if f.Name == name {
			return i, f
		}
	}
	return -1, nil
}

type Variant struct {
	Token  token.Token
	Name   string
	Fields *FieldGroup
}

func (v *Variant) GetToken() token.Token { return v.Token }

// UnionDecl is a tagged union as handed over by the surface parser, with the
// pattern annotation still in source form.
type UnionDecl struct {
	Token        token.Token
	Name         string
	Generics     []*GenericParam
	Where        []*Predicate
	Variants     []*Variant
	Pattern      string
	PatternToken token.Token // locates Pattern in the enclosing source
}

func (u *UnionDecl) GetToken() token.Token { return u.Token }

// SelfType is the union applied to its own generic parameters.
func (u *UnionDecl) SelfType() typesystem.Type {
	if len(u.Generics) == 0 {
		return typesystem.TCon{Name: u.Name}
	}
	args := make([]typesystem.Type, len(u.Generics))
	for i, g := range u.Generics {
		args[i] = g.AsType()
	}
	return typesystem.TApp{Constructor: typesystem.TCon{Name: u.Name}, Args: args}
}

// GenericNames returns the set of generic parameter names of the union.
func (u *UnionDecl) GenericNames() map[string]bool {
	names := make(map[string]bool, len(u.Generics))
	for _, g := range u.Generics {
		names[g.Name] = true
	}
	return names
}

// WithBounds returns a copy of u whose where clause is extended by preds.
// Variants and generics are shared with u.
func (u *UnionDecl) WithBounds(preds []*Predicate) *UnionDecl {
	cp := *u
	cp.Where = make([]*Predicate, 0, len(u.Where)+len(preds))
	cp.Where = append(cp.Where, u.Where...)
	cp.Where = append(cp.Where, preds...)
	return &cp
}

type Receiver int

const (
	ReceiverNone     Receiver = iota
	ReceiverValue             // self
	ReceiverMutValue          // mut self
	ReceiverRef               // &self
	ReceiverRefMut            // &mut self
)

func (r Receiver) String() string {
	switch r {
	case ReceiverValue:
		return "self"
	case ReceiverMutValue:
		return "mut self"
	case ReceiverRef:
		return "&self"
	case ReceiverRefMut:
		return "&mut self"
	}
	return ""
}

type Param struct {
	Name string
	Type typesystem.Type
}

func (p *Param) String() string { return p.Name + ": " + p.Type.String() }

// MethodSig is a capability method signature. Return is nil for unit.
type MethodSig struct {
	Token    token.Token
	Name     string
	Generics []*GenericParam
	Receiver Receiver
	Params   []*Param
	Return   typesystem.Type
}

func (m *MethodSig) GetToken() token.Token { return m.Token }

func (m *MethodSig) String() string {
	var b strings.Builder
	b.WriteString("fn ")
	b.WriteString(m.Name)
	if len(m.Generics) > 0 {
		gs := make([]string, len(m.Generics))
		for i, g := range m.Generics {
			gs[i] = g.String()
		}
		b.WriteString("<" + strings.Join(gs, ", ") + ">")
	}
	params := make([]string, 0, len(m.Params)+1)
	if m.Receiver != ReceiverNone {
		params = append(params, m.Receiver.String())
	}
	for _, p := range m.Params {
		params = append(params, p.String())
	}
	b.WriteString("(" + strings.Join(params, ", ") + ")")
	if !typesystem.IsUnit(m.Return) {
		b.WriteString(" -> ")
		b.WriteString(m.Return.String())
	}
	return b.String()
}

// Apply substitutes s into the signature. Names declared as the method's own
// generics are never substituted.
func (m *MethodSig) Apply(s typesystem.Subst) *MethodSig {
	if len(m.Generics) > 0 {
		filtered := make(typesystem.Subst, len(s))
		for k, v := range s {
			filtered[k] = v
		}
		for _, g := range m.Generics {
			delete(filtered, g.Name)
		}
		s = filtered
	}
	cp := *m
	cp.Params = make([]*Param, len(m.Params))
	for i, p := range m.Params {
		cp.Params[i] = &Param{Name: p.Name, Type: p.Type.Apply(s)}
	}
	if m.Return != nil {
		cp.Return = m.Return.Apply(s)
	}
	return &cp
}

type AssocTypeDecl struct {
	Token   token.Token
	Name    string
	Bounds  []*Bound
	Default typesystem.Type
}

func (a *AssocTypeDecl) String() string {
	var b strings.Builder
	b.WriteString("type ")
	b.WriteString(a.Name)
	if len(a.Bounds) > 0 {
		bounds := make([]string, len(a.Bounds))
		for i, bd := range a.Bounds {
			bounds[i] = bd.String()
		}
		b.WriteString(": " + strings.Join(bounds, " + "))
	}
	if a.Default != nil {
		b.WriteString(" = " + a.Default.String())
	}
	return b.String()
}

// CapabilityDecl is a capability interface declaration.
type CapabilityDecl struct {
	Token    token.Token
	Name     string
	Generics []*GenericParam
	Assoc    []*AssocTypeDecl
	Methods  []*MethodSig
}

func (c *CapabilityDecl) GetToken() token.Token { return c.Token }
