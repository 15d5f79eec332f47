package manifest

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/parser"
	"github.com/funvibe/shapeshift/internal/token"
)

// declErrors collects diagnostics from the declaration parsers and stamps
// them with the manifest path.
type declErrors struct {
	file string
	errs []*diagnostics.DiagnosticError
}

func (d *declErrors) add(err error) {
	if err == nil {
		return
	}
	if agg, ok := diagnostics.AsAggregate(err); ok {
		for _, e := range agg.Errors {
			if e.File == "" {
				e.File = d.file
			}
			d.errs = append(d.errs, e)
		}
		return
	}
	e := diagnostics.NewError(diagnostics.ErrP005, token.Token{}, "%s", err.Error())
	e.File = d.file
	d.errs = append(d.errs, e)
}

// CapabilityDecls builds every capability declaration of the manifest.
func (m *Manifest) CapabilityDecls() ([]*ast.CapabilityDecl, error) {
	out := make([]*ast.CapabilityDecl, 0, len(m.Capabilities))
	d := &declErrors{file: m.Path}
	for i := range m.Capabilities {
		if decl := m.Capabilities[i].decl(d); decl != nil {
			out = append(out, decl)
		}
	}
	if err := diagnostics.Aggregate(m.Path, d.errs); err != nil {
		return nil, err
	}
	return out, nil
}

// UnionDecls builds every union declaration of the manifest.
func (m *Manifest) UnionDecls() ([]*ast.UnionDecl, error) {
	out := make([]*ast.UnionDecl, 0, len(m.Unions))
	d := &declErrors{file: m.Path}
	for i := range m.Unions {
		out = append(out, m.Unions[i].decl(d))
	}
	if err := diagnostics.Aggregate(m.Path, d.errs); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CapabilitySpec) decl(d *declErrors) *ast.CapabilityDecl {
	decl := &ast.CapabilityDecl{Token: c.pos.token(), Name: c.Name}
	decl.Token.Lexeme = c.Name
	before := len(d.errs)
	for i, src := range c.Generics {
		g, err := parser.ParseGenericParam(src, at(c.generics, i, c.pos))
		d.add(err)
		if g != nil {
			decl.Generics = append(decl.Generics, g)
		}
	}
	for i, src := range c.Types {
		a, err := parser.ParseAssocType(src, at(c.types, i, c.pos))
		d.add(err)
		if a != nil {
			decl.Assoc = append(decl.Assoc, a)
		}
	}
	for i, src := range c.Methods {
		sig, err := parser.ParseMethodSig(src, at(c.methods, i, c.pos))
		d.add(err)
		if sig != nil {
			decl.Methods = append(decl.Methods, sig)
		}
	}
	if len(d.errs) > before {
		return nil
	}
	return decl
}

func (u *UnionSpec) decl(d *declErrors) *ast.UnionDecl {
	decl := &ast.UnionDecl{
		Token:        u.pos.token(),
		Name:         u.Name,
		Pattern:      u.Pattern,
		PatternToken: u.patternPos.token(),
	}
	decl.Token.Lexeme = u.Name
	for i, src := range u.Generics {
		g, err := parser.ParseGenericParam(src, at(u.generics, i, u.pos))
		d.add(err)
		if g != nil {
			decl.Generics = append(decl.Generics, g)
		}
	}
	for i, src := range u.Where {
		pred, err := parser.ParsePredicate(src, at(u.where, i, u.pos))
		d.add(err)
		if pred != nil {
			decl.Where = append(decl.Where, pred)
		}
	}
	for i := range u.Variants {
		decl.Variants = append(decl.Variants, u.Variants[i].decl(d))
	}
	return decl
}

func (v *VariantSpec) decl(d *declErrors) *ast.Variant {
	variant := &ast.Variant{
		Token:  v.pos.token(),
		Name:   v.Name,
		Fields: &ast.FieldGroup{Kind: ast.GroupUnit},
	}
	variant.Token.Lexeme = v.Name

	switch v.Fields.Kind {
	case yaml.SequenceNode:
		variant.Fields.Kind = ast.GroupUnnamed
		for _, item := range v.Fields.Content {
			variant.Fields.Fields = append(variant.Fields.Fields, field(d, "", item))
		}
	case yaml.MappingNode:
		variant.Fields.Kind = ast.GroupNamed
		for i := 0; i+1 < len(v.Fields.Content); i += 2 {
			key, value := v.Fields.Content[i], v.Fields.Content[i+1]
			variant.Fields.Fields = append(variant.Fields.Fields, field(d, key.Value, value))
		}
	}
	return variant
}

func field(d *declErrors, name string, n *yaml.Node) *ast.Field {
	pos := scalarStart(nil, n)
	f := &ast.Field{Token: pos.token(), Name: name}
	f.Token.Lexeme = n.Value
	t, err := parser.ParseTypeAt(n.Value, pos.token())
	d.add(err)
	f.Type = t
	return f
}
