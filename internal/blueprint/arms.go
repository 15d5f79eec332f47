package blueprint

import (
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/config"
	"github.com/funvibe/shapeshift/internal/constraints"
)

// fieldPattern destructures ref's variant, capturing the target field.
//
//	Union::V(_, _, val, ..)
//	Union::V { key: val, .. }
func fieldPattern(ref constraints.FieldRef) ast.ArmPattern {
	p := ast.ArmPattern{Variant: ref.Variant, Kind: ref.Kind}
	switch ref.Kind {
	case ast.GroupNamed:
		p.Elements = []string{ref.Key + ": " + config.BindingName}
		p.Rest = ref.Arity > 1
	default:
		p.Elements = make([]string, 0, ref.Position+1)
		for i := 0; i < ref.Position; i++ {
			p.Elements = append(p.Elements, "_")
		}
		p.Elements = append(p.Elements, config.BindingName)
		p.Rest = ref.Position < ref.Arity-1
	}
	return p
}

// restPattern matches a variant without binding anything.
func restPattern(v *ast.Variant) ast.ArmPattern {
	p := ast.ArmPattern{Variant: v.Name, Kind: v.Fields.Kind}
	if v.Fields.Kind != ast.GroupUnit {
		p.Rest = true
	}
	return p
}
