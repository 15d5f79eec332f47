package blueprint

import (
	"fmt"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/config"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// Impl lowers bp into an implementation for union. Every variant gets an
// arm, in declaration order: the real arm when one exists, otherwise a
// derived default or an abort.
func Impl(bp *Blueprint, union *ast.UnionDecl) *ast.ImplBlock {
	block := &ast.ImplBlock{
		Generics:   union.Generics,
		Trait:      bp.Trait,
		SelfType:   union.SelfType(),
		Where:      append([]*ast.Predicate(nil), union.Where...),
		AssocTypes: bp.Assoc,
	}

	generics := union.GenericNames()
	for _, t := range bp.Targets {
		if typesystem.Mentions(t, generics) {
			block.Where = append(block.Where, &ast.Predicate{
				Token:   bp.Bound.Token,
				Kind:    ast.PredicateType,
				Bounded: t,
				Bounds:  []*ast.Bound{bp.Bound.Plain()},
			})
		}
	}

	assoc := bp.AssocSubst()
	for _, m := range bp.Methods {
		im := &ast.ImplMethod{Sig: m.Sig, Scrutinee: config.ScrutineeName}
		var ret typesystem.Type
		if m.Sig.Return != nil {
			ret = m.Sig.Return.Apply(assoc)
		}
		for i, v := range union.Variants {
			if arm, ok := m.Arms[i]; ok {
				cp := *arm
				cp.Pattern.Union = union.Name
				im.Arms = append(im.Arms, &cp)
				continue
			}
			im.Arms = append(im.Arms, fallbackArm(union, v, bp, m.Sig, ret))
		}
		block.Methods = append(block.Methods, im)
	}
	return block
}

func fallbackArm(union *ast.UnionDecl, v *ast.Variant, bp *Blueprint, sig *ast.MethodSig, ret typesystem.Type) *ast.MatchArm {
	pattern := restPattern(v)
	pattern.Union = union.Name
	body, ok := DefaultValue(ret)
	if !ok {
		body = fmt.Sprintf("panic!(\"%s: `%s::%s` has no field for `%s::%s`\")",
			config.FallbackMessage, union.Name, v.Name, bp.Schematic.Name, sig.Name)
	}
	return &ast.MatchArm{Pattern: pattern, Body: &ast.RawExpr{Text: body}, Fallback: true}
}
