// Package matcher pairs every variant of a union with the first compatible
// alternative of a shape pattern and records the resulting bindings.
package matcher

import (
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/constraints"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// Pair is one pattern slot matched with one variant field.
type Pair struct {
	Slot     *ast.Slot
	Field    *ast.Field
	Position int
}

// VariantMatch is the outcome for a variant that matched.
type VariantMatch struct {
	Index       int
	Variant     *ast.Variant
	Alternative int
	Group       *ast.PatternGroup
	Pairs       []Pair
	Bindings    typesystem.Subst
}

// Result is the matched phase of a synthesis invocation.
type Result struct {
	Pattern   *ast.ShapePattern
	Union     *ast.UnionDecl
	Matches   []*VariantMatch
	Collector *constraints.Collector
}

// Match checks every variant of union against pattern. Variants that fail are
// reported and contribute no bindings; matching continues with the rest.
func Match(pattern *ast.ShapePattern, union *ast.UnionDecl, c *constraints.Collector) (*Result, []*diagnostics.DiagnosticError) {
	res := &Result{Pattern: pattern, Union: union, Collector: c}
	var errs []*diagnostics.DiagnosticError

	if len(union.Variants) == 0 {
		errs = append(errs, diagnostics.NewError(diagnostics.ErrM003, union.Token,
			"`%s` has no variants; there is nothing to match", union.Name))
		return res, errs
	}

	for i, v := range union.Variants {
		alt, group, ok := SelectAlternative(pattern, v.Fields)
		if !ok {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrM001, v.Token,
				"variant `%s::%s` with shape `%s` does not match any pattern alternative; declared alternatives: %s",
				union.Name, v.Name, v.Fields.Shape(), pattern.AlternativeList()))
			continue
		}
		vm, verrs := pairVariant(union, i, v, alt, group)
		if len(verrs) > 0 {
			errs = append(errs, verrs...)
			continue
		}
		commit(c, vm)
		res.Matches = append(res.Matches, vm)
	}
	return res, errs
}

// SelectAlternative returns the first alternative whose group kind and arity
// accept fields. There is no backtracking once an alternative is chosen.
func SelectAlternative(pattern *ast.ShapePattern, fields *ast.FieldGroup) (int, *ast.PatternGroup, bool) {
	for i, alt := range pattern.Alternatives {
		if compatible(alt.Group, fields) {
			return i, alt.Group, true
		}
	}
	return -1, nil, false
}

func compatible(g *ast.PatternGroup, fields *ast.FieldGroup) bool {
	if g.Kind != fields.Kind {
		return false
	}
	if g.Variadic != nil {
		return g.MinFields() <= len(fields.Fields)
	}
	return len(g.Slots) == len(fields.Fields)
}

func pairVariant(union *ast.UnionDecl, index int, v *ast.Variant, alt int, group *ast.PatternGroup) (*VariantMatch, []*diagnostics.DiagnosticError) {
	vm := &VariantMatch{Index: index, Variant: v, Alternative: alt, Group: group, Bindings: typesystem.Subst{}}
	var errs []*diagnostics.DiagnosticError

	for i, slot := range group.Slots {
		pos, field := i, (*ast.Field)(nil)
		if group.Kind == ast.GroupNamed {
			pos, field = v.Fields.FieldByName(slot.Key)
			if field == nil {
				errs = append(errs, diagnostics.NewError(diagnostics.ErrM004, v.Token,
					"variant `%s::%s` has no field `%s` required by pattern `%s`",
					union.Name, v.Name, slot.Key, group))
				continue
			}
		} else {
			field = v.Fields.Fields[i]
		}

		switch slot.Kind {
		case ast.SlotConcrete:
			if !typesystem.Equal(slot.Type, field.Type) {
				errs = append(errs, mismatch(union, v, field, &typesystem.MismatchError{Expected: slot.Type, Found: field.Type}))
				continue
			}
		case ast.SlotPlaceholder, ast.SlotStructural:
			s, err := typesystem.UnifyWith(slot.Type, field.Type, vm.Bindings)
			if err != nil {
				errs = append(errs, mismatch(union, v, field, err))
				continue
			}
			vm.Bindings = s
		}
		vm.Pairs = append(vm.Pairs, Pair{Slot: slot, Field: field, Position: pos})
	}
	return vm, errs
}

func mismatch(union *ast.UnionDecl, v *ast.Variant, field *ast.Field, err error) *diagnostics.DiagnosticError {
	tok := field.Token
	if tok.Line == 0 {
		tok = v.Token
	}
	what := "field"
	if field.Name != "" {
		what = "field `" + field.Name + "`"
	}
	return diagnostics.NewError(diagnostics.ErrM002, tok, "variant `%s::%s` %s: %s",
		union.Name, v.Name, what, err.Error())
}

// commit records a successful variant in the collector.
func commit(c *constraints.Collector, vm *VariantMatch) {
	for name, t := range vm.Bindings {
		c.Record(name, t)
	}
	for _, p := range vm.Pairs {
		ref := constraints.FieldRef{
			VariantIndex: vm.Index,
			Variant:      vm.Variant.Name,
			Kind:         vm.Variant.Fields.Kind,
			Position:     p.Position,
			Key:          p.Field.Name,
			Arity:        len(vm.Variant.Fields.Fields),
			Type:         p.Field.Type,
		}
		placeholder := ""
		if tv, ok := p.Slot.Type.(typesystem.TVar); ok {
			placeholder = tv.Name
		}
		c.RecordField(ref, placeholder)
	}
}
