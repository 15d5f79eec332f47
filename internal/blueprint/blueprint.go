// Package blueprint builds dispatch blueprints: for every distinct
// forwarding bound, the capability schematic paired with one match arm per
// variant that carries a target field.
package blueprint

import (
	"fmt"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/capability"
	"github.com/funvibe/shapeshift/internal/config"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/linker"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// Resolver looks capabilities up by name. *capability.Registry implements it.
type Resolver interface {
	Resolve(name string) (*capability.Schematic, bool)
}

// Method is one forwarded method with its real arms keyed by variant index.
type Method struct {
	Sig  *ast.MethodSig
	Arms map[int]*ast.MatchArm
}

type Blueprint struct {
	Key       string // normalized bound
	Bound     *ast.Bound
	Trait     typesystem.TApp
	Schematic *capability.Schematic
	Assoc     []typesystem.AssocBinding
	Methods   []*Method
	Targets   []typesystem.Type
	Sources   []*ast.Predicate
}

// Build resolves every forward of linked and merges forwards with the same
// normalized bound. A forward that fails is dropped; the others still build.
func Build(linked *linker.Linked, r Resolver) ([]*Blueprint, []*diagnostics.DiagnosticError) {
	var (
		out     []*Blueprint
		errs    []*diagnostics.DiagnosticError
		byKey   = make(map[string]*Blueprint)
		missing = make(map[string]bool)
	)
	for _, fw := range linked.Forwards {
		key := fw.Bound.Normalized()
		if missing[fw.Bound.TraitName()] {
			continue
		}
		bp, berrs := build(fw, r)
		if len(berrs) > 0 {
			errs = append(errs, berrs...)
			if berrs[0].Code == diagnostics.ErrC001 {
				missing[fw.Bound.TraitName()] = true
			}
			continue
		}
		if prev, ok := byKey[key]; ok {
			prev.merge(bp)
			continue
		}
		byKey[key] = bp
		out = append(out, bp)
	}
	return out, errs
}

func build(fw *linker.Forward, r Resolver) (*Blueprint, []*diagnostics.DiagnosticError) {
	bound := fw.Bound
	sch, ok := r.Resolve(bound.TraitName())
	if !ok {
		return nil, []*diagnostics.DiagnosticError{diagnostics.NewError(diagnostics.ErrC001, bound.Token,
			"capability `%s` cannot be found; ensure it is registered before the union is processed", bound.TraitName())}
	}

	var errs []*diagnostics.DiagnosticError
	subst, err := genericSubst(sch, bound)
	if err != nil {
		errs = append(errs, err)
	}
	for _, b := range bound.Trait.Bindings {
		if sch.AssocDecl(b.Name) == nil {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrC004, bound.Token,
				"capability `%s` has no associated type `%s`", sch.Name, b.Name))
		}
	}
	for _, m := range sch.Methods {
		if m.Receiver == ast.ReceiverNone {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrC003, bound.Token,
				"method `%s` of capability `%s` has no receiver and cannot be forwarded to a variant field", m.Name, sch.Name))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	bp := &Blueprint{
		Key:       bound.Normalized(),
		Bound:     bound,
		Trait:     bound.Trait.WithoutBindings(),
		Schematic: sch,
		Assoc:     assocBindings(sch, bound, subst),
		Targets:   append([]typesystem.Type(nil), fw.Targets...),
		Sources:   []*ast.Predicate{fw.Predicate},
	}
	for _, m := range sch.Methods {
		sig := monomorphize(m, subst)
		method := &Method{Sig: sig, Arms: make(map[int]*ast.MatchArm, len(fw.Fields))}
		for _, ref := range fw.Fields {
			method.Arms[ref.VariantIndex] = &ast.MatchArm{
				Pattern: fieldPattern(ref),
				Body:    call(sig),
			}
		}
		bp.Methods = append(bp.Methods, method)
	}
	return bp, nil
}

// genericSubst maps the capability's type parameters to the supplied
// arguments, falling back to declared defaults.
func genericSubst(sch *capability.Schematic, bound *ast.Bound) (typesystem.Subst, *diagnostics.DiagnosticError) {
	var args []typesystem.Type
	for _, a := range bound.Trait.Args {
		if _, ok := a.(typesystem.TLifetime); !ok {
			args = append(args, a)
		}
	}
	params := sch.TypeGenerics()
	required := sch.RequiredGenerics()
	if len(args) < required || len(args) > len(params) {
		expect := fmt.Sprintf("%d", len(params))
		if required != len(params) {
			expect = fmt.Sprintf("between %d and %d", required, len(params))
		}
		return nil, diagnostics.NewError(diagnostics.ErrC002, bound.Token,
			"capability `%s` expects %s generic arguments, found %d", sch.Name, expect, len(args))
	}

	s := make(typesystem.Subst, len(params))
	for i, g := range params {
		switch {
		case i < len(args):
			s[g.Name] = args[i]
		case g.Default != nil:
			s[g.Name] = g.Default
		}
	}
	return s, nil
}

// assocBindings fills associated types from the bound first, then from the
// declared defaults. Types left unset are omitted.
func assocBindings(sch *capability.Schematic, bound *ast.Bound, s typesystem.Subst) []typesystem.AssocBinding {
	var out []typesystem.AssocBinding
	for _, decl := range sch.Assoc {
		var t typesystem.Type
		for _, b := range bound.Trait.Bindings {
			if b.Name == decl.Name {
				t = b.Type
				break
			}
		}
		if t == nil && decl.Default != nil {
			t = decl.Default.Apply(s)
		}
		if t != nil {
			out = append(out, typesystem.AssocBinding{Name: decl.Name, Type: t})
		}
	}
	return out
}

// monomorphize substitutes s into m and names anonymous parameters so they
// can be forwarded.
func monomorphize(m *ast.MethodSig, s typesystem.Subst) *ast.MethodSig {
	sig := m.Apply(s)
	for i, p := range sig.Params {
		if p.Name == "_" {
			sig.Params[i] = &ast.Param{Name: fmt.Sprintf("%s%d", config.ArgNamePrefix, i), Type: p.Type}
		}
	}
	return sig
}

func call(sig *ast.MethodSig) *ast.MethodCallExpr {
	args := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		args[i] = p.Name
	}
	return &ast.MethodCallExpr{Receiver: config.BindingName, Method: sig.Name, Args: args}
}

// merge unions other into bp. Real arms already present win.
func (bp *Blueprint) merge(other *Blueprint) {
	for _, m := range other.Methods {
		target := bp.method(m.Sig.Name)
		if target == nil {
			bp.Methods = append(bp.Methods, m)
			continue
		}
		for idx, arm := range m.Arms {
			if _, ok := target.Arms[idx]; !ok {
				target.Arms[idx] = arm
			}
		}
	}
	for _, a := range other.Assoc {
		if !bp.hasAssoc(a.Name) {
			bp.Assoc = append(bp.Assoc, a)
		}
	}
	seen := make(map[string]bool, len(bp.Targets))
	for _, t := range bp.Targets {
		seen[t.String()] = true
	}
	for _, t := range other.Targets {
		if !seen[t.String()] {
			seen[t.String()] = true
			bp.Targets = append(bp.Targets, t)
		}
	}
	typesystem.SortTypes(bp.Targets)
	bp.Sources = append(bp.Sources, other.Sources...)
}

func (bp *Blueprint) method(name string) *Method {
	for _, m := range bp.Methods {
		if m.Sig.Name == name {
			return m
		}
	}
	return nil
}

func (bp *Blueprint) hasAssoc(name string) bool {
	for _, a := range bp.Assoc {
		if a.Name == name {
			return true
		}
	}
	return false
}

// AssocSubst maps `Self::Name` to the bound associated types, for default
// derivation.
func (bp *Blueprint) AssocSubst() typesystem.Subst {
	s := make(typesystem.Subst, len(bp.Assoc))
	for _, a := range bp.Assoc {
		s["Self::"+a.Name] = a.Type
	}
	return s
}
