// Package linker turns the constraint clause of a matched pattern into
// concrete bounds for the union and forwarding requests for the blueprint
// builder.
package linker

import (
	"sort"

	"go.uber.org/zap"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/constraints"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/matcher"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// Forward asks for one forwarding implementation of Bound, dispatching to
// Fields. Fields hold at most one reference per variant.
type Forward struct {
	Predicate *ast.Predicate
	Bound     *ast.Bound
	Targets   []typesystem.Type
	Fields    []constraints.FieldRef
}

// Linked is the linked phase of a synthesis invocation.
type Linked struct {
	Matched  *matcher.Result
	Bounds   []*ast.Predicate
	Forwards []*Forward
}

type linker struct {
	c      *constraints.Collector
	logger *zap.Logger
	bounds []*ast.Predicate
	byType map[string]*ast.Predicate
	seen   map[string]bool
	errors []*diagnostics.DiagnosticError
}

// Link walks the constraint clause of m.Pattern in declaration order.
func Link(m *matcher.Result, logger *zap.Logger) (*Linked, []*diagnostics.DiagnosticError) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &Linked{Matched: m}
	if m.Pattern == nil || m.Pattern.Where == nil {
		return out, nil
	}

	l := &linker{
		c:      m.Collector,
		logger: logger,
		byType: make(map[string]*ast.Predicate),
		seen:   make(map[string]bool),
	}
	for _, pred := range m.Pattern.Where.Predicates {
		out.Forwards = append(out.Forwards, l.predicate(pred)...)
	}
	out.Bounds = l.bounds
	return out, l.errors
}

func (l *linker) predicate(pred *ast.Predicate) []*Forward {
	if pred.Kind == ast.PredicateLifetime {
		l.errors = append(l.errors, diagnostics.NewError(diagnostics.ErrL001, pred.Token,
			"lifetime predicate `%s` cannot be translated into a bound on the union", pred))
		return nil
	}
	if hasWildcard(pred.Bounded) {
		l.errors = append(l.errors, diagnostics.NewError(diagnostics.ErrL001, pred.Token,
			"predicate `%s` bounds a wildcard; use a placeholder or a concrete type", pred))
		return nil
	}

	var plain, forward []*ast.Bound
	for _, b := range pred.Bounds {
		switch {
		case b.Relaxed:
			l.errors = append(l.errors, diagnostics.NewError(diagnostics.ErrL001, b.Token,
				"relaxed bound `%s` in `%s` is only allowed on generic declarations", b, pred))
		case b.Forward:
			forward = append(forward, b)
		default:
			plain = append(plain, b)
		}
	}

	substs, ok := l.substitutions(pred)
	if !ok {
		l.logger.Debug("placeholder never bound; predicate emits nothing",
			zap.String("predicate", pred.String()))
		return nil
	}

	for _, s := range substs {
		t := pred.Bounded.Apply(s)
		for _, b := range plain {
			l.emit(t, instantiate(b, s))
		}
	}

	instances := distinct(pred.Bounded, substs)
	var forwards []*Forward
	for _, b := range forward {
		if len(b.Trait.FreeTypeVariables()) == 0 {
			if fw := l.forward(pred, b, b, instances); fw != nil {
				forwards = append(forwards, fw)
			}
			continue
		}
		// The bound itself mentions placeholders: one forward per binding.
		for _, s := range substs {
			t := pred.Bounded.Apply(s)
			if fw := l.forward(pred, b, instantiate(b, s), []typesystem.Type{t}); fw != nil {
				forwards = append(forwards, fw)
			}
		}
	}
	return forwards
}

// forward builds the request for bound on targets. A placeholder that only
// occurs nested inside field types leaves no field to dispatch to; that is
// reported once per written bound and no request is made.
func (l *linker) forward(pred *ast.Predicate, written, bound *ast.Bound, targets []typesystem.Type) *Forward {
	fields := l.fields(pred.Bounded, targets)
	if tv, ok := pred.Bounded.(typesystem.TVar); ok && len(fields) == 0 {
		key := "forward " + pred.String() + " " + written.String()
		if !l.seen[key] {
			l.seen[key] = true
			l.errors = append(l.errors, diagnostics.NewError(diagnostics.ErrL001, written.Token,
				"placeholder `%s` is not bound to a whole field; `%s` cannot be forwarded", tv.Name, written))
		}
		return nil
	}
	return &Forward{Predicate: pred, Bound: bound, Targets: targets, Fields: fields}
}

// substitutions expands every placeholder of pred into the cartesian product
// of its bindings, ordered by the instantiated bounded type. ok is false when
// a placeholder has no binding.
func (l *linker) substitutions(pred *ast.Predicate) ([]typesystem.Subst, bool) {
	vars := pred.Bounded.FreeTypeVariables()
	for _, b := range pred.Bounds {
		if b.Kind == ast.BoundTrait {
			vars = append(vars, b.Trait.FreeTypeVariables()...)
		}
	}

	substs := []typesystem.Subst{{}}
	expanded := make(map[string]bool, len(vars))
	for _, v := range vars {
		if expanded[v.Name] {
			continue
		}
		expanded[v.Name] = true
		bound := l.c.Lookup(v.Name)
		if len(bound) == 0 {
			return nil, false
		}
		next := make([]typesystem.Subst, 0, len(substs)*len(bound))
		for _, s := range substs {
			for _, b := range bound {
				cp := make(typesystem.Subst, len(s)+1)
				for name, t := range s {
					cp[name] = t
				}
				cp[v.Name] = b
				next = append(next, cp)
			}
		}
		substs = next
	}
	sort.SliceStable(substs, func(i, j int) bool {
		return pred.Bounded.Apply(substs[i]).String() < pred.Bounded.Apply(substs[j]).String()
	})
	return substs, true
}

// distinct returns the instantiated bounded types, deduplicated and sorted.
func distinct(bounded typesystem.Type, substs []typesystem.Subst) []typesystem.Type {
	out := make([]typesystem.Type, 0, len(substs))
	seen := make(map[string]bool, len(substs))
	for _, s := range substs {
		inst := bounded.Apply(s)
		if !seen[inst.String()] {
			seen[inst.String()] = true
			out = append(out, inst)
		}
	}
	typesystem.SortTypes(out)
	return out
}

// instantiate substitutes placeholder bindings into the generic arguments of
// b. Bounds without placeholders are returned as is.
func instantiate(b *ast.Bound, s typesystem.Subst) *ast.Bound {
	if b.Kind != ast.BoundTrait || len(b.Trait.FreeTypeVariables()) == 0 {
		return b
	}
	cp := *b
	cp.Trait = b.Trait.Apply(s).(typesystem.TApp)
	return &cp
}

func hasWildcard(t typesystem.Type) bool {
	found := false
	typesystem.Walk(t, func(n typesystem.Type) bool {
		if _, ok := n.(typesystem.TInfer); ok {
			found = true
		}
		return !found
	})
	return found
}

// fields picks, per variant, the first field carrying one of the instances.
func (l *linker) fields(bounded typesystem.Type, instances []typesystem.Type) []constraints.FieldRef {
	var refs []constraints.FieldRef
	if tv, ok := bounded.(typesystem.TVar); ok {
		want := make(map[string]bool, len(instances))
		for _, t := range instances {
			want[t.String()] = true
		}
		for _, r := range l.c.FieldsOfPlaceholder(tv.Name) {
			if want[r.Type.String()] {
				refs = append(refs, r)
			}
		}
	} else {
		for _, t := range instances {
			refs = append(refs, l.c.FieldsOfType(t)...)
		}
	}
	return firstPerVariant(refs)
}

func firstPerVariant(refs []constraints.FieldRef) []constraints.FieldRef {
	best := make(map[int]constraints.FieldRef)
	var order []int
	for _, r := range refs {
		cur, ok := best[r.VariantIndex]
		if !ok {
			order = append(order, r.VariantIndex)
			best[r.VariantIndex] = r
			continue
		}
		if r.Position < cur.Position {
			best[r.VariantIndex] = r
		}
	}
	sort.Ints(order)
	out := make([]constraints.FieldRef, len(order))
	for i, idx := range order {
		out[i] = best[idx]
	}
	return out
}

// emit adds `t: b`, merging bounds on the same type into one predicate.
func (l *linker) emit(t typesystem.Type, b *ast.Bound) {
	key := t.String() + ": " + b.String()
	if l.seen[key] {
		return
	}
	l.seen[key] = true
	if pred, ok := l.byType[t.String()]; ok {
		pred.Bounds = append(pred.Bounds, b)
		return
	}
	pred := &ast.Predicate{Token: b.Token, Kind: ast.PredicateType, Bounded: t, Bounds: []*ast.Bound{b}}
	l.byType[t.String()] = pred
	l.bounds = append(l.bounds, pred)
}
