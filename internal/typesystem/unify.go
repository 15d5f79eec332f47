package typesystem

import "fmt"

// MismatchError reports that an actual type does not have the structure
// required by a pattern type.
type MismatchError struct {
	Expected Type
	Found    Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("found `%s` but expected `%s`", e.Found, e.Expected)
}

// ConflictError reports a placeholder that was already bound to a different
// type earlier in the same unification.
type ConflictError struct {
	Placeholder string
	Bound       Type
	Found       Type
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("found `%s` but expected `%s` (placeholder %s is already bound to `%s`)",
		e.Found, e.Bound, e.Placeholder, e.Bound)
}

// Unify matches a pattern type against an actual type. Placeholders in the
// pattern bind to the corresponding part of actual; `_` matches anything.
// Matching is one-directional: actual never contains placeholders.
func Unify(pattern, actual Type) (Subst, error) {
	return UnifyWith(pattern, actual, nil)
}

// UnifyWith is Unify starting from existing bindings. The first binding of a
// placeholder is authoritative; bound itself is never modified.
func UnifyWith(pattern, actual Type, bound Subst) (Subst, error) {
	s := make(Subst, len(bound))
	for k, v := range bound {
		s[k] = v
	}
	if err := unifyInternal(pattern, actual, s); err != nil {
		if _, isConflict := err.(*ConflictError); isConflict {
			return nil, err
		}
		// Report the outermost pair, with what is known substituted in.
		return nil, &MismatchError{Expected: pattern.Apply(s), Found: actual}
	}
	return s, nil
}

func unifyInternal(p, a Type, s Subst) error {
	switch pt := p.(type) {
	case TInfer:
		return nil

	case TVar:
		if prev, ok := s[pt.Name]; ok {
			if !Equal(prev, a) {
				return &ConflictError{Placeholder: pt.Name, Bound: prev, Found: a}
			}
			return nil
		}
		s[pt.Name] = a
		return nil

	case TCon:
		if at, ok := a.(TCon); ok && at.Name == pt.Name {
			return nil
		}

	case TApp:
		at, ok := a.(TApp)
		if !ok || at.Constructor.Name != pt.Constructor.Name ||
			len(at.Args) != len(pt.Args) || len(at.Bindings) != len(pt.Bindings) {
			break
		}
		for i := range pt.Args {
			if err := unifyInternal(pt.Args[i], at.Args[i], s); err != nil {
				return err
			}
		}
		for i := range pt.Bindings {
			if pt.Bindings[i].Name != at.Bindings[i].Name {
				return &MismatchError{Expected: p, Found: a}
			}
			if err := unifyInternal(pt.Bindings[i].Type, at.Bindings[i].Type, s); err != nil {
				return err
			}
		}
		return nil

	case TRef:
		at, ok := a.(TRef)
		if !ok || at.Mutable != pt.Mutable {
			break
		}
		// An elided lifetime in the pattern accepts any lifetime.
		if pt.Lifetime != "" && pt.Lifetime != at.Lifetime {
			break
		}
		return unifyInternal(pt.Elem, at.Elem, s)

	case TTuple:
		at, ok := a.(TTuple)
		if !ok || len(at.Elements) != len(pt.Elements) {
			break
		}
		for i := range pt.Elements {
			if err := unifyInternal(pt.Elements[i], at.Elements[i], s); err != nil {
				return err
			}
		}
		return nil

	case TSlice:
		if at, ok := a.(TSlice); ok {
			return unifyInternal(pt.Elem, at.Elem, s)
		}

	case TArray:
		if at, ok := a.(TArray); ok && at.Len == pt.Len {
			return unifyInternal(pt.Elem, at.Elem, s)
		}

	case TLifetime:
		if at, ok := a.(TLifetime); ok && at.Name == pt.Name {
			return nil
		}

	case TObject:
		at, ok := a.(TObject)
		if !ok || at.Keyword != pt.Keyword || len(at.Bounds) != len(pt.Bounds) {
			break
		}
		for i := range pt.Bounds {
			if err := unifyInternal(pt.Bounds[i], at.Bounds[i], s); err != nil {
				return err
			}
		}
		return nil
	}
	return &MismatchError{Expected: p, Found: a}
}
