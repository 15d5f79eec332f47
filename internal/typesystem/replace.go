package typesystem

// Walk calls fn for t and every type nested in it, depth first. Returning
// false from fn prunes the subtree.
func Walk(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch typ := t.(type) {
	case TApp:
		for _, a := range typ.Args {
			Walk(a, fn)
		}
		for _, b := range typ.Bindings {
			Walk(b.Type, fn)
		}
	case TRef:
		Walk(typ.Elem, fn)
	case TTuple:
		for _, e := range typ.Elements {
			Walk(e, fn)
		}
	case TSlice:
		Walk(typ.Elem, fn)
	case TArray:
		Walk(typ.Elem, fn)
	case TObject:
		for _, b := range typ.Bounds {
			Walk(b, fn)
		}
	}
}

// Mentions reports whether t refers to any of the given names, either as a
// named type or as the head of a path (T::Item mentions T).
func Mentions(t Type, names map[string]bool) bool {
	if len(names) == 0 {
		return false
	}
	found := false
	Walk(t, func(n Type) bool {
		if found {
			return false
		}
		var name string
		switch typ := n.(type) {
		case TCon:
			name = typ.Name
		case TApp:
			name = typ.Constructor.Name
		case TVar:
			name = typ.Name
		default:
			return true
		}
		if names[name] || names[pathHead(name)] {
			found = true
			return false
		}
		return true
	})
	return found
}

// ContainsPlaceholder reports whether t has any placeholder or `_` inside.
func ContainsPlaceholder(t Type) bool {
	found := false
	Walk(t, func(n Type) bool {
		switch n.(type) {
		case TVar, TInfer:
			found = true
		}
		return !found
	})
	return found
}

func pathHead(name string) string {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == ':' && name[i+1] == ':' {
			return name[:i]
		}
	}
	return name
}
