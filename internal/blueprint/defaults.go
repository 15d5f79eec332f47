package blueprint

import (
	"strings"

	"github.com/funvibe/shapeshift/internal/config"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

const maxDefaultDepth = 8

var defaultable = func() map[string]bool {
	m := make(map[string]bool, len(config.DefaultableTypes))
	for _, name := range config.DefaultableTypes {
		m[name] = true
	}
	return m
}()

// DefaultValue derives the fallback returned by a variant that has no
// target field. It only understands unit, Option, tuples, references to
// those and a closed table of owned defaultable types; ok is false for
// anything else.
func DefaultValue(t typesystem.Type) (string, bool) {
	return deriveDefault(t, false, 0)
}

// Behind a reference only constant-promotable values are allowed, so owned
// defaults are rejected there.
func deriveDefault(t typesystem.Type, borrowed bool, depth int) (string, bool) {
	if depth > maxDefaultDepth {
		return "", false
	}
	if typesystem.IsUnit(t) {
		return config.UnitExpr, true
	}
	if _, ok := typesystem.OptionElem(t); ok {
		return config.NoneCtorName, true
	}

	switch t := t.(type) {
	case typesystem.TRef:
		if t.Mutable {
			return "", false
		}
		inner, ok := deriveDefault(t.Elem, true, depth+1)
		if !ok {
			return "", false
		}
		return "&" + inner, true
	case typesystem.TTuple:
		parts := make([]string, len(t.Elements))
		for i, el := range t.Elements {
			v, ok := deriveDefault(el, borrowed, depth+1)
			if !ok {
				return "", false
			}
			parts[i] = v
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)", true
		}
		return "(" + strings.Join(parts, ", ") + ")", true
	case typesystem.TCon:
		if !borrowed && defaultable[t.Name] {
			return config.DefaultExpr, true
		}
	case typesystem.TApp:
		if !borrowed && defaultable[t.Constructor.Name] {
			return config.DefaultExpr, true
		}
	}
	return "", false
}
