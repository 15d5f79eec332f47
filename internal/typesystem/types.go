package typesystem

import (
	"sort"
	"strings"

	"github.com/funvibe/shapeshift/internal/config"
)

// Type is the interface for all host types handled by the engine.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// Subst maps placeholder or generic parameter names to types.
type Subst map[string]Type

// TVar is a pattern placeholder (T, U, K2). Placeholders only exist in
// pattern and constraint-clause text; declared types never contain them.
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }

func (t TVar) Apply(s Subst) Type {
	if r, ok := s[t.Name]; ok {
		return r
	}
	return t
}

func (t TVar) FreeTypeVariables() []TVar { return []TVar{t} }

// TCon is a named type without generic arguments. Name may be a path
// (std::fmt::Result, Self::Output).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

// Apply substitutes whole-name matches only, so generic parameters of a
// capability (Rhs, T) are replaced while projections (Self::Output) are not.
func (t TCon) Apply(s Subst) Type {
	if r, ok := s[t.Name]; ok {
		return r
	}
	return t
}

func (t TCon) FreeTypeVariables() []TVar { return nil }

// LastSegment returns the final path segment of the name.
func (t TCon) LastSegment() string {
	if i := strings.LastIndex(t.Name, "::"); i >= 0 {
		return t.Name[i+2:]
	}
	return t.Name
}

// AssocBinding is an associated-type assignment inside generic arguments
// (Iterator<Item = u8>).
type AssocBinding struct {
	Name string
	Type Type
}

func (b AssocBinding) String() string { return b.Name + " = " + b.Type.String() }

// TApp is a generic type application: Vec<T>, HashMap<K, V>, Iterator<Item = u8>.
type TApp struct {
	Constructor TCon
	Args        []Type
	Bindings    []AssocBinding
}

func (t TApp) String() string {
	var b strings.Builder
	b.WriteString(t.Constructor.Name)
	if len(t.Args) == 0 && len(t.Bindings) == 0 {
		return b.String()
	}
	b.WriteString("<")
	parts := make([]string, 0, len(t.Args)+len(t.Bindings))
	for _, a := range t.Args {
		parts = append(parts, a.String())
	}
	for _, ab := range t.Bindings {
		parts = append(parts, ab.String())
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(">")
	return b.String()
}

func (t TApp) Apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	var bindings []AssocBinding
	if len(t.Bindings) > 0 {
		bindings = make([]AssocBinding, len(t.Bindings))
		for i, ab := range t.Bindings {
			bindings[i] = AssocBinding{Name: ab.Name, Type: ab.Type.Apply(s)}
		}
	}
	return TApp{Constructor: t.Constructor, Args: args, Bindings: bindings}
}

func (t TApp) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	for _, ab := range t.Bindings {
		vars = append(vars, ab.Type.FreeTypeVariables()...)
	}
	return uniqueVars(vars)
}

// WithoutBindings strips associated-type assignments.
func (t TApp) WithoutBindings() TApp {
	return TApp{Constructor: t.Constructor, Args: t.Args}
}

// TRef is a reference type: &T, &'a mut T.
type TRef struct {
	Lifetime string
	Mutable  bool
	Elem     Type
}

func (t TRef) String() string {
	var b strings.Builder
	b.WriteString("&")
	if t.Lifetime != "" {
		b.WriteString(t.Lifetime)
		b.WriteString(" ")
	}
	if t.Mutable {
		b.WriteString("mut ")
	}
	if obj, ok := t.Elem.(TObject); ok && len(obj.Bounds) > 1 {
		b.WriteString("(" + obj.String() + ")")
		return b.String()
	}
	b.WriteString(t.Elem.String())
	return b.String()
}

func (t TRef) Apply(s Subst) Type {
	return TRef{Lifetime: t.Lifetime, Mutable: t.Mutable, Elem: t.Elem.Apply(s)}
}

func (t TRef) FreeTypeVariables() []TVar { return t.Elem.FreeTypeVariables() }

// TTuple is a tuple type. The empty tuple is the unit type.
type TTuple struct {
	Elements []Type
}

func (t TTuple) String() string {
	switch len(t.Elements) {
	case 0:
		return "()"
	case 1:
		return "(" + t.Elements[0].String() + ",)"
	}
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t TTuple) Apply(s Subst) Type {
	elems := make([]Type, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.Apply(s)
	}
	return TTuple{Elements: elems}
}

func (t TTuple) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, e := range t.Elements {
		vars = append(vars, e.FreeTypeVariables()...)
	}
	return uniqueVars(vars)
}

// TSlice is an unsized slice: [T].
type TSlice struct {
	Elem Type
}

func (t TSlice) String() string { return "[" + t.Elem.String() + "]" }
func (t TSlice) Apply(s Subst) Type { return TSlice{Elem: t.Elem.Apply(s)} }
func (t TSlice) FreeTypeVariables() []TVar { return t.Elem.FreeTypeVariables() }

// TArray is a fixed-size array: [T; N]. Len is kept as source text.
type TArray struct {
	Elem Type
	Len  string
}

func (t TArray) String() string { return "[" + t.Elem.String() + "; " + t.Len + "]" }
func (t TArray) Apply(s Subst) Type { return TArray{Elem: t.Elem.Apply(s), Len: t.Len} }
func (t TArray) FreeTypeVariables() []TVar { return t.Elem.FreeTypeVariables() }

// TLifetime is a lifetime used as a generic argument or object bound.
type TLifetime struct {
	Name string
}

func (t TLifetime) String() string { return t.Name }
func (t TLifetime) Apply(Subst) Type { return t }
func (t TLifetime) FreeTypeVariables() []TVar { return nil }

// TInfer is the underscore type. In patterns it matches anything.
type TInfer struct{}

func (TInfer) String() string { return "_" }
func (t TInfer) Apply(Subst) Type { return t }
func (TInfer) FreeTypeVariables() []TVar { return nil }

// TObject is a trait object or opaque type: dyn Error + 'static, impl Iterator<Item = u8>.
type TObject struct {
	Keyword string
	Bounds  []Type
}

func (t TObject) String() string {
	parts := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		parts[i] = b.String()
	}
	return t.Keyword + " " + strings.Join(parts, " + ")
}

func (t TObject) Apply(s Subst) Type {
	bounds := make([]Type, len(t.Bounds))
	for i, b := range t.Bounds {
		bounds[i] = b.Apply(s)
	}
	return TObject{Keyword: t.Keyword, Bounds: bounds}
}

func (t TObject) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, b := range t.Bounds {
		vars = append(vars, b.FreeTypeVariables()...)
	}
	return uniqueVars(vars)
}

// Unit is the empty tuple.
var Unit = TTuple{}

// IsUnit reports whether t is nil or the empty tuple.
func IsUnit(t Type) bool {
	if t == nil {
		return true
	}
	tt, ok := t.(TTuple)
	return ok && len(tt.Elements) == 0
}

// Equal compares two types by their canonical rendering.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// IsPlaceholderName reports whether name is spelled like a pattern
// placeholder: uppercase ASCII letters and digits, starting with a letter.
func IsPlaceholderName(name string) bool {
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// OptionElem returns the payload of Option<X>.
func OptionElem(t Type) (Type, bool) {
	app, ok := t.(TApp)
	if !ok || len(app.Args) != 1 {
		return nil, false
	}
	name := strings.TrimPrefix(strings.TrimPrefix(app.Constructor.Name, "std::option::"), "core::option::")
	if name != config.OptionTypeName {
		return nil, false
	}
	return app.Args[0], true
}

// SortTypes orders types by their rendering, for reproducible output.
func SortTypes(types []Type) {
	sort.SliceStable(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
}

func uniqueVars(vars []TVar) []TVar {
	if len(vars) < 2 {
		return vars
	}
	seen := make(map[string]bool, len(vars))
	out := vars[:0]
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	return out
}
