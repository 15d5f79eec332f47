// Package constraints accumulates, for one synthesis invocation, which
// concrete types each pattern placeholder was bound to and where every
// matched field lives.
package constraints

import (
	"sort"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// FieldRef locates a matched field inside the union.
type FieldRef struct {
	VariantIndex int
	Variant      string
	Kind         ast.GroupKind
	Position     int    // index in the variant's field list
	Key          string // field name for named groups
	Arity        int    // number of fields in the variant
	Type         typesystem.Type
}

// Collector is append-only: bindings are never removed, so a lookup always
// includes every type recorded before it.
type Collector struct {
	bindings      map[string]map[string]typesystem.Type
	byType        map[string][]FieldRef
	byPlaceholder map[string][]FieldRef
}

func NewCollector() *Collector {
	return &Collector{
		bindings:      make(map[string]map[string]typesystem.Type),
		byType:        make(map[string][]FieldRef),
		byPlaceholder: make(map[string][]FieldRef),
	}
}

// Record binds placeholder to t. Duplicate records are no-ops.
func (c *Collector) Record(placeholder string, t typesystem.Type) {
	set, ok := c.bindings[placeholder]
	if !ok {
		set = make(map[string]typesystem.Type)
		c.bindings[placeholder] = set
	}
	set[t.String()] = t
}

// Lookup returns every type bound to placeholder, sorted by rendering.
func (c *Collector) Lookup(placeholder string) []typesystem.Type {
	set := c.bindings[placeholder]
	out := make([]typesystem.Type, 0, len(set))
	for _, t := range set {
		out = append(out, t)
	}
	typesystem.SortTypes(out)
	return out
}

// Bound reports whether placeholder has at least one binding.
func (c *Collector) Bound(placeholder string) bool {
	return len(c.bindings[placeholder]) > 0
}

// Placeholders lists every bound placeholder, sorted.
func (c *Collector) Placeholders() []string {
	out := make([]string, 0, len(c.bindings))
	for p := range c.bindings {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RecordField registers a matched field under its concrete type and, when the
// pattern slot was a placeholder, under that placeholder.
func (c *Collector) RecordField(ref FieldRef, placeholder string) {
	key := ref.Type.String()
	c.byType[key] = appendRef(c.byType[key], ref)
	if placeholder != "" {
		c.byPlaceholder[placeholder] = appendRef(c.byPlaceholder[placeholder], ref)
	}
}

// FieldsOfType returns matched fields of type t in variant order.
func (c *Collector) FieldsOfType(t typesystem.Type) []FieldRef {
	return c.byType[t.String()]
}

// FieldsOfPlaceholder returns fields bound to placeholder in variant order.
func (c *Collector) FieldsOfPlaceholder(placeholder string) []FieldRef {
	return c.byPlaceholder[placeholder]
}

// appendRef keeps refs ordered by variant, then position, and drops exact
// duplicates.
func appendRef(refs []FieldRef, ref FieldRef) []FieldRef {
	for _, r := range refs {
		if r.VariantIndex == ref.VariantIndex && r.Position == ref.Position {
			return refs
		}
	}
	refs = append(refs, ref)
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].VariantIndex != refs[j].VariantIndex {
			return refs[i].VariantIndex < refs[j].VariantIndex
		}
		return refs[i].Position < refs[j].Position
	})
	return refs
}
