package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/shapeshift/internal/token"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

// TokenProvider is implemented by every node that can be located in source.
type TokenProvider interface {
	GetToken() token.Token
}

// GroupKind is the shape of a field group, on either side of a match.
type GroupKind int

const (
	GroupUnit GroupKind = iota
	GroupUnnamed
	GroupNamed
)

func (k GroupKind) String() string {
	switch k {
	case GroupUnnamed:
		return "unnamed"
	case GroupNamed:
		return "named"
	}
	return "unit"
}

type SlotKind int

const (
	SlotConcrete    SlotKind = iota // i32, Vec<String>
	SlotWildcard                    // _
	SlotPlaceholder                 // T
	SlotStructural                  // Vec<T>, &_
)

// Slot is one position (or key) of a pattern group.
type Slot struct {
	Token token.Token
	Key   string // named groups only
	Type  typesystem.Type
	Kind  SlotKind
}

func (s *Slot) GetToken() token.Token { return s.Token }

func (s *Slot) String() string {
	if s.Key != "" {
		return s.Key + ": " + s.Type.String()
	}
	return s.Type.String()
}

// Variadic is the trailing `..` (or `..N`) of a group.
type Variadic struct {
	Token   token.Token
	Min     int // minimum number of extra fields, range markers only
	IsRange bool
}

func (v *Variadic) String() string {
	if v.IsRange {
		return ".." + strconv.Itoa(v.Min)
	}
	return ".."
}

type PatternGroup struct {
	Token    token.Token
	Kind     GroupKind
	Slots    []*Slot
	Variadic *Variadic
}

func (g *PatternGroup) GetToken() token.Token { return g.Token }

// Arity is the number of non-variadic slots.
func (g *PatternGroup) Arity() int { return len(g.Slots) }

// MinFields is the smallest field count a variant needs to match g.
func (g *PatternGroup) MinFields() int {
	if g.Variadic != nil {
		return len(g.Slots) + g.Variadic.Min
	}
	return len(g.Slots)
}

func (g *PatternGroup) String() string {
	parts := make([]string, 0, len(g.Slots)+1)
	for _, s := range g.Slots {
		parts = append(parts, s.String())
	}
	if g.Variadic != nil {
		parts = append(parts, g.Variadic.String())
	}
	switch g.Kind {
	case GroupUnnamed:
		return "(" + strings.Join(parts, ", ") + ")"
	case GroupNamed:
		if len(parts) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return "unit"
}

type Alternative struct {
	Token  token.Token
	Marker bool // leading `$`, accepted and ignored
	Group  *PatternGroup
}

func (a *Alternative) GetToken() token.Token { return a.Token }

func (a *Alternative) String() string {
	if a.Marker {
		return "$" + a.Group.String()
	}
	return a.Group.String()
}

// ShapePattern is a parsed pattern: alternatives plus an optional constraint
// clause.
type ShapePattern struct {
	Token        token.Token
	Source       string
	Alternatives []*Alternative
	Where        *WhereClause
}

func (p *ShapePattern) GetToken() token.Token { return p.Token }

func (p *ShapePattern) String() string {
	alts := make([]string, len(p.Alternatives))
	for i, a := range p.Alternatives {
		alts[i] = a.String()
	}
	out := strings.Join(alts, " | ")
	if p.Where != nil && len(p.Where.Predicates) > 0 {
		out += " " + p.Where.String()
	}
	return out
}

// AlternativeList renders every alternative, for diagnostics.
func (p *ShapePattern) AlternativeList() string {
	alts := make([]string, len(p.Alternatives))
	for i, a := range p.Alternatives {
		alts[i] = "`" + a.Group.String() + "`"
	}
	return strings.Join(alts, ", ")
}

type WhereClause struct {
	Token      token.Token
	Predicates []*Predicate
}

func (w *WhereClause) String() string {
	preds := make([]string, len(w.Predicates))
	for i, p := range w.Predicates {
		preds[i] = p.String()
	}
	return "where " + strings.Join(preds, ", ")
}

type PredicateKind int

const (
	PredicateType     PredicateKind = iota // T: Clone
	PredicateLifetime                      // 'a: 'b
)

type Predicate struct {
	Token   token.Token
	Kind    PredicateKind
	Bounded typesystem.Type
	Bounds  []*Bound
}

func (p *Predicate) GetToken() token.Token { return p.Token }

func (p *Predicate) String() string {
	bounds := make([]string, len(p.Bounds))
	for i, b := range p.Bounds {
		bounds[i] = b.String()
	}
	return p.Bounded.String() + ": " + strings.Join(bounds, " + ")
}

// IsPlaceholder reports whether the bounded entity is a pattern placeholder.
func (p *Predicate) IsPlaceholder() bool {
	_, ok := p.Bounded.(typesystem.TVar)
	return ok
}

type BoundKind int

const (
	BoundTrait BoundKind = iota
	BoundLifetime
)

// Bound is one `+`-separated requirement of a predicate.
type Bound struct {
	Token    token.Token
	Kind     BoundKind
	Forward  bool // `^`: synthesize a dispatch implementation
	Relaxed  bool // `?Sized`
	Trait    typesystem.TApp
	Lifetime string
}

func (b *Bound) GetToken() token.Token { return b.Token }

func (b *Bound) String() string {
	if b.Kind == BoundLifetime {
		return b.Lifetime
	}
	var sb strings.Builder
	if b.Forward {
		sb.WriteString("^")
	}
	if b.Relaxed {
		sb.WriteString("?")
	}
	sb.WriteString(b.Trait.String())
	return sb.String()
}

// Plain returns a copy of b without the forwarding marker.
func (b *Bound) Plain() *Bound {
	cp := *b
	cp.Forward = false
	return &cp
}

// Normalized is the identity of a bound for deduplication: the trait with
// its generic arguments, associated-type assignments stripped.
func (b *Bound) Normalized() string {
	if b.Kind == BoundLifetime {
		return b.Lifetime
	}
	return b.Trait.WithoutBindings().String()
}

// TraitName returns the trait path of the bound.
func (b *Bound) TraitName() string { return b.Trait.Constructor.Name }
