package ast

import (
	"strings"

	"github.com/funvibe/shapeshift/internal/typesystem"
)

// ArmPattern destructures one variant in a synthesized match arm.
type ArmPattern struct {
	Union    string
	Variant  string
	Kind     GroupKind
	Elements []string // positional patterns, or `key: binding` for named groups
	Rest     bool
}

func (p ArmPattern) String() string {
	path := p.Union + "::" + p.Variant
	elems := append([]string(nil), p.Elements...)
	if p.Rest {
		elems = append(elems, "..")
	}
	switch p.Kind {
	case GroupUnnamed:
		return path + "(" + strings.Join(elems, ", ") + ")"
	case GroupNamed:
		if len(elems) == 0 {
			return path + " {}"
		}
		return path + " { " + strings.Join(elems, ", ") + " }"
	}
	return path
}

// Expr is the body of a synthesized match arm.
type Expr interface {
	String() string
}

// MethodCallExpr is `receiver.method(args...)`.
type MethodCallExpr struct {
	Receiver string
	Method   string
	Args     []string
}

func (e *MethodCallExpr) String() string {
	return e.Receiver + "." + e.Method + "(" + strings.Join(e.Args, ", ") + ")"
}

// RawExpr is an expression kept as text (default values, aborts).
type RawExpr struct {
	Text string
}

func (e *RawExpr) String() string { return e.Text }

type MatchArm struct {
	Pattern  ArmPattern
	Body     Expr
	Fallback bool // synthesized default for a variant without a target field
}

type ImplMethod struct {
	Sig       *MethodSig
	Scrutinee string
	Arms      []*MatchArm
}

// ImplBlock is a synthesized capability implementation for a union.
type ImplBlock struct {
	Generics   []*GenericParam
	Trait      typesystem.Type
	SelfType   typesystem.Type
	Where      []*Predicate
	AssocTypes []typesystem.AssocBinding
	Methods    []*ImplMethod
}
