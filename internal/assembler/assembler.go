// Package assembler merges the union, the linked bounds and the synthesized
// implementations into the final output of an invocation.
package assembler

import (
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/blueprint"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/linker"
)

// Output is the augmented union with one implementation per blueprint.
type Output struct {
	Union      *ast.UnionDecl
	Impls      []*ast.ImplBlock
	Blueprints []*blueprint.Blueprint
}

// Assemble produces output only when errs is empty. Otherwise it returns a
// single *diagnostics.AggregateError holding errs in order.
func Assemble(union *ast.UnionDecl, linked *linker.Linked, bps []*blueprint.Blueprint, errs []*diagnostics.DiagnosticError) (*Output, error) {
	if err := diagnostics.Aggregate(union.Name, errs); err != nil {
		return nil, err
	}

	var bounds []*ast.Predicate
	if linked != nil {
		bounds = linked.Bounds
	}
	out := &Output{Union: union.WithBounds(bounds), Blueprints: bps}
	for _, bp := range bps {
		out.Impls = append(out.Impls, blueprint.Impl(bp, out.Union))
	}
	return out, nil
}
