package pipeline

import (
	"go.uber.org/zap"

	"github.com/funvibe/shapeshift/internal/assembler"
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/blueprint"
	"github.com/funvibe/shapeshift/internal/constraints"
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/linker"
	"github.com/funvibe/shapeshift/internal/matcher"
)

// PipelineContext carries one invocation through the stages. Each stage
// fills in its own phase value and never rewrites an earlier one.
type PipelineContext struct {
	FilePath string
	Union    *ast.UnionDecl
	Resolver blueprint.Resolver
	Logger   *zap.Logger

	Pattern    *ast.ShapePattern
	Collector  *constraints.Collector
	Matched    *matcher.Result
	Linked     *linker.Linked
	Blueprints []*blueprint.Blueprint
	Output     *assembler.Output

	Errors []*diagnostics.DiagnosticError
	Err    error // aggregated diagnostic, set by the assembler
}

func NewPipelineContext(union *ast.UnionDecl, resolver blueprint.Resolver) *PipelineContext {
	return &PipelineContext{
		Union:     union,
		Resolver:  resolver,
		Logger:    zap.NewNop(),
		Collector: constraints.NewCollector(),
	}
}

// AddErrors records errs, stamping the context file on errors without one.
func (ctx *PipelineContext) AddErrors(errs ...*diagnostics.DiagnosticError) {
	for _, err := range errs {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}
}

func (ctx *PipelineContext) log() *zap.Logger {
	if ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}
