package pipeline

import (
	"go.uber.org/zap"

	"github.com/funvibe/shapeshift/internal/assembler"
	"github.com/funvibe/shapeshift/internal/blueprint"
	"github.com/funvibe/shapeshift/internal/linker"
	"github.com/funvibe/shapeshift/internal/matcher"
	"github.com/funvibe/shapeshift/internal/parser"
)

type ParseStage struct{}

func (s *ParseStage) Process(ctx *PipelineContext) *PipelineContext {
	pattern, errs := parser.ParsePattern(ctx.Union.Pattern, ctx.Union.PatternToken)
	ctx.AddErrors(errs...)
	if len(errs) == 0 {
		ctx.Pattern = pattern
	}
	ctx.log().Debug("parsed pattern",
		zap.String("pattern", ctx.Union.Pattern),
		zap.Int("alternatives", len(pattern.Alternatives)),
		zap.Int("errors", len(errs)))
	return ctx
}

// MatchStage needs a pattern that parsed cleanly; a partial pattern would
// only report spurious mismatches.
type MatchStage struct{}

func (s *MatchStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Pattern == nil {
		return ctx
	}
	res, errs := matcher.Match(ctx.Pattern, ctx.Union, ctx.Collector)
	ctx.AddErrors(errs...)
	ctx.Matched = res
	ctx.log().Debug("matched variants",
		zap.Int("variants", len(ctx.Union.Variants)),
		zap.Int("matched", len(res.Matches)),
		zap.Strings("placeholders", ctx.Collector.Placeholders()))
	return ctx
}

type LinkStage struct{}

func (s *LinkStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Matched == nil {
		return ctx
	}
	linked, errs := linker.Link(ctx.Matched, ctx.log())
	ctx.AddErrors(errs...)
	ctx.Linked = linked
	return ctx
}

type BuildStage struct{}

func (s *BuildStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Linked == nil || ctx.Resolver == nil {
		return ctx
	}
	bps, errs := blueprint.Build(ctx.Linked, ctx.Resolver)
	ctx.AddErrors(errs...)
	ctx.Blueprints = bps
	for _, bp := range bps {
		ctx.log().Debug("built blueprint",
			zap.String("capability", bp.Key),
			zap.Int("methods", len(bp.Methods)))
	}
	return ctx
}

type AssembleStage struct{}

func (s *AssembleStage) Process(ctx *PipelineContext) *PipelineContext {
	out, err := assembler.Assemble(ctx.Union, ctx.Linked, ctx.Blueprints, ctx.Errors)
	ctx.Output = out
	ctx.Err = err
	return ctx
}
