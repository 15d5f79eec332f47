// Package synth is the entry point of the shape-pattern synthesizer: it owns
// a capability registry and runs the parse, match, link, build and assemble
// stages for each union.
package synth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/funvibe/shapeshift/internal/assembler"
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/capability"
	"github.com/funvibe/shapeshift/internal/metrics"
	"github.com/funvibe/shapeshift/internal/pipeline"
	"github.com/funvibe/shapeshift/internal/prettyprinter"
)

// Engine synthesizes forwarding implementations. It is safe for concurrent
// use; the registry is the only shared state.
type Engine struct {
	registry *capability.Registry
	logger   *zap.Logger
	metrics  *metrics.Collector
	builtins bool
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics reports invocations and registrations to c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithoutBuiltins starts with an empty capability catalog.
func WithoutBuiltins() Option {
	return func(e *Engine) { e.builtins = false }
}

func New(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop(), builtins: true}
	for _, opt := range opts {
		opt(e)
	}
	regOpts := []capability.Option{capability.WithLogger(e.logger.Named("registry"))}
	if e.metrics != nil {
		regOpts = append(regOpts, capability.WithObserver(e.metrics))
	}
	if !e.builtins {
		regOpts = append(regOpts, capability.WithoutBuiltins())
	}
	e.registry = capability.NewRegistry(regOpts...)
	if e.metrics != nil {
		e.metrics.RegistrySize(e.registry.Len())
	}
	return e
}

func (e *Engine) Registry() *capability.Registry {
	return e.registry
}

// Register makes decl resolvable by later Synthesize calls. A union
// processed before the registration cannot forward to it.
func (e *Engine) Register(decl *ast.CapabilityDecl) {
	e.registry.Register(decl)
}

// Synthesize runs one invocation for union. On failure the error is a
// *diagnostics.AggregateError listing every diagnostic, and no output is
// returned.
func (e *Engine) Synthesize(union *ast.UnionDecl) (*assembler.Output, error) {
	return e.SynthesizeFile("", union)
}

// SynthesizeFile is Synthesize with diagnostics attributed to file.
func (e *Engine) SynthesizeFile(file string, union *ast.UnionDecl) (*assembler.Output, error) {
	id := uuid.NewString()
	logger := e.logger.With(zap.String("invocation", id), zap.String("union", union.Name))
	start := time.Now()

	ctx := pipeline.NewPipelineContext(union, e.registry)
	ctx.FilePath = file
	ctx.Logger = logger
	ctx = pipeline.Default().Run(ctx)

	elapsed := time.Since(start)
	blueprints := 0
	if ctx.Output != nil {
		blueprints = len(ctx.Output.Impls)
	}
	e.metrics.RecordInvocation(elapsed, blueprints, ctx.Err)

	if ctx.Err != nil {
		logger.Info("synthesis failed",
			zap.Int("diagnostics", len(ctx.Errors)),
			zap.Duration("elapsed", elapsed))
		return nil, ctx.Err
	}
	logger.Info("synthesis finished",
		zap.Int("implementations", blueprints),
		zap.Duration("elapsed", elapsed))
	return ctx.Output, nil
}

// Render prints out as host source, preceded by header.
func Render(header string, out *assembler.Output) string {
	p := prettyprinter.NewCodePrinter()
	p.PrintFile(header, out.Union, out.Impls)
	return p.String()
}

// RenderAll prints several outputs into one file with a single header.
func RenderAll(header string, outs []*assembler.Output) string {
	var b strings.Builder
	for i, out := range outs {
		h := ""
		if i == 0 {
			h = header
		} else {
			b.WriteString("\n")
		}
		b.WriteString(Render(h, out))
	}
	return b.String()
}
