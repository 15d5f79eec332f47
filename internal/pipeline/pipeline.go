package pipeline

// Processor is one stage of a synthesis invocation.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Default is parse, match, link, build, assemble.
func Default() *Pipeline {
	return New(&ParseStage{}, &MatchStage{}, &LinkStage{}, &BuildStage{}, &AssembleStage{})
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors: later stages skip themselves when their input
		// is missing, and the assembler turns everything into one diagnostic.
	}
	return ctx
}
