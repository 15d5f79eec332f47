package synth

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/shapeshift/internal/assembler"
	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/manifest"
)

// Result is the outcome of one union of a batch.
type Result struct {
	Manifest *manifest.Manifest
	Union    string
	Output   *assembler.Output
	Err      error // aggregated diagnostics
}

// Batch processes manifests in two phases. Every capability of every
// manifest is registered first, so unions may forward to capabilities
// declared anywhere in the batch. Unions are then synthesized concurrently,
// at most limit at a time (limit <= 0 means no limit).
//
// Results follow manifest order, then union order. Diagnostics are
// reported per result; the returned error covers manifests that could not
// be turned into declarations and cancellation.
func (e *Engine) Batch(ctx context.Context, manifests []*manifest.Manifest, limit int) ([]*Result, error) {
	for _, m := range manifests {
		decls, err := m.CapabilityDecls()
		if err != nil {
			return nil, fmt.Errorf("loading capabilities: %w", err)
		}
		for _, d := range decls {
			e.Register(d)
		}
	}

	var (
		results []*Result
		decls   []*ast.UnionDecl
	)
	for _, m := range manifests {
		unions, err := m.UnionDecls()
		if err != nil {
			return nil, fmt.Errorf("loading unions: %w", err)
		}
		for _, u := range unions {
			results = append(results, &Result{Manifest: m, Union: u.Name})
			decls = append(decls, u)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range results {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := results[i]
			r.Output, r.Err = e.SynthesizeFile(r.Manifest.Path, decls[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Outputs returns the successful outputs of results that belong to m.
func Outputs(results []*Result, m *manifest.Manifest) []*assembler.Output {
	var outs []*assembler.Output
	for _, r := range results {
		if r.Manifest == m && r.Err == nil {
			outs = append(outs, r.Output)
		}
	}
	return outs
}
