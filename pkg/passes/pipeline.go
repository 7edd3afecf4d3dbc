// Package passes runs ordered rewrites over an IR document. Passes mutate
// the document in place and report template problems as diagnostics; an
// error return from a pass means the pipeline itself is broken and aborts
// the run.
package passes

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/go-razr/pkg/ir"
)

type Pass interface {
	// Order positions the pass in the pipeline; lower runs first. Passes
	// with equal order keep registration order.
	Order() int
	Name() string
	Execute(ctx context.Context, doc *ir.Document) error
}

type Pipeline struct {
	passes []Pass
}

func NewPipeline(passes ...Pass) *Pipeline {
	p := &Pipeline{}
	for _, pass := range passes {
		p.Register(pass)
	}
	return p
}

// Default returns the standard pipeline.
func Default() *Pipeline {
	return NewPipeline(
		DirectiveClassifierPass{},
		ModelInheritsPass{},
		InjectPass{},
		DesignTimePass{},
		MarkupMergePass{},
	)
}

func (p *Pipeline) Register(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run executes every pass in order, strictly sequentially.
func (p *Pipeline) Run(ctx context.Context, doc *ir.Document) error {
	sorted := make([]Pass, len(p.passes))
	copy(sorted, p.passes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order() < sorted[j].Order() })

	log := zerolog.Ctx(ctx)
	for _, pass := range sorted {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("pass pipeline canceled before %s: %w", pass.Name(), err)
		}
		if err := pass.Execute(ctx, doc); err != nil {
			return errors.Errorf("pass %s: %w", pass.Name(), err)
		}
		log.Trace().Str("pass", pass.Name()).Int("order", pass.Order()).Msg("pass executed")
	}
	return nil
}
