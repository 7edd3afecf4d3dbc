// Package compiler ties the phases together: parse, bind, lower, run the
// pass pipeline, generate. One Engine serves any number of documents; each
// Compile call is self-contained, so callers parallelize by compiling
// independent documents on their own goroutines.
package compiler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/walteh/go-razr/pkg/binder"
	"github.com/walteh/go-razr/pkg/codegen"
	"github.com/walteh/go-razr/pkg/descriptor"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/ir"
	"github.com/walteh/go-razr/pkg/passes"
	"github.com/walteh/go-razr/pkg/source"
	"github.com/walteh/go-razr/pkg/syntax"
)

type Engine struct {
	pipeline   *passes.Pipeline
	extensions map[string]codegen.ExtensionWriter
	cache      *descriptor.Cache
	binderOpts binder.Options
}

type Option func(*Engine)

// WithPipeline replaces the default pass pipeline.
func WithPipeline(p *passes.Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// WithExtension registers an extension writer on top of the defaults.
func WithExtension(kind string, w codegen.ExtensionWriter) Option {
	return func(e *Engine) { e.extensions[kind] = w }
}

// WithCache shares a descriptor cache across engines.
func WithCache(c *descriptor.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithBinderOptions overrides binder defaults such as the opt-out prefix.
func WithBinderOptions(opts binder.Options) Option {
	return func(e *Engine) { e.binderOpts = opts }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		pipeline:   passes.Default(),
		extensions: map[string]codegen.ExtensionWriter{},
		cache:      descriptor.NewCache(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Cache exposes the engine's descriptor cache so manifest loaders can dedupe
// into it.
func (e *Engine) Cache() *descriptor.Cache {
	return e.cache
}

type CompileOptions struct {
	DesignTime bool
	// Namespace and ClassName override the generated package and type names;
	// empty picks defaults from the file name.
	Namespace string
	ClassName string
}

// Result is one completed compilation. Diagnostics merges every phase's
// collection in deterministic order; Output is present even when the
// template has errors.
type Result struct {
	ID          uuid.UUID
	Tree        *syntax.Tree
	Bindings    *binder.Result
	IR          *ir.Document
	Output      *codegen.Output
	Diagnostics diagnostic.Collection
}

// Compile runs every phase over one document. Template problems land in
// Result.Diagnostics; a non-nil error means the compilation itself could not
// proceed (cancellation, or a broken pass/extension).
func (e *Engine) Compile(ctx context.Context, doc *source.Document, helpers []*descriptor.TagHelper, opts CompileOptions) (*Result, error) {
	id := uuid.New()
	log := zerolog.Ctx(ctx).With().
		Stringer("compilation", id).
		Str("file", doc.FilePath()).
		Logger()
	start := time.Now()

	deduped := make([]*descriptor.TagHelper, len(helpers))
	for i, h := range helpers {
		deduped[i] = e.cache.GetOrAdd(h)
	}

	res := &Result{ID: id}
	var errs error

	phase := func(name string, f func() error) bool {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, errors.Errorf("canceled before %s: %w", name, err))
			return false
		}
		t := time.Now()
		if err := f(); err != nil {
			errs = multierr.Append(errs, errors.Errorf("%s: %w", name, err))
			return false
		}
		log.Trace().Str("phase", name).Dur("took", time.Since(t)).Msg("phase complete")
		return true
	}

	ok := phase("parse", func() error {
		res.Tree = syntax.Parse(ctx, doc, syntax.ParseOptions{DirectiveKeywords: ir.Keywords()})
		return nil
	})
	ok = ok && phase("bind", func() error {
		var err error
		res.Bindings, err = binder.Bind(ctx, res.Tree, deduped, e.binderOpts)
		return err
	})
	ok = ok && phase("lower", func() error {
		var err error
		res.IR, err = ir.Lower(ctx, res.Tree, res.Bindings, ir.Options{
			Namespace:  opts.Namespace,
			ClassName:  opts.ClassName,
			DesignTime: opts.DesignTime,
		})
		return err
	})
	ok = ok && phase("passes", func() error {
		return e.pipeline.Run(ctx, res.IR)
	})
	ok = ok && phase("generate", func() error {
		var err error
		res.Output, err = codegen.Generate(ctx, res.IR, codegen.Options{Extensions: e.extensions})
		return err
	})
	if !ok {
		return nil, errs
	}

	res.Diagnostics.Extend(&res.Tree.Diagnostics)
	res.Diagnostics.Extend(&res.Bindings.Diagnostics)
	res.Diagnostics.Extend(&res.IR.Diagnostics)
	res.Diagnostics.Extend(&res.Output.Diagnostics)
	res.Diagnostics.Sort()

	log.Debug().
		Dur("took", time.Since(start)).
		Int("diagnostics", res.Diagnostics.Len()).
		Bool("design_time", opts.DesignTime).
		Msg("compiled")
	return res, nil
}
