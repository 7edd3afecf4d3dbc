package generate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/go-razr/pkg/compiler"
	"github.com/walteh/go-razr/pkg/descriptor"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
)

type Handler struct {
	patterns   []string
	manifest   string
	designTime bool
	ext        string
	outSuffix  string
	namespace  string
}

func NewGenerateCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "generate [glob...]",
		Short: "compile razr templates to Go source",
	}

	cmd.Flags().StringVar(&me.manifest, "manifest", "", "tag helper manifest file (HCL or YAML)")
	cmd.Flags().BoolVar(&me.designTime, "design-time", false, "generate design-time output")
	cmd.Flags().StringVar(&me.ext, "ext", ".razr", "template extension used when an argument is a directory")
	cmd.Flags().StringVar(&me.outSuffix, "out-suffix", ".go", "suffix appended to each template path for the generated file")
	cmd.Flags().StringVar(&me.namespace, "package", "", "package name of the generated code (default: derived, or @namespace)")
	cmd.Args = cobra.MinimumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.patterns = args
		return me.Run(cmd.Context(), afero.NewOsFs())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, fs afero.Fs) error {
	log := zerolog.Ctx(ctx)

	cache := descriptor.NewCache()
	var helpers []*descriptor.TagHelper
	if me.manifest != "" {
		manifest, err := LoadManifest(fs, me.manifest)
		if err != nil {
			return errors.Errorf("loading manifest: %w", err)
		}
		helpers, err = manifest.Build(cache)
		if err != nil {
			return errors.Errorf("building descriptors: %w", err)
		}
	}

	files, err := me.expandPatterns(fs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no template files matched")
	}
	log.Info().Int("files", len(files)).Int("helpers", len(helpers)).Msg("generating")

	engine := compiler.New(compiler.WithCache(cache))

	// documents are independent, so compile them in parallel; failures are
	// collected per file instead of aborting the batch
	var mu sync.Mutex
	var failures *multierror.Error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := me.generateFile(gctx, fs, engine, helpers, file); err != nil {
				mu.Lock()
				failures = multierror.Append(failures, errors.Errorf("%s: %w", file, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return failures.ErrorOrNil()
}

func (me *Handler) expandPatterns(fs afero.Fs) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	iofs := afero.NewIOFS(fs)
	for _, pattern := range me.patterns {
		if ok, _ := afero.IsDir(fs, pattern); ok {
			pattern = strings.TrimSuffix(pattern, "/") + "/**/*" + me.ext
		}
		matches, err := doublestar.Glob(iofs, pattern)
		if err != nil {
			return nil, errors.Errorf("bad glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (me *Handler) generateFile(ctx context.Context, fs afero.Fs, engine *compiler.Engine, helpers []*descriptor.TagHelper, file string) error {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return errors.Errorf("reading template: %w", err)
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	doc := source.NewDocument(string(data), abs, file)

	res, err := engine.Compile(ctx, doc, helpers, compiler.CompileOptions{
		DesignTime: me.designTime,
		Namespace:  me.namespace,
	})
	if err != nil {
		return err
	}

	if res.Diagnostics.Len() > 0 {
		text, ferr := diagnostic.NewTextFormatter().Format(&res.Diagnostics)
		if ferr == nil {
			os.Stderr.Write(text)
		}
	}

	outPath := file + me.outSuffix
	if err := afero.WriteFile(fs, outPath, []byte(res.Output.Code), 0o644); err != nil {
		return errors.Errorf("writing output: %w", err)
	}

	mapPath := file + ".map.json"
	mapData, err := json.MarshalIndent(res.Output.Mappings, "", "  ")
	if err != nil {
		return errors.Errorf("encoding source map: %w", err)
	}
	if err := afero.WriteFile(fs, mapPath, mapData, 0o644); err != nil {
		return errors.Errorf("writing source map: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("template", file).
		Str("out", outPath).
		Int("diagnostics", res.Diagnostics.Len()).
		Msg("generated")
	return nil
}
