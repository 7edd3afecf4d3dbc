package get_diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/go-razr/cmd/razr/generate"
	"github.com/walteh/go-razr/pkg/compiler"
	"github.com/walteh/go-razr/pkg/descriptor"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
)

type Handler struct {
	patterns []string
	manifest string
	format   string // vscode, text
}

func NewGetDiagnosticsCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-diagnostics [glob...]",
		Short: "compile razr templates and report their diagnostics",
	}

	cmd.Flags().StringVar(&me.manifest, "manifest", "", "tag helper manifest file (HCL or YAML)")
	cmd.Flags().StringVar(&me.format, "format", "vscode", "output format (vscode, text)")
	cmd.Args = cobra.MinimumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.patterns = args
		return me.Run(cmd.Context(), afero.NewOsFs())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, fs afero.Fs) error {
	cache := descriptor.NewCache()
	var helpers []*descriptor.TagHelper
	if me.manifest != "" {
		manifest, err := generate.LoadManifest(fs, me.manifest)
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

	engine := compiler.New(compiler.WithCache(cache))
	var all diagnostic.Collection
	for _, file := range files {
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			return errors.Errorf("reading %s: %w", file, err)
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		doc := source.NewDocument(string(data), abs, file)
		res, err := engine.Compile(ctx, doc, helpers, compiler.CompileOptions{})
		if err != nil {
			return errors.Errorf("compiling %s: %w", file, err)
		}
		all.Extend(&res.Diagnostics)
	}
	all.Sort()

	switch me.format {
	case "vscode":
		out, err := diagnostic.NewVSCodeFormatter().Format(&all)
		if err != nil {
			return errors.Errorf("formatting diagnostics: %w", err)
		}
		fmt.Println(string(out))
	case "text":
		printColored(&all)
	default:
		return errors.Errorf("unknown format %q (want vscode or text)", me.format)
	}

	if all.HasErrors() {
		return errors.New("templates have errors")
	}
	return nil
}

func (me *Handler) expandPatterns(fs afero.Fs) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	iofs := afero.NewIOFS(fs)
	for _, pattern := range me.patterns {
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

func printColored(diags *diagnostic.Collection) {
	severityColor := map[diagnostic.DiagnosticSeverity]*color.Color{
		diagnostic.Error:   color.New(color.FgRed, color.Bold),
		diagnostic.Warning: color.New(color.FgYellow),
		diagnostic.Info:    color.New(color.FgCyan),
	}
	for _, d := range diags.Items() {
		c, ok := severityColor[d.Severity]
		if !ok {
			c = color.New(color.FgWhite)
		}
		fmt.Fprintf(os.Stdout, "%s:%d:%d: %s %s: %s\n",
			d.File, d.Range.Start.Line+1, d.Range.Start.Character+1,
			c.Sprint(string(d.Severity)), d.Code, d.Message)
	}
}
