// Package codegen turns an IR document into Go source plus the source
// mappings editors need to project positions back into the template.
package codegen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/ir"
	"github.com/walteh/go-razr/pkg/source"
)

// Output is the result of generation. Code is always present, even when
// diagnostics were raised: missing pieces are skipped, not fatal.
type Output struct {
	Code        string
	Mappings    []SourceMapping
	Diagnostics diagnostic.Collection
}

// ExtensionWriter renders one extension node. Writers recurse into nested
// content through Context.WriteNodes.
type ExtensionWriter func(c *Context, n *ir.Node) error

type Options struct {
	// Extensions maps extension kinds to writers, on top of the defaults.
	Extensions map[string]ExtensionWriter
}

// Context is what extension writers see of the generator.
type Context struct {
	Writer   *Writer
	Document *ir.Document

	gen *generator
}

// WriteNodes renders nested IR nodes with the standard emitters.
func (c *Context) WriteNodes(nodes []*ir.Node) {
	for _, n := range nodes {
		c.gen.emitNode(n)
	}
}

func (c *Context) Diagnose(d diagnostic.Diagnostic) {
	c.gen.diags.Add(d)
}

// DefaultExtensions returns the built-in extension writers.
func DefaultExtensions() map[string]ExtensionWriter {
	return map[string]ExtensionWriter{
		ir.TagHelperExtensionKind: writeTagHelperExtension,
	}
}

// Generate renders doc. Template-level problems surface as diagnostics in
// the output; only cancellation and broken extension writers return errors.
func Generate(ctx context.Context, doc *ir.Document, opts Options) (*Output, error) {
	extensions := DefaultExtensions()
	for kind, w := range opts.Extensions {
		extensions[kind] = w
	}

	g := &generator{
		w:          NewWriter(doc.Source),
		doc:        doc,
		extensions: extensions,
	}

	ns := doc.Namespace()
	class := doc.Class()
	method := doc.Method()
	if ns == nil || class == nil || method == nil {
		return nil, errors.New("document is missing its scaffold")
	}

	g.emitHeader(ns)
	g.emitImports(ns)
	g.emitClass(class)

	g.w.WriteLine(fmt.Sprintf("func (t *%s) %s(ctx context.Context, w io.Writer) error {", class.Name, method.Name))
	g.w.Indent()
	for _, n := range method.Children {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("generation canceled: %w", err)
		}
		g.emitNode(n)
	}
	g.w.WriteLine("return nil")
	g.w.Outdent()
	g.w.WriteLine("}")

	g.diags.Sort()
	out := &Output{
		Code:        g.w.String(),
		Mappings:    g.w.Mappings(),
		Diagnostics: g.diags,
	}
	zerolog.Ctx(ctx).Debug().
		Str("file", doc.Source.FilePath()).
		Int("bytes", len(out.Code)).
		Int("mappings", len(out.Mappings)).
		Msg("generated code")
	return out, nil
}

type generator struct {
	w          *Writer
	doc        *ir.Document
	diags      diagnostic.Collection
	extensions map[string]ExtensionWriter
}

func (g *generator) emitHeader(ns *ir.Node) {
	g.w.WriteLine("// Code generated by razr. DO NOT EDIT.")
	g.w.WriteLine("")
	g.w.WriteLine("package " + ns.Name)
	g.w.WriteLine("")
}

func (g *generator) emitImports(ns *ir.Node) {
	g.w.WriteLine("import (")
	g.w.Indent()
	g.w.WriteLine(`"context"`)
	g.w.WriteLine(`"io"`)
	if g.needsRuntime() {
		g.w.WriteLine("")
		g.w.WriteLine(`"github.com/walteh/go-razr/pkg/razr"`)
	}
	var usings []*ir.Node
	for _, c := range ns.Children {
		if c.Kind == ir.KindUsing {
			usings = append(usings, c)
		}
	}
	if len(usings) > 0 {
		g.w.WriteLine("")
		for _, u := range usings {
			g.w.WriteLine(strconv.Quote(u.Name))
		}
	}
	g.w.Outdent()
	g.w.WriteLine(")")
	g.w.WriteLine("")
}

func (g *generator) needsRuntime() bool {
	found := false
	g.doc.Root.Walk(func(n *ir.Node) bool {
		if n.Kind == ir.KindExpression || n.Kind == ir.KindExtension {
			found = true
			return false
		}
		return true
	})
	return found
}

func (g *generator) emitClass(class *ir.Node) {
	modelType := "any"
	if m := class.FirstChild(ir.KindModelDirective); m != nil && m.TypeName != "" {
		modelType = m.TypeName
	}

	g.w.WriteLine("type " + class.Name + " struct {")
	g.w.Indent()
	if class.TypeName != "" {
		g.w.WriteLine(class.TypeName)
	}
	g.w.WriteLine("Model " + modelType)
	for _, c := range class.Children {
		if c.Kind == ir.KindInjectDirective {
			g.w.WriteLine(c.MemberName + " " + c.TypeName)
		}
	}
	g.w.Outdent()
	g.w.WriteLine("}")
	g.w.WriteLine("")
}

func (g *generator) emitNode(n *ir.Node) {
	switch n.Kind {
	case ir.KindHTMLContent:
		g.w.Write("if _, err := io.WriteString(w, ")
		if n.Source != nil {
			g.w.WriteMapped(*n.Source, strconv.Quote(n.Content))
		} else {
			g.w.Write(strconv.Quote(n.Content))
		}
		g.w.WriteLine("); err != nil {")
		g.w.Indent()
		g.w.WriteLine("return err")
		g.w.Outdent()
		g.w.WriteLine("}")

	case ir.KindExpression:
		if g.doc.DesignTime && n.Source != nil {
			g.w.LinePragma(*n.Source)
		}
		g.w.Write("if err := razr.WriteEscaped(w, ")
		g.w.WriteMapped(sourceOf(n), n.Content)
		g.w.WriteLine("); err != nil {")
		g.w.Indent()
		g.w.WriteLine("return err")
		g.w.Outdent()
		g.w.WriteLine("}")

	case ir.KindStatement:
		if n.Source != nil {
			g.w.LinePragma(*n.Source)
			g.w.WriteMapped(*n.Source, n.Content)
			g.w.Write("\n")
		} else {
			g.w.WriteLine(n.Content)
		}

	case ir.KindExtension:
		g.emitExtension(n)

	case ir.KindComment, ir.KindSectionDirective, ir.KindPageDirective, ir.KindMalformedDirective:
		// no output
	}
}

func (g *generator) emitExtension(n *ir.Node) {
	kind := ""
	if n.Extension != nil {
		kind = n.Extension.ExtensionKind()
	}
	writer, ok := g.extensions[kind]
	if !ok {
		g.diags.Add(diagnostic.New(g.doc.Source, "RZ9001", diagnostic.Error,
			sourceOf(n), "no extension writer registered for kind "+strconv.Quote(kind)))
		return
	}
	if err := writer(&Context{Writer: g.w, Document: g.doc, gen: g}, n); err != nil {
		g.diags.Add(diagnostic.New(g.doc.Source, "RZ9002", diagnostic.Error,
			sourceOf(n), "extension writer "+strconv.Quote(kind)+" failed: "+err.Error()))
	}
}

// writeTagHelperExtension emits a runtime invocation for a bound element.
// The element body becomes a closure so helpers control whether and where
// content renders.
func writeTagHelperExtension(c *Context, n *ir.Node) error {
	ext, ok := n.Extension.(ir.TagHelperExtension)
	if !ok {
		return errors.Errorf("extension payload is %T, not TagHelperExtension", n.Extension)
	}
	w := c.Writer

	w.WriteLine("if err := razr.RunTagHelper(ctx, w, &razr.Invocation{")
	w.Indent()
	w.WriteLine(fmt.Sprintf("TagName: %q,", ext.Binding.TagName))

	w.Write("Helpers: []string{")
	for i, h := range ext.Binding.Helpers {
		if i > 0 {
			w.Write(", ")
		}
		w.Write(strconv.Quote(h.Name))
	}
	w.WriteLine("},")

	if len(ext.Binding.Attributes) > 0 {
		w.WriteLine("Attributes: []razr.Attribute{")
		w.Indent()
		for _, a := range ext.Binding.Attributes {
			w.WriteLine(fmt.Sprintf("{Name: %q, Value: %q, Bound: %t},", a.Name, a.Value, a.IsBound()))
		}
		w.Outdent()
		w.WriteLine("},")
	}

	w.WriteLine("Body: func(ctx context.Context, w io.Writer) error {")
	w.Indent()
	c.WriteNodes(ext.Body)
	w.WriteLine("return nil")
	w.Outdent()
	w.WriteLine("},")

	w.Outdent()
	w.WriteLine("}); err != nil {")
	w.Indent()
	w.WriteLine("return err")
	w.Outdent()
	w.WriteLine("}")
	return nil
}

func sourceOf(n *ir.Node) source.Span {
	if n.Source != nil {
		return *n.Source
	}
	return source.Span{}
}
