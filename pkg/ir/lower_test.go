package ir_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/go-razr/pkg/binder"
	"github.com/walteh/go-razr/pkg/descriptor"
	"github.com/walteh/go-razr/pkg/ir"
	"github.com/walteh/go-razr/pkg/source"
	"github.com/walteh/go-razr/pkg/syntax"
)

func lower(t *testing.T, text string, helpers ...*descriptor.TagHelper) *ir.Document {
	t.Helper()
	srcDoc := source.NewDocument(text, "views/home.razr", "views/home.razr")
	tree := syntax.Parse(context.Background(), srcDoc, syntax.ParseOptions{DirectiveKeywords: ir.Keywords()})
	bindings, err := binder.Bind(context.Background(), tree, helpers, binder.Options{})
	require.NoError(t, err)
	doc, err := ir.Lower(context.Background(), tree, bindings, ir.Options{})
	require.NoError(t, err)
	return doc
}

func methodChildren(t *testing.T, doc *ir.Document) []*ir.Node {
	t.Helper()
	m := doc.Method()
	require.NotNil(t, m)
	return m.Children
}

func ofKind(nodes []*ir.Node, kind ir.NodeKind) []*ir.Node {
	var out []*ir.Node
	for _, n := range nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestLowerScaffold(t *testing.T) {
	doc := lower(t, "<p>hi</p>")

	require.NotNil(t, doc.Namespace())
	assert.Equal(t, "templates", doc.Namespace().Name)
	require.NotNil(t, doc.Class())
	assert.Equal(t, "Home", doc.Class().Name)
	require.NotNil(t, doc.Method())
	assert.Equal(t, "Render", doc.Method().Name)
}

func TestMarkupBatching(t *testing.T) {
	doc := lower(t, "<div>one <b>two</b> three</div>")

	kids := methodChildren(t, doc)
	require.Len(t, kids, 1)
	assert.Equal(t, ir.KindHTMLContent, kids[0].Kind)
	assert.Equal(t, "<div>one <b>two</b> three</div>", kids[0].Content)
	require.NotNil(t, kids[0].Source)
	assert.Equal(t, source.NewSpan(0, len("<div>one <b>two</b> three</div>")), *kids[0].Source)
}

func TestExpressionBreaksBatch(t *testing.T) {
	text := "<p>Hello @user.Name!</p>"
	doc := lower(t, text)

	kids := methodChildren(t, doc)
	require.Len(t, kids, 3)
	assert.Equal(t, ir.KindHTMLContent, kids[0].Kind)
	assert.Equal(t, "<p>Hello ", kids[0].Content)
	assert.Equal(t, ir.KindExpression, kids[1].Kind)
	assert.Equal(t, "user.Name", kids[1].Content)
	assert.Equal(t, ir.KindHTMLContent, kids[2].Kind)
	assert.Equal(t, "!</p>", kids[2].Content)

	// the expression maps to its exact original range, sigil excluded
	require.NotNil(t, kids[1].Source)
	assert.Equal(t, "user.Name", doc.Source.SpanText(*kids[1].Source))
}

func TestCodeBlockStatements(t *testing.T) {
	doc := lower(t, "@{ count := 3 }<p>@count</p>")

	kids := methodChildren(t, doc)
	stmts := ofKind(kids, ir.KindStatement)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].Content, "count := 3")

	exprs := ofKind(kids, ir.KindExpression)
	require.Len(t, exprs, 1)
	assert.Equal(t, "count", exprs[0].Content)
}

func TestBoundElementBecomesExtension(t *testing.T) {
	email, err := descriptor.NewBuilder(descriptor.KindTagHelper, "EmailTagHelper", "app").
		Rule(descriptor.TagMatchingRule{TagName: "email"}).
		Build()
	require.NoError(t, err)

	doc := lower(t, `<div><email address="x">body</email></div>`, email)

	kids := methodChildren(t, doc)
	require.Len(t, kids, 3)
	assert.Equal(t, "<div>", kids[0].Content)
	assert.Equal(t, "</div>", kids[2].Content)

	require.Equal(t, ir.KindExtension, kids[1].Kind)
	ext, ok := kids[1].Extension.(ir.TagHelperExtension)
	require.True(t, ok)
	assert.Equal(t, "email", ext.Binding.TagName)
	require.Len(t, ext.Body, 1)
	assert.Equal(t, "body", ext.Body[0].Content)
}

func TestOptOutMarkerStrippedFromOutput(t *testing.T) {
	doc := lower(t, "<!email>hi</!email>")

	kids := methodChildren(t, doc)
	require.Len(t, kids, 1)
	assert.Equal(t, "<email>hi</email>", kids[0].Content)
}

func TestDoctypePassesThrough(t *testing.T) {
	doc := lower(t, "<!DOCTYPE html>\n<p>x</p>")

	kids := methodChildren(t, doc)
	require.Len(t, kids, 1)
	assert.Equal(t, "<!DOCTYPE html>\n<p>x</p>", kids[0].Content)
}

func TestDirectiveLowering(t *testing.T) {
	doc := lower(t, "@model Person\n@inject Clock clock\n@using fmt\n@page\n<p>hi</p>")
	require.False(t, doc.Diagnostics.HasErrors())

	kids := methodChildren(t, doc)

	models := ofKind(kids, ir.KindModelDirective)
	require.Len(t, models, 1)
	assert.Equal(t, "Person", models[0].TypeName)

	injects := ofKind(kids, ir.KindInjectDirective)
	require.Len(t, injects, 1)
	assert.Equal(t, "Clock", injects[0].TypeName)
	assert.Equal(t, "clock", injects[0].MemberName)

	usings := ofKind(kids, ir.KindUsing)
	require.Len(t, usings, 1)
	assert.Equal(t, "fmt", usings[0].Name)

	require.Len(t, ofKind(kids, ir.KindPageDirective), 1)
}

func TestMalformedDirectiveArgs(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"model_without_type", "@model\n"},
		{"inject_missing_member", "@inject OnlyType\n"},
		{"page_with_args", "@page extra\n"},
		{"namespace_two_names", "@namespace a b\n"},
		{"section_non_identifier", "@section 9lives\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := lower(t, tt.text)
			items := doc.Diagnostics.Items()
			require.Len(t, items, 1)
			assert.Equal(t, "RZ3002", items[0].Code)
		})
	}
}

func TestUnknownDirectiveKeyword(t *testing.T) {
	srcDoc := source.NewDocument("@custom x\n", "t.razr", "t.razr")
	keywords := append(ir.Keywords(), "custom")
	tree := syntax.Parse(context.Background(), srcDoc, syntax.ParseOptions{DirectiveKeywords: keywords})
	bindings, err := binder.Bind(context.Background(), tree, nil, binder.Options{})
	require.NoError(t, err)

	doc, err := ir.Lower(context.Background(), tree, bindings, ir.Options{})
	require.NoError(t, err)

	items := doc.Diagnostics.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "RZ3001", items[0].Code)
	require.Len(t, ofKind(methodChildren(t, doc), ir.KindMalformedDirective), 1)
}

func TestDirectiveRegistry(t *testing.T) {
	d, ok := ir.Lookup("model")
	require.True(t, ok)
	assert.Equal(t, ir.KindModelDirective, d.Kind)

	_, ok = ir.Lookup("nope")
	assert.False(t, ok)

	assert.ElementsMatch(t, syntax.DefaultDirectiveKeywords, ir.Keywords())
}
