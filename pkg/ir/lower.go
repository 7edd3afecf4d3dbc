package ir

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/go-razr/pkg/binder"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
	"github.com/walteh/go-razr/pkg/syntax"
)

type Options struct {
	// Namespace is the package of the generated code; empty means
	// "templates". An @namespace directive overrides it later.
	Namespace string
	// ClassName names the generated type; empty derives it from the file
	// name.
	ClassName string
	// MethodName names the render method; empty means "Render".
	MethodName string
	DesignTime bool
}

// Lower translates a parsed and bound tree into the IR scaffold. Contiguous
// plain markup is coalesced into single HTMLContent nodes; bound elements
// become extension nodes; directive arguments are validated against the
// registry's grammars. Lowering never fails on template content, only on
// cancellation.
func Lower(ctx context.Context, tree *syntax.Tree, bindings *binder.Result, opts Options) (*Document, error) {
	if opts.Namespace == "" {
		opts.Namespace = "templates"
	}
	if opts.ClassName == "" {
		opts.ClassName = deriveClassName(tree.Document.FilePath())
	}
	if opts.MethodName == "" {
		opts.MethodName = "Render"
	}

	doc := &Document{
		Source:     tree.Document,
		DesignTime: opts.DesignTime,
	}
	method := &Node{Kind: KindMethod, Name: opts.MethodName}
	class := &Node{Kind: KindClass, Name: opts.ClassName, Children: []*Node{method}}
	ns := &Node{Kind: KindNamespace, Name: opts.Namespace, Children: []*Node{class}}
	doc.Root = &Node{Kind: KindDocument, Children: []*Node{ns}}

	lw := &lowerer{doc: doc, bindings: bindings}
	tgt := &contentTarget{}
	for _, child := range tree.Root.Children {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("lowering canceled: %w", err)
		}
		lw.lowerNode(tgt, child)
	}
	tgt.flush()
	method.Children = tgt.nodes

	zerolog.Ctx(ctx).Debug().
		Str("file", tree.Document.FilePath()).
		Str("class", opts.ClassName).
		Int("diagnostics", doc.Diagnostics.Len()).
		Msg("lowered document")
	return doc, nil
}

type lowerer struct {
	doc      *Document
	bindings *binder.Result
}

// contentTarget collects the lowered children of one scope (the render
// method, or an extension body) and batches adjacent markup.
type contentTarget struct {
	nodes []*Node

	batch     strings.Builder
	batchSpan source.Span
	batching  bool
}

func (t *contentTarget) text(s string, span source.Span) {
	if s == "" {
		return
	}
	if !t.batching {
		t.batching = true
		t.batchSpan = span
	} else {
		t.batchSpan = t.batchSpan.Cover(span)
	}
	t.batch.WriteString(s)
}

func (t *contentTarget) flush() {
	if !t.batching {
		return
	}
	t.nodes = append(t.nodes, &Node{
		Kind:    KindHTMLContent,
		Content: t.batch.String(),
		Source:  spanPtr(t.batchSpan),
	})
	t.batch.Reset()
	t.batching = false
}

func (t *contentTarget) add(n *Node) {
	t.flush()
	t.nodes = append(t.nodes, n)
}

func (lw *lowerer) lowerNode(tgt *contentTarget, n *syntax.Node) {
	switch n.Kind {
	case syntax.KindMarkupText, syntax.KindMarkupComment:
		tgt.text(n.Text(), n.Span())

	case syntax.KindRazrComment:
		tgt.add(&Node{Kind: KindComment, Content: n.Text(), Source: spanPtr(n.Span())})

	case syntax.KindMarkupElement:
		lw.lowerElement(tgt, n)

	case syntax.KindCodeExpression:
		tgt.add(&Node{
			Kind:    KindExpression,
			Content: n.ExpressionCode(),
			Source:  spanPtr(n.ExpressionSpan()),
		})

	case syntax.KindCodeBlock:
		for _, c := range n.Children {
			switch c.Kind {
			case syntax.KindCodeStatement:
				tgt.add(&Node{
					Kind:    KindStatement,
					Content: c.StatementCode(),
					Source:  spanPtr(c.Span()),
				})
			case syntax.KindMarkupElement:
				lw.lowerElement(tgt, c)
			case syntax.KindMarkupEndTag:
				tgt.text(c.Text(), c.Span())
			}
			// the @{ and } tokens themselves produce no output
		}

	case syntax.KindDirective:
		lw.lowerDirective(tgt, n)

	case syntax.KindMarkupEndTag, syntax.KindMarkupStartTag:
		// stray tags that recovery left at content level render verbatim
		tgt.text(n.Text(), n.Span())

	case syntax.KindToken:
		tgt.text(n.Text(), n.Span())
	}
}

func (lw *lowerer) lowerElement(tgt *contentTarget, el *syntax.Node) {
	if eb := lw.bindings.ForNode(el); eb != nil {
		body := &contentTarget{}
		for _, c := range el.Content() {
			lw.lowerNode(body, c)
		}
		body.flush()
		tgt.add(&Node{
			Kind:   KindExtension,
			Source: spanPtr(el.Span()),
			Extension: TagHelperExtension{
				Binding: eb,
				Body:    body.nodes,
			},
		})
		return
	}

	// plain element: tags render verbatim (minus the opt-out marker) and the
	// body stays in the enclosing batch so contiguous markup coalesces
	if st := el.StartTag(); st != nil {
		tgt.text(stripOptOut(st.Text()), st.Span())
	}
	for _, c := range el.Content() {
		lw.lowerNode(tgt, c)
	}
	if et := el.EndTag(); et != nil {
		tgt.text(stripOptOut(et.Text()), et.Span())
	}
}

// stripOptOut removes the tag helper opt-out marker from a rendered tag.
// "<!doctype ...>" is not an opt-out and passes through.
func stripOptOut(tag string) string {
	if rest, ok := strings.CutPrefix(tag, "<!"); ok {
		if fields := strings.Fields(rest); len(fields) > 0 &&
			strings.EqualFold(strings.TrimSuffix(fields[0], ">"), "doctype") {
			return tag
		}
		return "<" + rest
	}
	if rest, ok := strings.CutPrefix(tag, "</!"); ok {
		return "</" + rest
	}
	return tag
}

func (lw *lowerer) lowerDirective(tgt *contentTarget, n *syntax.Node) {
	keyword := n.DirectiveKeyword()
	dir, ok := Lookup(keyword)
	if !ok {
		node := &Node{Kind: KindMalformedDirective, Name: keyword, Source: spanPtr(n.Span())}
		lw.doc.Diagnose(node, diagnostic.New(lw.doc.Source, "RZ3001", diagnostic.Error,
			n.Span(), "unknown directive @"+keyword))
		tgt.add(node)
		return
	}

	node := &Node{Kind: dir.Kind, Name: keyword, Source: spanPtr(n.Span())}
	args := n.DirectiveArgs()
	if diag := applyArgs(node, dir, args); diag != "" {
		lw.doc.Diagnose(node, diagnostic.New(lw.doc.Source, "RZ3002", diagnostic.Error,
			n.Span(), "@"+keyword+": "+diag))
	}
	tgt.add(node)
}

// applyArgs validates args against the directive's grammar and fills the
// node's payload fields; a non-empty return is the problem description.
func applyArgs(node *Node, dir Directive, args string) string {
	fields := strings.Fields(args)
	for _, kind := range dir.ArgKinds {
		switch kind {
		case ArgNone:
			if args != "" {
				return "takes no arguments"
			}
		case ArgTypeName:
			if args == "" {
				return "requires a type name"
			}
			node.TypeName = args
		case ArgNamespaceName:
			if len(fields) != 1 {
				return "requires exactly one name"
			}
			node.Name = fields[0]
		case ArgIdentifier:
			if len(fields) != 1 || !isIdentifier(fields[0]) {
				return "requires a single identifier"
			}
			node.Name = fields[0]
		case ArgMemberPair:
			if len(fields) != 2 {
				return "requires a type and a member name"
			}
			node.TypeName = fields[0]
			node.MemberName = fields[1]
		}
	}
	return ""
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}

// deriveClassName turns a template path into an exported Go type name:
// "views/home.razr" becomes "Home".
func deriveClassName(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	var sb strings.Builder
	upper := true
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || (sb.Len() > 0 && unicode.IsDigit(r)):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			sb.WriteRune(r)
		default:
			upper = true
		}
	}
	if sb.Len() == 0 {
		return "Template"
	}
	return sb.String()
}
