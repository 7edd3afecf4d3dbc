package passes

import (
	"context"
	"strings"

	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/ir"
	"github.com/walteh/go-razr/pkg/source"
)

// DirectiveClassifierPass hoists directives out of the render method into
// their scaffold slots: usings and the namespace override onto the namespace
// node, model and inherits onto the class node. A second @model is a warning
// and loses to the first.
type DirectiveClassifierPass struct{}

func (DirectiveClassifierPass) Order() int   { return 10 }
func (DirectiveClassifierPass) Name() string { return "directive-classifier" }

func (DirectiveClassifierPass) Execute(ctx context.Context, doc *ir.Document) error {
	method := doc.Method()
	ns := doc.Namespace()
	class := doc.Class()
	if method == nil || ns == nil || class == nil {
		return nil
	}

	moved := method.RemoveChildren(func(n *ir.Node) bool {
		switch n.Kind {
		case ir.KindUsing, ir.KindNamespaceDirective, ir.KindModelDirective, ir.KindInheritsDirective:
			return true
		}
		return false
	})

	var classKids []*ir.Node
	sawModel := false
	for _, n := range moved {
		switch n.Kind {
		case ir.KindUsing:
			ns.Append(n)
		case ir.KindNamespaceDirective:
			if n.Name != "" {
				ns.Name = n.Name
			}
		case ir.KindModelDirective:
			if sawModel {
				diag := diagnostic.New(doc.Source, "RZ3003", diagnostic.Warning,
					sourceOf(n), "duplicate @model directive; the first one wins")
				doc.Diagnose(n, diag)
				continue
			}
			sawModel = true
			classKids = append(classKids, n)
		case ir.KindInheritsDirective:
			classKids = append(classKids, n)
		}
	}
	class.Children = append(classKids, class.Children...)
	return nil
}

// ModelInheritsPass computes the class base type. An @inherits type may
// reference the model type as TModel; without @model the model type defaults
// to any.
type ModelInheritsPass struct{}

func (ModelInheritsPass) Order() int   { return 20 }
func (ModelInheritsPass) Name() string { return "model-inherits" }

func (ModelInheritsPass) Execute(ctx context.Context, doc *ir.Document) error {
	class := doc.Class()
	if class == nil {
		return nil
	}
	modelType := "any"
	if m := class.FirstChild(ir.KindModelDirective); m != nil && m.TypeName != "" {
		modelType = m.TypeName
	}
	if inh := class.FirstChild(ir.KindInheritsDirective); inh != nil {
		class.TypeName = strings.ReplaceAll(inh.TypeName, "TModel", modelType)
	}
	return nil
}

// InjectPass hoists @inject directives onto the class as property slots.
// Duplicate member names keep the first declaration.
type InjectPass struct{}

func (InjectPass) Order() int   { return 30 }
func (InjectPass) Name() string { return "inject" }

func (InjectPass) Execute(ctx context.Context, doc *ir.Document) error {
	method := doc.Method()
	class := doc.Class()
	if method == nil || class == nil {
		return nil
	}
	moved := method.RemoveChildren(func(n *ir.Node) bool { return n.Kind == ir.KindInjectDirective })
	seen := map[string]bool{}
	for _, c := range class.Children {
		if c.Kind == ir.KindInjectDirective {
			seen[c.MemberName] = true
		}
	}
	for _, n := range moved {
		if seen[n.MemberName] {
			diag := diagnostic.New(doc.Source, "RZ3004", diagnostic.Warning,
				sourceOf(n), "duplicate @inject member "+n.MemberName+"; the first one wins")
			doc.Diagnose(n, diag)
			continue
		}
		seen[n.MemberName] = true
		class.Children = append(class.Children, n)
	}
	return nil
}

// DesignTimePass appends the design-time anchor statement editors rely on.
// Runtime compilations are untouched.
type DesignTimePass struct{}

func (DesignTimePass) Order() int   { return 40 }
func (DesignTimePass) Name() string { return "design-time" }

func (DesignTimePass) Execute(ctx context.Context, doc *ir.Document) error {
	if !doc.DesignTime {
		return nil
	}
	if method := doc.Method(); method != nil {
		method.Append(&ir.Node{
			Kind:    ir.KindStatement,
			Name:    "__razr_design_time",
			Content: "var __razr_design_time int\n_ = __razr_design_time",
		})
	}
	return nil
}

// MarkupMergePass fuses adjacent HTML content siblings. It runs last: other
// passes want the fine-grained nodes it destroys.
type MarkupMergePass struct{}

func (MarkupMergePass) Order() int   { return 100 }
func (MarkupMergePass) Name() string { return "markup-merge" }

func (MarkupMergePass) Execute(ctx context.Context, doc *ir.Document) error {
	doc.Root.Walk(func(n *ir.Node) bool {
		n.Children = mergeAdjacent(n.Children)
		if ext, ok := n.Extension.(ir.TagHelperExtension); ok {
			ext.Body = mergeAdjacent(ext.Body)
			n.Extension = ext
		}
		return true
	})
	return nil
}

func mergeAdjacent(nodes []*ir.Node) []*ir.Node {
	if len(nodes) < 2 {
		return nodes
	}
	out := nodes[:0]
	for _, n := range nodes {
		if n.Kind == ir.KindHTMLContent && len(out) > 0 {
			last := out[len(out)-1]
			if last.Kind == ir.KindHTMLContent {
				last.Content += n.Content
				// a covering span is only claimed when the literals are
				// contiguous in the original text; hoisted directives leave
				// gaps the merged literal does not render
				if last.Source != nil && n.Source != nil &&
					last.Source.Start+last.Source.Length == n.Source.Start {
					cover := last.Source.Cover(*n.Source)
					last.Source = &cover
				} else {
					last.Source = nil
				}
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func sourceOf(n *ir.Node) source.Span {
	if n.Source != nil {
		return *n.Source
	}
	return source.Span{}
}
