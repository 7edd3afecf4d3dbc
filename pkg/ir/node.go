// Package ir is the intermediate representation between the syntax tree and
// code generation. Unlike the syntax tree, IR nodes are mutable: they are
// owned exclusively by the compilation that created them and are rewritten
// in place by the pass pipeline.
package ir

import (
	"github.com/walteh/go-razr/pkg/binder"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
)

type NodeKind uint8

const (
	KindDocument NodeKind = iota
	KindNamespace
	KindClass
	KindMethod
	KindUsing
	KindModelDirective
	KindInheritsDirective
	KindInjectDirective
	KindNamespaceDirective
	KindSectionDirective
	KindPageDirective
	KindHTMLContent
	KindExpression
	KindStatement
	KindComment
	KindExtension
	KindMalformedDirective
)

var nodeKindNames = [...]string{
	KindDocument:           "Document",
	KindNamespace:          "Namespace",
	KindClass:              "Class",
	KindMethod:             "Method",
	KindUsing:              "Using",
	KindModelDirective:     "ModelDirective",
	KindInheritsDirective:  "InheritsDirective",
	KindInjectDirective:    "InjectDirective",
	KindNamespaceDirective: "NamespaceDirective",
	KindSectionDirective:   "SectionDirective",
	KindPageDirective:      "PageDirective",
	KindHTMLContent:        "HTMLContent",
	KindExpression:         "Expression",
	KindStatement:          "Statement",
	KindComment:            "Comment",
	KindExtension:          "Extension",
	KindMalformedDirective: "MalformedDirective",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// Node is one IR node. Which payload fields are meaningful depends on Kind:
// Content carries HTML text or code, TypeName/MemberName carry directive
// arguments, Name carries namespace/class/section names.
type Node struct {
	Kind NodeKind
	// Source is the originating span in the template, nil for synthesized
	// scaffold nodes.
	Source      *source.Span
	Children    []*Node
	Diagnostics []diagnostic.Diagnostic

	Content    string
	TypeName   string
	MemberName string
	Name       string
	Extension  Extension
}

func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// FirstChild returns the first direct child of the given kind.
func (n *Node) FirstChild(kind NodeKind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// RemoveChildren filters out direct children the predicate selects and
// returns them in order.
func (n *Node) RemoveChildren(match func(*Node) bool) []*Node {
	var removed []*Node
	kept := n.Children[:0]
	for _, c := range n.Children {
		if match(c) {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	n.Children = kept
	return removed
}

// Walk visits n and its descendants depth-first until visit returns false.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Extension lets downstream features attach payloads the core IR does not
// model; code generation dispatches on ExtensionKind.
type Extension interface {
	ExtensionKind() string
}

// TagHelperExtensionKind is the registry key of the built-in tag helper
// extension writer.
const TagHelperExtensionKind = "tag-helper"

// TagHelperExtension carries a bound element through the IR: the binding
// result plus the element's lowered body.
type TagHelperExtension struct {
	Binding *binder.ElementBinding
	Body    []*Node
}

func (TagHelperExtension) ExtensionKind() string {
	return TagHelperExtensionKind
}

func spanPtr(s source.Span) *source.Span {
	return &s
}
