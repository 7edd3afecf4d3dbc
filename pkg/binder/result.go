package binder

import (
	"github.com/walteh/go-razr/pkg/descriptor"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/syntax"
)

// Result holds every element binding of one tree, in document order.
type Result struct {
	Elements    []*ElementBinding
	Diagnostics diagnostic.Collection

	byNode map[*syntax.Node]*ElementBinding
}

// ForNode returns the binding for an element node, or nil when no helper
// matched it.
func (r *Result) ForNode(n *syntax.Node) *ElementBinding {
	return r.byNode[n]
}

// ElementBinding records which helpers matched one element and how its
// attributes resolved. Helpers keeps the input descriptor order; ties are
// carried forward, not broken here.
type ElementBinding struct {
	Node    *syntax.Node
	TagName string
	Helpers []*descriptor.TagHelper
	// RuleFor lists the rules of each matched helper that were satisfied.
	RuleFor     map[*descriptor.TagHelper][]*descriptor.TagMatchingRule
	Attributes  []AttributeBinding
	Diagnostics []diagnostic.Diagnostic
}

// AttributeBinding pairs a written attribute with every bound attribute it
// targets. Each matched helper resolves independently; Targets keeps the
// helper input order and is empty for a plain HTML attribute.
type AttributeBinding struct {
	Name    string
	Value   string
	Targets []AttributeTarget
}

// AttributeTarget is one helper's resolution of a written attribute.
type AttributeTarget struct {
	Helper *descriptor.TagHelper
	Bound  *descriptor.BoundAttribute
}

// IsBound reports whether any matched helper binds this attribute.
func (ab AttributeBinding) IsBound() bool {
	return len(ab.Targets) > 0
}
