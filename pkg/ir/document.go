package ir

import (
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
)

// Document is the IR of one compilation. It is mutated in place by the pass
// pipeline and must not be shared across goroutines.
type Document struct {
	Root   *Node
	Source *source.Document
	// DesignTime selects editor-oriented output: extra pragmas and
	// scaffolding that runtime output omits.
	DesignTime bool
	// Diagnostics accumulates lowering and pass diagnostics; node-level
	// diagnostics are mirrored here.
	Diagnostics diagnostic.Collection
}

// Namespace returns the scaffold namespace node.
func (d *Document) Namespace() *Node {
	return d.Root.FirstChild(KindNamespace)
}

// Class returns the scaffold class node.
func (d *Document) Class() *Node {
	if ns := d.Namespace(); ns != nil {
		return ns.FirstChild(KindClass)
	}
	return nil
}

// Method returns the scaffold render method node.
func (d *Document) Method() *Node {
	if c := d.Class(); c != nil {
		return c.FirstChild(KindMethod)
	}
	return nil
}

// Diagnose attaches a diagnostic to a node and mirrors it in the document
// collection.
func (d *Document) Diagnose(n *Node, diag diagnostic.Diagnostic) {
	n.Diagnostics = append(n.Diagnostics, diag)
	d.Diagnostics.Add(diag)
}
