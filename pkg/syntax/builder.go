package syntax

import (
	"sync"

	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/lexer"
	"github.com/walteh/go-razr/pkg/source"
)

// Builder accumulates nodes bottom-up through a stack of mutable frames and
// freezes them into immutable nodes on End. Frames are pooled; parsing large
// documents and frequent reparses should not churn the allocator.
type Builder struct {
	stack []*buildFrame
}

type buildFrame struct {
	kind     NodeKind
	children []*Node
	diags    []diagnostic.Diagnostic
}

var framePool = sync.Pool{
	New: func() any {
		return &buildFrame{children: make([]*Node, 0, 8)}
	},
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.Start(KindDocument)
	return b
}

// Start opens a new node of the given kind; children added until the
// matching End become its children.
func (b *Builder) Start(kind NodeKind) {
	f := framePool.Get().(*buildFrame)
	f.kind = kind
	f.children = f.children[:0]
	f.diags = f.diags[:0]
	b.stack = append(b.stack, f)
}

// Token appends a leaf node holding one lexer token to the open frame.
func (b *Builder) Token(tok lexer.Token) {
	t := tok
	b.add(&Node{Kind: KindToken, Token: &t, span: tok.Span})
}

// Node appends an already-frozen node (a reused subtree) to the open frame.
func (b *Builder) Node(n *Node) {
	b.add(n)
}

// Diagnose attaches a diagnostic to the node being built.
func (b *Builder) Diagnose(d diagnostic.Diagnostic) {
	f := b.top()
	f.diags = append(f.diags, d)
}

// End freezes the open frame into an immutable node and appends it to its
// parent frame. It returns the frozen node.
func (b *Builder) End() *Node {
	f := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	n := freeze(f)
	framePool.Put(f)
	b.add(n)
	return n
}

// Build finalizes the document frame and returns the root node.
func (b *Builder) Build() *Node {
	for len(b.stack) > 1 {
		b.End()
	}
	f := b.top()
	b.stack = b.stack[:0]
	n := freeze(f)
	framePool.Put(f)
	return n
}

func (b *Builder) top() *buildFrame {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) add(n *Node) {
	if len(b.stack) == 0 {
		return
	}
	f := b.top()
	f.children = append(f.children, n)
}

func freeze(f *buildFrame) *Node {
	n := &Node{
		Kind:     f.kind,
		Children: append([]*Node(nil), f.children...),
	}
	if len(f.diags) > 0 {
		n.Diagnostics = append([]diagnostic.Diagnostic(nil), f.diags...)
	}
	n.span = coverChildren(n.Children)
	return n
}

func coverChildren(children []*Node) source.Span {
	if len(children) == 0 {
		return source.Span{}
	}
	span := children[0].span
	for _, c := range children[1:] {
		if c.span.Length == 0 && c.span.Start == 0 && c.Kind != KindToken {
			continue
		}
		span = span.Cover(c.span)
	}
	return span
}
