package syntax

import (
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
)

// Tree is the result of parsing one document. The tree is immutable and safe
// for concurrent reads; it is owned by the compilation that produced it and
// shares unaffected subtrees with trees produced by incremental reparses.
type Tree struct {
	Root        *Node
	Document    *source.Document
	Diagnostics diagnostic.Collection
}

// Text reconstructs the source text from the tree's leaves. By the
// full-fidelity invariant it equals Document.Text() exactly.
func (t *Tree) Text() string {
	return t.Root.Text()
}

// Cursor identifies a node together with its position in a tree. Nodes carry
// no parent pointers, so the ancestor chain is computed by walking from the
// root when the cursor is created.
type Cursor struct {
	tree *Tree
	// path holds root..node inclusive
	path []*Node
}

func (c *Cursor) Node() *Node {
	if len(c.path) == 0 {
		return nil
	}
	return c.path[len(c.path)-1]
}

func (c *Cursor) Parent() *Node {
	if len(c.path) < 2 {
		return nil
	}
	return c.path[len(c.path)-2]
}

// Ancestors returns the chain from the immediate parent up to the root.
func (c *Cursor) Ancestors() []*Node {
	if len(c.path) < 2 {
		return nil
	}
	out := make([]*Node, 0, len(c.path)-1)
	for i := len(c.path) - 2; i >= 0; i-- {
		out = append(out, c.path[i])
	}
	return out
}

// CursorTo computes the cursor for target, or nil when target is not in the
// tree. Identity comparison is used; the same *Node reused across reparses
// resolves to its position in this tree.
func CursorTo(t *Tree, target *Node) *Cursor {
	var path []*Node
	var find func(n *Node) bool
	find = func(n *Node) bool {
		path = append(path, n)
		if n == target {
			return true
		}
		for _, c := range n.Children {
			if find(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !find(t.Root) {
		return nil
	}
	return &Cursor{tree: t, path: path}
}

// Walk visits every node depth-first, passing a cursor whose path is valid
// for the duration of the callback. Returning false skips the node's
// children.
func (t *Tree) Walk(visit func(c *Cursor) bool) {
	cur := &Cursor{tree: t}
	var walk func(n *Node)
	walk = func(n *Node) {
		cur.path = append(cur.path, n)
		if visit(cur) {
			for _, c := range n.Children {
				walk(c)
			}
		}
		cur.path = cur.path[:len(cur.path)-1]
	}
	walk(t.Root)
}
