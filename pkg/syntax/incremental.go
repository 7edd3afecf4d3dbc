package syntax

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/go-razr/pkg/lexer"
	"github.com/walteh/go-razr/pkg/source"
)

// Edit replaces the text covered by Span with NewText.
type Edit struct {
	Span    source.Span
	NewText string
}

// Apply produces the text of the document after the edit.
func (e Edit) Apply(doc *source.Document) (string, error) {
	text := doc.Text()
	if e.Span.Start < 0 || e.Span.End() > len(text) {
		return "", errors.Errorf("edit span %s exceeds document of %d bytes", e.Span, len(text))
	}
	return text[:e.Span.Start] + e.NewText + text[e.Span.End():], nil
}

// reuseLookahead is the number of tokens before the first changed token that
// are excluded from reuse, covering the parser's maximum lookahead so the
// incremental result matches a full reparse exactly.
const reuseLookahead = 3

// Reparse applies edit to the tree's document and parses the result, reusing
// unchanged top-level subtrees of the previous tree. The returned tree is
// structurally identical to a full parse of the edited text; reused *Node
// values are shared with the old tree.
func Reparse(ctx context.Context, old *Tree, edit Edit, opts ParseOptions) (*Tree, error) {
	newText, err := edit.Apply(old.Document)
	if err != nil {
		return nil, errors.Errorf("applying edit: %w", err)
	}
	doc := source.NewDocument(newText, old.Document.Path(), old.Document.RelativePath())
	tokens := lexer.Tokenize(doc)

	oldTokens := flattenTokens(old.Root)
	common := commonTokenPrefix(oldTokens, tokens)
	budget := common - reuseLookahead
	if budget < 0 {
		budget = 0
	}

	var reused []*Node
	idx := 0 // index into both token streams, identical over the reused prefix
	for _, child := range old.Root.Children {
		n := countTokens(child)
		if idx+n > budget || hasDiagnostics(child) {
			break
		}
		reused = append(reused, child)
		idx += n
	}

	tree := parseTokens(ctx, doc, tokens, idx, reused, opts)
	// diagnostics inside reused subtrees are absent by construction, so the
	// merged collection from the suffix parse is already complete
	return tree, nil
}

func flattenTokens(n *Node) []lexer.Token {
	var out []lexer.Token
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Token != nil {
			out = append(out, *n.Token)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

func countTokens(n *Node) int {
	if n.Token != nil {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += countTokens(c)
	}
	return total
}

func hasDiagnostics(n *Node) bool {
	if len(n.Diagnostics) > 0 {
		return true
	}
	for _, c := range n.Children {
		if hasDiagnostics(c) {
			return true
		}
	}
	return false
}

func commonTokenPrefix(a, b []lexer.Token) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].Kind != b[i].Kind || a[i].Span != b[i].Span || a[i].Content != b[i].Content {
			return i
		}
	}
	return n
}
