package syntax

import (
	"strings"

	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/lexer"
	"github.com/walteh/go-razr/pkg/source"
)

// Node is one node of the syntax tree. Nodes are immutable once the builder
// has frozen them and carry no parent pointers; position in the tree comes
// from a Cursor computed on demand. This keeps subtrees structurally
// shareable across incremental reparses.
type Node struct {
	Kind        NodeKind
	Children    []*Node
	Token       *lexer.Token // set only on KindToken leaves
	Diagnostics []diagnostic.Diagnostic

	span source.Span
}

// Span is the byte range this node covers in the source document.
func (n *Node) Span() source.Span {
	return n.span
}

// Text reconstructs the verbatim source text of the node by concatenating
// its leaf tokens in document order (the full-fidelity property).
func (n *Node) Text() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n.Token != nil {
		sb.WriteString(n.Token.Content)
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}

// FirstToken returns the first leaf token under the node, or nil.
func (n *Node) FirstToken() *lexer.Token {
	if n.Token != nil {
		return n.Token
	}
	for _, c := range n.Children {
		if t := c.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

func (n *Node) childOfKind(kind NodeKind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

func (n *Node) tokenOfKind(kind lexer.Kind) *lexer.Token {
	for _, c := range n.Children {
		if c.Token != nil && c.Token.Kind == kind {
			return c.Token
		}
	}
	return nil
}

// StartTag returns the start-tag child of an element node.
func (n *Node) StartTag() *Node {
	if n.Kind != KindMarkupElement {
		return nil
	}
	return n.childOfKind(KindMarkupStartTag)
}

// EndTag returns the end-tag child of an element node, nil when the close
// tag was missing or implied.
func (n *Node) EndTag() *Node {
	if n.Kind != KindMarkupElement {
		return nil
	}
	return n.childOfKind(KindMarkupEndTag)
}

// TagName returns the tag name of an element, start-tag, or end-tag node.
func (n *Node) TagName() string {
	switch n.Kind {
	case KindMarkupElement:
		if st := n.StartTag(); st != nil {
			return st.TagName()
		}
		if et := n.EndTag(); et != nil {
			return et.TagName()
		}
		return ""
	case KindMarkupStartTag, KindMarkupEndTag:
		if t := n.tokenOfKind(lexer.KindIdent); t != nil {
			return t.Content
		}
		return ""
	}
	return ""
}

// Content returns the content children of an element (everything between
// its start and end tags).
func (n *Node) Content() []*Node {
	if n.Kind != KindMarkupElement {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == KindMarkupStartTag || c.Kind == KindMarkupEndTag {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Attribute is the read-side view of one markup attribute.
type Attribute struct {
	Name string
	// Value is the attribute's value with surrounding quotes removed; empty
	// for minimized attributes like <input checked>.
	Value string
	// Node is the KindMarkupAttribute node the view was read from.
	Node *Node
}

// Attributes lists the attributes of an element or start-tag node.
func (n *Node) Attributes() []Attribute {
	st := n
	if n.Kind == KindMarkupElement {
		st = n.StartTag()
	}
	if st == nil || st.Kind != KindMarkupStartTag {
		return nil
	}
	var out []Attribute
	for _, c := range st.Children {
		if c.Kind != KindMarkupAttribute {
			continue
		}
		a := Attribute{Node: c}
		if t := c.tokenOfKind(lexer.KindIdent); t != nil {
			a.Name = t.Content
		}
		if t := c.tokenOfKind(lexer.KindQuotedLiteral); t != nil {
			a.Value = unquote(t.Content)
		}
		out = append(out, a)
	}
	return out
}

// DirectiveKeyword returns the keyword of a directive node ("model",
// "using", ...).
func (n *Node) DirectiveKeyword() string {
	if n.Kind != KindDirective {
		return ""
	}
	if t := n.tokenOfKind(lexer.KindIdent); t != nil {
		return t.Content
	}
	return ""
}

// DirectiveArgs returns the raw argument text of a directive node: every
// token after the keyword, trimmed.
func (n *Node) DirectiveArgs() string {
	if n.Kind != KindDirective {
		return ""
	}
	var sb strings.Builder
	seenKeyword := false
	for _, c := range n.Children {
		if c.Token == nil {
			continue
		}
		if !seenKeyword {
			if c.Token.Kind == lexer.KindIdent {
				seenKeyword = true
			}
			continue
		}
		sb.WriteString(c.Token.Content)
	}
	return strings.TrimSpace(sb.String())
}

// ExpressionCode returns the code text of a code-expression node, without
// the transition sigil and, for explicit expressions, without the outer
// parentheses.
func (n *Node) ExpressionCode() string {
	if n.Kind != KindCodeExpression {
		return ""
	}
	text := n.Text()
	text = strings.TrimPrefix(text, string(lexer.Transition))
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		text = text[1 : len(text)-1]
	}
	return text
}

// ExpressionSpan returns the span of the expression code itself (excluding
// the sigil and explicit-expression parentheses), which is what source
// mappings should point at.
func (n *Node) ExpressionSpan() source.Span {
	if n.Kind != KindCodeExpression {
		return n.span
	}
	span := n.span
	text := n.Text()
	if strings.HasPrefix(text, string(lexer.Transition)) {
		span = source.NewSpan(span.Start+1, span.Length-1)
		text = text[1:]
	}
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") && span.Length >= 2 {
		span = source.NewSpan(span.Start+1, span.Length-2)
	}
	return span
}

// StatementCode returns the code text of a code-statement node.
func (n *Node) StatementCode() string {
	if n.Kind != KindCodeStatement {
		return ""
	}
	return n.Text()
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
