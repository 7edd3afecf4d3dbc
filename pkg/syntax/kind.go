package syntax

import "fmt"

// NodeKind identifies the structural class of a syntax node.
type NodeKind uint8

const (
	KindDocument NodeKind = iota
	KindMarkupElement
	KindMarkupStartTag
	KindMarkupEndTag
	KindMarkupAttribute
	KindMarkupText
	KindMarkupComment
	KindCodeBlock
	KindCodeStatement
	KindCodeExpression
	KindDirective
	KindRazrComment
	KindToken // leaf holding exactly one lexer token
)

var nodeKindNames = map[NodeKind]string{
	KindDocument:        "Document",
	KindMarkupElement:   "MarkupElement",
	KindMarkupStartTag:  "MarkupStartTag",
	KindMarkupEndTag:    "MarkupEndTag",
	KindMarkupAttribute: "MarkupAttribute",
	KindMarkupText:      "MarkupText",
	KindMarkupComment:   "MarkupComment",
	KindCodeBlock:       "CodeBlock",
	KindCodeStatement:   "CodeStatement",
	KindCodeExpression:  "CodeExpression",
	KindDirective:       "Directive",
	KindRazrComment:    "RazrComment",
	KindToken:           "Token",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// DefaultDirectiveKeywords are the directive names the parser recognizes at
// document level. The lowering phase owns each keyword's argument grammar;
// the parser only needs to know which identifiers open a directive line.
var DefaultDirectiveKeywords = []string{
	"model", "inherits", "inject", "using", "namespace", "section", "page",
}
