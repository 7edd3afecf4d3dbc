package lexer

import (
	"fmt"

	"github.com/walteh/go-razr/pkg/source"
)

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	KindEOF Kind = iota
	KindError

	// markup
	KindText
	KindWhitespace
	KindNewLine
	KindOpenTagStart      // "<"
	KindCloseTagStart     // "</"
	KindTagEnd            // ">"
	KindSelfClosingTagEnd // "/>"
	KindIdent
	KindEquals
	KindQuotedLiteral // attribute value, quotes included when present
	KindMarkupComment // "<!-- ... -->", one token

	// transitions
	KindTransition   // "@"
	KindRazrComment // "@* ... *@", one token

	// code
	KindCodeContent
	KindLeftBrace
	KindRightBrace
	KindLeftParen
	KindRightParen
	KindLeftBracket
	KindRightBracket
	KindStringLiteral
	KindDot
)

var kindNames = map[Kind]string{
	KindEOF:               "EOF",
	KindError:             "Error",
	KindText:              "Text",
	KindWhitespace:        "Whitespace",
	KindNewLine:           "NewLine",
	KindOpenTagStart:      "OpenTagStart",
	KindCloseTagStart:     "CloseTagStart",
	KindTagEnd:            "TagEnd",
	KindSelfClosingTagEnd: "SelfClosingTagEnd",
	KindIdent:             "Ident",
	KindEquals:            "Equals",
	KindQuotedLiteral:     "QuotedLiteral",
	KindMarkupComment:     "MarkupComment",
	KindTransition:        "Transition",
	KindRazrComment:      "RazrComment",
	KindCodeContent:       "CodeContent",
	KindLeftBrace:         "LeftBrace",
	KindRightBrace:        "RightBrace",
	KindLeftParen:         "LeftParen",
	KindRightParen:        "RightParen",
	KindLeftBracket:       "LeftBracket",
	KindRightBracket:      "RightBracket",
	KindStringLiteral:     "StringLiteral",
	KindDot:               "Dot",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Token is one lexical unit. Content is always the verbatim slice of the
// source covered by Span, so concatenating token contents in order
// reconstructs the document exactly.
type Token struct {
	Kind    Kind
	Span    source.Span
	Content string
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)%s", t.Kind, t.Content, t.Span)
}

// Transition is the sigil that switches the lexer from markup into code.
const Transition = '@'

// VoidElements never open a content scope; their start tag is the whole
// element.
var VoidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true,
	"wbr": true,
	// not an element, but "<!doctype html>" scans as one
	"!doctype": true,
}
