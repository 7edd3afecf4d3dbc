package lexer

import (
	"strings"

	"github.com/walteh/go-razr/pkg/source"
)

// Lexer converts a source document into a forward-only token stream. It is
// restartable only by constructing a new Lexer; tokens are never mutated
// after creation.
//
// The machine has two primary modes, markup and code, tracked as a stack of
// frames: code blocks can re-enter markup for a nested element, which in turn
// can transition back into code.
type Lexer struct {
	doc  *source.Document
	text string
	pos  int

	stack []frame
	done  bool
}

type stateKind uint8

const (
	stateMarkup stateKind = iota
	stateTag
	stateImplicitExpr
	stateExplicitExpr
	stateCodeBlock
	stateMarkupInCode
)

// frame is one entry of the mode stack.
type frame struct {
	state stateKind

	// depth is the unmatched-delimiter count: parens for explicit
	// expressions and expression groups, braces for code blocks, open
	// elements for markup nested in code.
	depth int

	// implicit-expression progress: expecting the leading identifier,
	// sitting after an identifier/group, or inside a (...)/[...] group.
	// Tag frames reuse it to mark that an attribute value is expected.
	sub implicitSub

	// tag bookkeeping, used when the enclosing frame is stateMarkupInCode
	tagIsClose bool
	tagName    string
	sawName    bool
}

type implicitSub uint8

const (
	subIdent implicitSub = iota
	subPost
	subGroup
)

func New(doc *source.Document) *Lexer {
	return &Lexer{
		doc:   doc,
		text:  doc.Text(),
		stack: []frame{{state: stateMarkup}},
	}
}

// Tokenize runs a fresh lexer over doc and collects every token up to and
// including EOF.
func Tokenize(doc *source.Document) []Token {
	lx := New(doc)
	var out []Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == KindEOF {
			return out
		}
	}
}

// Next returns the next token. After the EOF token it keeps returning EOF.
func (lx *Lexer) Next() Token {
	if lx.done {
		return lx.emit(KindEOF, lx.pos)
	}
	if lx.pos >= len(lx.text) {
		// each unterminated nested construct surfaces as one zero-length
		// error token before the final EOF
		if len(lx.stack) > 1 {
			lx.pop()
			return lx.emit(KindError, lx.pos)
		}
		lx.done = true
		return lx.emit(KindEOF, lx.pos)
	}

	switch lx.top().state {
	case stateMarkup, stateMarkupInCode:
		return lx.nextMarkup()
	case stateTag:
		return lx.nextTag()
	case stateImplicitExpr:
		return lx.nextImplicit()
	case stateExplicitExpr:
		return lx.nextGroupCode()
	case stateCodeBlock:
		return lx.nextCodeBlock()
	}
	return lx.emit(KindEOF, lx.pos)
}

// nextMarkup scans document-level and element content.
func (lx *Lexer) nextMarkup() Token {
	start := lx.pos
	c := lx.text[lx.pos]

	switch {
	case c == '<':
		if lx.hasPrefix("<!--") {
			return lx.scanMarkupComment()
		}
		if lx.hasPrefix("</") {
			lx.pos += 2
			lx.push(frame{state: stateTag, tagIsClose: true})
			return lx.emit(KindCloseTagStart, start)
		}
		if lx.peekAt(1, isTagNameStart) {
			lx.pos++
			lx.push(frame{state: stateTag})
			return lx.emit(KindOpenTagStart, start)
		}
		// a bare '<' is ordinary text
		lx.pos++
		return lx.emit(KindText, start)

	case c == Transition:
		return lx.scanTransition()

	case c == '\n':
		lx.pos++
		return lx.emit(KindNewLine, start)

	case c == '\r':
		lx.pos++
		if lx.pos < len(lx.text) && lx.text[lx.pos] == '\n' {
			lx.pos++
		}
		return lx.emit(KindNewLine, start)

	default:
		for lx.pos < len(lx.text) {
			c := lx.text[lx.pos]
			if c == '<' || c == Transition || c == '\n' || c == '\r' {
				break
			}
			lx.pos++
		}
		return lx.emit(KindText, start)
	}
}

// scanTransition dispatches everything that begins with the @ sigil.
func (lx *Lexer) scanTransition() Token {
	start := lx.pos
	next := byte(0)
	if lx.pos+1 < len(lx.text) {
		next = lx.text[lx.pos+1]
	}

	switch {
	case next == Transition:
		// escaped sigil: a literal @ in the output
		lx.pos += 2
		return lx.emit(KindText, start)

	case next == '*':
		return lx.scanRazrComment()

	case next == '{':
		lx.pos++
		lx.push(frame{state: stateCodeBlock})
		return lx.emit(KindTransition, start)

	case next == '(':
		lx.pos++
		lx.push(frame{state: stateExplicitExpr})
		return lx.emit(KindTransition, start)

	case isIdentStart(next):
		lx.pos++
		lx.push(frame{state: stateImplicitExpr})
		return lx.emit(KindTransition, start)

	default:
		// a dangling sigil with nothing it can introduce
		lx.pos++
		return lx.emit(KindError, start)
	}
}

func (lx *Lexer) scanMarkupComment() Token {
	start := lx.pos
	end := strings.Index(lx.text[lx.pos:], "-->")
	if end < 0 {
		lx.pos = len(lx.text)
		return lx.emit(KindError, start)
	}
	lx.pos += end + len("-->")
	return lx.emit(KindMarkupComment, start)
}

func (lx *Lexer) scanRazrComment() Token {
	start := lx.pos
	end := strings.Index(lx.text[lx.pos+2:], "*@")
	if end < 0 {
		lx.pos = len(lx.text)
		return lx.emit(KindError, start)
	}
	lx.pos += 2 + end + len("*@")
	return lx.emit(KindRazrComment, start)
}

func (lx *Lexer) emit(kind Kind, start int) Token {
	return Token{
		Kind:    kind,
		Span:    source.NewSpan(start, lx.pos-start),
		Content: lx.text[start:lx.pos],
	}
}

func (lx *Lexer) top() *frame {
	return &lx.stack[len(lx.stack)-1]
}

func (lx *Lexer) push(f frame) {
	lx.stack = append(lx.stack, f)
}

func (lx *Lexer) pop() {
	if len(lx.stack) > 1 {
		lx.stack = lx.stack[:len(lx.stack)-1]
	}
}

func (lx *Lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(lx.text[lx.pos:], s)
}

func (lx *Lexer) peekAt(delta int, pred func(byte) bool) bool {
	if lx.pos+delta >= len(lx.text) {
		return false
	}
	return pred(lx.text[lx.pos+delta])
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// isTagNameStart accepts the opt-out prefix so that tags like <!div> lex as
// elements rather than text.
func isTagNameStart(c byte) bool {
	return isIdentStart(c) || c == '!'
}

func isTagNamePart(c byte) bool {
	return isIdentPart(c) || c == '-' || c == ':' || c == '.'
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}
