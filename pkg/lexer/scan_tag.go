package lexer

import "strings"

// nextTag scans the interior of a tag, from just past "<" or "</" up to and
// including ">" or "/>".
func (lx *Lexer) nextTag() Token {
	start := lx.pos
	c := lx.text[lx.pos]
	f := lx.top()

	switch {
	case c == '>':
		lx.pos++
		tok := lx.emit(KindTagEnd, start)
		lx.finishTag(false)
		return tok

	case c == '/' && lx.peekAt(1, func(b byte) bool { return b == '>' }):
		lx.pos += 2
		tok := lx.emit(KindSelfClosingTagEnd, start)
		lx.finishTag(true)
		return tok

	case c == '<':
		// an unterminated tag; hand the "<" back to markup scanning
		lx.pop()
		return lx.emit(KindError, start)

	case c == '\n' || c == '\r':
		lx.pos++
		if c == '\r' && lx.pos < len(lx.text) && lx.text[lx.pos] == '\n' {
			lx.pos++
		}
		return lx.emit(KindNewLine, start)

	case isSpaceOrTab(c):
		for lx.pos < len(lx.text) && isSpaceOrTab(lx.text[lx.pos]) {
			lx.pos++
		}
		return lx.emit(KindWhitespace, start)

	case c == '=':
		lx.pos++
		f.sub = subPost // value expected next
		return lx.emit(KindEquals, start)

	case c == '"' || c == '\'':
		return lx.scanQuotedValue(c)

	case !f.sawName && isTagNameStart(c):
		lx.pos++
		for lx.pos < len(lx.text) && isTagNamePart(lx.text[lx.pos]) {
			lx.pos++
		}
		f.sawName = true
		f.tagName = lx.text[start:lx.pos]
		return lx.emit(KindIdent, start)

	case f.sub == subPost: // unquoted attribute value
		for lx.pos < len(lx.text) {
			c := lx.text[lx.pos]
			if isSpaceOrTab(c) || c == '>' || c == '/' || c == '<' || c == '\n' || c == '\r' {
				break
			}
			lx.pos++
		}
		f.sub = subIdent
		if lx.pos == start {
			lx.pos++
			return lx.emit(KindError, start)
		}
		return lx.emit(KindQuotedLiteral, start)

	case isIdentStart(c):
		lx.pos++
		for lx.pos < len(lx.text) && isTagNamePart(lx.text[lx.pos]) {
			lx.pos++
		}
		return lx.emit(KindIdent, start)

	default:
		lx.pos++
		return lx.emit(KindError, start)
	}
}

func (lx *Lexer) scanQuotedValue(quote byte) Token {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.text) {
		c := lx.text[lx.pos]
		if c == quote {
			lx.pos++
			lx.top().sub = subIdent
			return lx.emit(KindQuotedLiteral, start)
		}
		if c == '>' || c == '\n' || c == '\r' {
			break
		}
		lx.pos++
	}
	lx.top().sub = subIdent
	return lx.emit(KindError, start)
}

// finishTag pops the tag frame and, when the enclosing frame is markup
// nested inside a code block, updates its open-element count so the lexer
// knows when to fall back into code mode.
func (lx *Lexer) finishTag(selfClosing bool) {
	tag := *lx.top()
	lx.pop()
	enclosing := lx.top()
	if enclosing.state != stateMarkupInCode {
		return
	}
	switch {
	case selfClosing || VoidElements[strings.ToLower(tag.tagName)]:
		// no scope opened
	case tag.tagIsClose:
		enclosing.depth--
	default:
		enclosing.depth++
	}
	if enclosing.depth <= 0 {
		lx.pop() // back to the code block
	}
}
