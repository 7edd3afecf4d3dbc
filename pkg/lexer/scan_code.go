package lexer

import "strings"

// nextCodeBlock scans the interior of an @{ ... } block. Brace depth decides
// where the block ends; quotes and comments are balanced just far enough to
// not miscount braces, and a nested element hands control back to markup
// scanning until the element closes.
func (lx *Lexer) nextCodeBlock() Token {
	start := lx.pos
	c := lx.text[lx.pos]
	f := lx.top()

	switch {
	case c == '{':
		lx.pos++
		f.depth++
		return lx.emit(KindLeftBrace, start)

	case c == '}':
		lx.pos++
		f.depth--
		tok := lx.emit(KindRightBrace, start)
		if f.depth <= 0 {
			lx.pop()
		}
		return tok

	case c == '(':
		lx.pos++
		return lx.emit(KindLeftParen, start)
	case c == ')':
		lx.pos++
		return lx.emit(KindRightParen, start)
	case c == '[':
		lx.pos++
		return lx.emit(KindLeftBracket, start)
	case c == ']':
		lx.pos++
		return lx.emit(KindRightBracket, start)

	case c == '"' || c == '\'' || c == '`':
		return lx.scanCodeString(c)

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

	case c == '<' && lx.peekAt(1, isTagNameStart):
		// markup re-entered inside the code block; return to code once the
		// element closes
		lx.push(frame{state: stateMarkupInCode})
		return lx.nextMarkup()

	case c == '/' && lx.peekAt(1, func(b byte) bool { return b == '/' }):
		if nl := strings.IndexAny(lx.text[lx.pos:], "\r\n"); nl >= 0 {
			lx.pos += nl
		} else {
			lx.pos = len(lx.text)
		}
		return lx.emit(KindCodeContent, start)

	case c == '/' && lx.peekAt(1, func(b byte) bool { return b == '*' }):
		end := strings.Index(lx.text[lx.pos+2:], "*/")
		if end < 0 {
			lx.pos = len(lx.text)
			return lx.emit(KindError, start)
		}
		lx.pos += 2 + end + 2
		return lx.emit(KindCodeContent, start)

	default:
		return lx.scanCodeRun()
	}
}

// nextGroupCode scans balanced (...) content for explicit expressions.
func (lx *Lexer) nextGroupCode() Token {
	start := lx.pos
	c := lx.text[lx.pos]
	f := lx.top()

	switch {
	case c == '(':
		lx.pos++
		f.depth++
		return lx.emit(KindLeftParen, start)

	case c == ')':
		lx.pos++
		f.depth--
		tok := lx.emit(KindRightParen, start)
		if f.depth <= 0 {
			lx.pop()
		}
		return tok

	case c == '"' || c == '\'' || c == '`':
		return lx.scanCodeString(c)

	case c == '\n' || c == '\r':
		lx.pos++
		if c == '\r' && lx.pos < len(lx.text) && lx.text[lx.pos] == '\n' {
			lx.pos++
		}
		return lx.emit(KindNewLine, start)

	default:
		return lx.scanCodeRun()
	}
}

// nextImplicit scans an implicit expression: ident(.ident)* with balanced
// (...) and [...] segments. The first character that cannot extend the
// expression returns the lexer to markup.
func (lx *Lexer) nextImplicit() Token {
	f := lx.top()
	start := lx.pos
	c := lx.text[lx.pos]

	switch f.sub {
	case subIdent:
		for lx.pos < len(lx.text) && isIdentPart(lx.text[lx.pos]) {
			lx.pos++
		}
		f.sub = subPost
		return lx.emit(KindIdent, start)

	case subPost:
		switch {
		case c == '.' && lx.peekAt(1, isIdentStart):
			lx.pos++
			f.sub = subIdent
			return lx.emit(KindDot, start)
		case c == '(':
			lx.pos++
			f.sub = subGroup
			f.depth = 1
			return lx.emit(KindLeftParen, start)
		case c == '[':
			lx.pos++
			f.sub = subGroup
			f.depth = 1
			return lx.emit(KindLeftBracket, start)
		default:
			lx.pop()
			return lx.Next()
		}

	default: // subGroup
		switch {
		case c == '(' || c == '[':
			lx.pos++
			f.depth++
			if c == '(' {
				return lx.emit(KindLeftParen, start)
			}
			return lx.emit(KindLeftBracket, start)
		case c == ')' || c == ']':
			lx.pos++
			f.depth--
			if f.depth <= 0 {
				f.sub = subPost
			}
			if c == ')' {
				return lx.emit(KindRightParen, start)
			}
			return lx.emit(KindRightBracket, start)
		case c == '"' || c == '\'' || c == '`':
			return lx.scanCodeString(c)
		case c == '\n' || c == '\r':
			lx.pos++
			if c == '\r' && lx.pos < len(lx.text) && lx.text[lx.pos] == '\n' {
				lx.pos++
			}
			return lx.emit(KindNewLine, start)
		default:
			return lx.scanCodeRun()
		}
	}
}

// scanCodeRun consumes code characters up to the next delimiter the mode
// machine cares about. It always consumes at least one character so the
// lexer makes progress on delimiters its caller chose not to handle.
func (lx *Lexer) scanCodeRun() Token {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.text) {
		c := lx.text[lx.pos]
		switch c {
		case '{', '}', '(', ')', '[', ']', '"', '\'', '`', '\n', '\r', '<':
			return lx.emit(KindCodeContent, start)
		case '/':
			if lx.peekAt(1, func(b byte) bool { return b == '/' || b == '*' }) {
				return lx.emit(KindCodeContent, start)
			}
		}
		lx.pos++
	}
	return lx.emit(KindCodeContent, start)
}

// scanCodeString scans a string, rune, or raw literal using just enough of
// the embedded language's lexical rules to balance the closing quote.
// Interpreted strings and runes end at an unescaped quote or the end of the
// line; raw (backquote) literals may span lines.
func (lx *Lexer) scanCodeString(quote byte) Token {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.text) {
		c := lx.text[lx.pos]
		if c == '\\' && quote != '`' && lx.pos+1 < len(lx.text) {
			lx.pos += 2
			continue
		}
		if c == quote {
			lx.pos++
			return lx.emit(KindStringLiteral, start)
		}
		if (c == '\n' || c == '\r') && quote != '`' {
			return lx.emit(KindError, start)
		}
		lx.pos++
	}
	return lx.emit(KindError, start)
}
