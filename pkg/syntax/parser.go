package syntax

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/lexer"
	"github.com/walteh/go-razr/pkg/source"
)

// ParseOptions adjusts parser behavior. The zero value is the default
// configuration.
type ParseOptions struct {
	// DirectiveKeywords overrides the set of identifiers recognized as
	// directives at document level; nil means DefaultDirectiveKeywords.
	DirectiveKeywords []string
}

// Parse tokenizes and parses doc into a best-effort full-fidelity tree. No
// input is fatal: malformed structure surfaces as diagnostics on the nearest
// enclosing node and in the tree's merged collection.
func Parse(ctx context.Context, doc *source.Document, opts ParseOptions) *Tree {
	tokens := lexer.Tokenize(doc)
	return parseTokens(ctx, doc, tokens, 0, nil, opts)
}

func parseTokens(ctx context.Context, doc *source.Document, tokens []lexer.Token, start int, reused []*Node, opts ParseOptions) *Tree {
	keywords := opts.DirectiveKeywords
	if keywords == nil {
		keywords = DefaultDirectiveKeywords
	}
	directives := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		directives[k] = true
	}

	p := &parser{
		ctx:        ctx,
		doc:        doc,
		tokens:     tokens,
		pos:        start,
		b:          NewBuilder(),
		directives: directives,
	}
	for _, n := range reused {
		p.b.Node(n)
	}
	for !p.at(lexer.KindEOF) {
		if err := ctx.Err(); err != nil {
			break
		}
		p.parseItem(true)
	}
	root := p.b.Build()

	tree := &Tree{Root: root, Document: doc}
	tree.Diagnostics = p.diags
	tree.Diagnostics.Sort()

	zerolog.Ctx(ctx).Debug().
		Str("file", doc.FilePath()).
		Int("tokens", len(tokens)).
		Int("diagnostics", tree.Diagnostics.Len()).
		Msg("parsed document")
	return tree
}

type parser struct {
	ctx        context.Context
	doc        *source.Document
	tokens     []lexer.Token
	pos        int
	b          *Builder
	diags      diagnostic.Collection
	directives map[string]bool
	openTags   []string
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.KindEOF, Span: source.NewSpan(p.doc.Len(), 0)}
	}
	return p.tokens[p.pos]
}

func (p *parser) peek(delta int) lexer.Token {
	if p.pos+delta >= len(p.tokens) {
		return lexer.Token{Kind: lexer.KindEOF, Span: source.NewSpan(p.doc.Len(), 0)}
	}
	return p.tokens[p.pos+delta]
}

func (p *parser) at(kind lexer.Kind) bool {
	return p.cur().Kind == kind
}

// eat appends the current token to the open node and advances.
func (p *parser) eat() lexer.Token {
	tok := p.cur()
	if tok.Kind != lexer.KindEOF {
		p.b.Token(tok)
		p.pos++
	}
	return tok
}

func (p *parser) diagnose(span source.Span, code string, severity diagnostic.DiagnosticSeverity, message string) {
	d := diagnostic.New(p.doc, code, severity, span, message)
	p.b.Diagnose(d)
	p.diags.Add(d)
}

// parseItem parses one content item. docLevel enables directive recognition,
// which only applies outside element content.
func (p *parser) parseItem(docLevel bool) {
	switch p.cur().Kind {
	case lexer.KindOpenTagStart:
		p.parseElement()

	case lexer.KindCloseTagStart:
		p.parseStrayEndTag()

	case lexer.KindText, lexer.KindWhitespace, lexer.KindNewLine:
		p.b.Start(KindMarkupText)
		for {
			switch p.cur().Kind {
			case lexer.KindText, lexer.KindWhitespace, lexer.KindNewLine:
				p.eat()
				continue
			}
			break
		}
		p.b.End()

	case lexer.KindMarkupComment:
		p.b.Start(KindMarkupComment)
		p.eat()
		p.b.End()

	case lexer.KindRazrComment:
		p.b.Start(KindRazrComment)
		p.eat()
		p.b.End()

	case lexer.KindTransition:
		p.parseTransition(docLevel)

	case lexer.KindError:
		tok := p.cur()
		p.b.Start(KindMarkupText)
		p.diagnose(tok.Span, "RZ1001", diagnostic.Error, "malformed or unterminated construct")
		p.eat()
		p.b.End()

	default:
		// a token the markup grammar has no place for; keep it so the tree
		// stays full fidelity
		p.b.Start(KindMarkupText)
		p.eat()
		p.b.End()
	}
}

func (p *parser) parseTransition(docLevel bool) {
	next := p.peek(1)
	switch next.Kind {
	case lexer.KindIdent:
		if docLevel && p.directives[next.Content] {
			p.parseDirective()
			return
		}
		p.parseImplicitExpression()
	case lexer.KindLeftParen:
		p.parseExplicitExpression()
	case lexer.KindLeftBrace:
		p.parseCodeBlock()
	default:
		tok := p.cur()
		p.b.Start(KindMarkupText)
		p.diagnose(tok.Span, "RZ1001", diagnostic.Error, "transition sigil must introduce an expression, block, or directive")
		p.eat()
		p.b.End()
	}
}

// parseDirective consumes "@keyword" plus the rest of the line as raw
// argument tokens. Argument grammars are applied during lowering.
func (p *parser) parseDirective() {
	p.b.Start(KindDirective)
	p.eat() // @
	p.eat() // keyword
	for !p.at(lexer.KindNewLine) && !p.at(lexer.KindEOF) {
		p.eat()
	}
	p.b.End()
}

func (p *parser) parseImplicitExpression() {
	p.b.Start(KindCodeExpression)
	p.eat() // @
	p.eat() // leading ident
	for {
		switch {
		case p.at(lexer.KindDot) && p.peek(1).Kind == lexer.KindIdent:
			p.eat()
			p.eat()
		case p.at(lexer.KindLeftParen) || p.at(lexer.KindLeftBracket):
			p.eatBalancedGroup()
		default:
			p.b.End()
			return
		}
	}
}

func (p *parser) parseExplicitExpression() {
	p.b.Start(KindCodeExpression)
	p.eat() // @
	p.eatBalancedGroup()
	p.b.End()
}

func (p *parser) eatBalancedGroup() {
	depth := 0
	for !p.at(lexer.KindEOF) {
		switch p.cur().Kind {
		case lexer.KindLeftParen, lexer.KindLeftBracket:
			depth++
		case lexer.KindRightParen, lexer.KindRightBracket:
			depth--
		}
		p.eat()
		if depth <= 0 {
			return
		}
	}
}

// parseCodeBlock consumes "@{ ... }", grouping runs of code tokens into
// statement nodes and recursing into nested markup elements.
func (p *parser) parseCodeBlock() {
	p.b.Start(KindCodeBlock)
	blockStart := p.cur().Span
	p.eat() // @
	p.eat() // {
	depth := 1

	stmtOpen := false
	openStmt := func() {
		if !stmtOpen {
			p.b.Start(KindCodeStatement)
			stmtOpen = true
		}
	}
	closeStmt := func() {
		if stmtOpen {
			p.b.End()
			stmtOpen = false
		}
	}

	for !p.at(lexer.KindEOF) {
		switch p.cur().Kind {
		case lexer.KindRightBrace:
			depth--
			if depth == 0 {
				closeStmt()
				p.eat()
				p.b.End()
				return
			}
			openStmt()
			p.eat()
		case lexer.KindLeftBrace:
			depth++
			openStmt()
			p.eat()
		case lexer.KindOpenTagStart:
			closeStmt()
			p.parseElement()
		case lexer.KindCloseTagStart:
			closeStmt()
			p.parseStrayEndTag()
		case lexer.KindError:
			tok := p.cur()
			openStmt()
			p.diagnose(tok.Span, "RZ1001", diagnostic.Error, "malformed token in code block")
			p.eat()
		default:
			openStmt()
			p.eat()
		}
	}
	closeStmt()
	p.diagnose(blockStart, "RZ1001", diagnostic.Error, "unterminated code block")
	p.b.End()
}

// parseElement parses an element and its content; recovery for mismatched
// and missing close tags keeps every node in the tree.
func (p *parser) parseElement() {
	p.b.Start(KindMarkupElement)

	name, selfClosed, terminated := p.parseStartTag()
	bare := strings.TrimPrefix(name, "!")
	void := lexer.VoidElements[strings.ToLower(name)] || lexer.VoidElements[strings.ToLower(bare)]
	if selfClosed || !terminated || void {
		p.b.End()
		return
	}

	p.openTags = append(p.openTags, name)
	defer func() {
		p.openTags = p.openTags[:len(p.openTags)-1]
	}()

	for {
		switch {
		case p.at(lexer.KindEOF):
			p.diagnose(p.cur().Span, "RZ1003", diagnostic.Error,
				"missing end tag for element <"+name+">")
			p.b.End()
			return

		case p.at(lexer.KindCloseTagStart):
			closeName := ""
			if p.peek(1).Kind == lexer.KindIdent {
				closeName = p.peek(1).Content
			}
			if strings.EqualFold(closeName, name) {
				p.parseEndTag()
				p.b.End()
				return
			}
			if p.openTagsContain(closeName) {
				// the close tag belongs to an enclosing element; close this
				// one implicitly and let the outer element consume it
				p.diagnose(p.cur().Span.Cover(p.peek(1).Span), "RZ1002", diagnostic.Error,
					"end tag </"+closeName+"> does not match open element <"+name+">")
				p.b.End()
				return
			}
			p.parseStrayEndTag()

		default:
			p.parseItem(false)
		}
	}
}

// openTagsContain reports whether name matches an element open below the
// current one.
func (p *parser) openTagsContain(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(p.openTags)-1; i++ {
		if strings.EqualFold(p.openTags[i], name) {
			return true
		}
	}
	return false
}

// parseStartTag returns the tag name, whether the tag was self-closing, and
// whether it was terminated by ">" or "/>" at all.
func (p *parser) parseStartTag() (name string, selfClosed, terminated bool) {
	p.b.Start(KindMarkupStartTag)
	openSpan := p.cur().Span
	p.eat() // <
	if p.at(lexer.KindIdent) {
		name = p.cur().Content
		p.eat()
	}
	for {
		switch p.cur().Kind {
		case lexer.KindTagEnd:
			p.eat()
			p.b.End()
			return name, false, true
		case lexer.KindSelfClosingTagEnd:
			p.eat()
			p.b.End()
			return name, true, true
		case lexer.KindWhitespace, lexer.KindNewLine:
			p.eat()
		case lexer.KindIdent:
			p.parseAttribute()
		case lexer.KindError:
			p.diagnose(openSpan, "RZ1001", diagnostic.Error,
				"unterminated tag <"+name+">")
			p.eat()
			p.b.End()
			return name, false, false
		case lexer.KindEOF:
			p.diagnose(openSpan, "RZ1001", diagnostic.Error,
				"unterminated tag <"+name+">")
			p.b.End()
			return name, false, false
		default:
			p.eat()
		}
	}
}

func (p *parser) parseAttribute() {
	p.b.Start(KindMarkupAttribute)
	p.eat() // name
	// optional "= value", tolerating whitespace around the equals sign
	ws := 0
	for p.peek(ws).Kind == lexer.KindWhitespace {
		ws++
	}
	if p.peek(ws).Kind == lexer.KindEquals {
		for ; ws > 0; ws-- {
			p.eat()
		}
		p.eat() // =
		for p.at(lexer.KindWhitespace) {
			p.eat()
		}
		if p.at(lexer.KindQuotedLiteral) {
			p.eat()
		}
	}
	p.b.End()
}

func (p *parser) parseEndTag() {
	p.b.Start(KindMarkupEndTag)
	p.eat() // </
	for {
		switch p.cur().Kind {
		case lexer.KindTagEnd:
			p.eat()
			p.b.End()
			return
		case lexer.KindIdent, lexer.KindWhitespace, lexer.KindNewLine:
			p.eat()
		default:
			p.b.End()
			return
		}
	}
}

// parseStrayEndTag consumes a close tag that matches no open element.
func (p *parser) parseStrayEndTag() {
	span := p.cur().Span
	name := ""
	if p.peek(1).Kind == lexer.KindIdent {
		name = p.peek(1).Content
		span = span.Cover(p.peek(1).Span)
	}
	p.b.Start(KindMarkupEndTag)
	p.diagnose(span, "RZ1002", diagnostic.Error,
		"end tag </"+name+"> has no matching open element")
	p.eat() // </
	for {
		switch p.cur().Kind {
		case lexer.KindTagEnd:
			p.eat()
			p.b.End()
			return
		case lexer.KindIdent, lexer.KindWhitespace, lexer.KindNewLine:
			p.eat()
		default:
			p.b.End()
			return
		}
	}
}
