package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/go-razr/pkg/lexer"
	"github.com/walteh/go-razr/pkg/source"
)

func kinds(tokens []lexer.Token) []lexer.Kind {
	out := make([]lexer.Kind, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func lex(t *testing.T, text string) []lexer.Token {
	t.Helper()
	return lexer.Tokenize(source.NewDocument(text, "test.razr", ""))
}

func TestMarkupWithImplicitExpression(t *testing.T) {
	tokens := lex(t, "<p>Hello @name</p>")

	assert.Equal(t, []lexer.Kind{
		lexer.KindOpenTagStart,
		lexer.KindIdent,
		lexer.KindTagEnd,
		lexer.KindText,
		lexer.KindTransition,
		lexer.KindIdent,
		lexer.KindCloseTagStart,
		lexer.KindIdent,
		lexer.KindTagEnd,
		lexer.KindEOF,
	}, kinds(tokens))

	name := tokens[5]
	assert.Equal(t, "name", name.Content)
	assert.Equal(t, source.NewSpan(10, 4), name.Span)
}

func TestImplicitExpressionWithMembersAndCalls(t *testing.T) {
	tokens := lex(t, "@user.Name.First(a, b)!")

	assert.Equal(t, []lexer.Kind{
		lexer.KindTransition,
		lexer.KindIdent, // user
		lexer.KindDot,
		lexer.KindIdent, // Name
		lexer.KindDot,
		lexer.KindIdent, // First
		lexer.KindLeftParen,
		lexer.KindCodeContent, // a, b
		lexer.KindRightParen,
		lexer.KindText, // !
		lexer.KindEOF,
	}, kinds(tokens))
}

func TestExplicitExpression(t *testing.T) {
	tokens := lex(t, `@(x + (y * 2))rest`)

	assert.Equal(t, []lexer.Kind{
		lexer.KindTransition,
		lexer.KindLeftParen,
		lexer.KindCodeContent,
		lexer.KindLeftParen,
		lexer.KindCodeContent,
		lexer.KindRightParen,
		lexer.KindRightParen,
		lexer.KindText,
		lexer.KindEOF,
	}, kinds(tokens))
}

func TestCodeBlockBraceBalancing(t *testing.T) {
	tokens := lex(t, "@{ if x { y() } }after")

	got := kinds(tokens)
	require.Equal(t, lexer.KindTransition, got[0])
	require.Equal(t, lexer.KindLeftBrace, got[1])

	// the final markup text proves the lexer fell back out of code mode at
	// the balanced closing brace
	last := tokens[len(tokens)-2]
	assert.Equal(t, lexer.KindText, last.Kind)
	assert.Equal(t, "after", last.Content)
}

func TestMarkupInsideCodeBlockReturnsToCode(t *testing.T) {
	tokens := lex(t, "@{ x := 1 <b>bold</b> y := 2 }")

	var contents []string
	for _, tok := range tokens {
		if tok.Kind == lexer.KindCodeContent {
			contents = append(contents, tok.Content)
		}
	}
	joined := strings.Join(contents, "")
	assert.Contains(t, joined, "x := 1")
	assert.Contains(t, joined, "y := 2", "code mode must resume after the nested element")

	var sawBold bool
	for _, tok := range tokens {
		if tok.Kind == lexer.KindIdent && tok.Content == "b" {
			sawBold = true
		}
	}
	assert.True(t, sawBold, "nested element must lex as markup")
}

func TestVoidElementInsideCodeBlockReturnsToCode(t *testing.T) {
	// void tags open no scope regardless of case
	for _, tag := range []string{"<br>", "<BR>", "<Br/>"} {
		tokens := lex(t, "@{ x := 1 "+tag+" y := 2 }after")

		var contents []string
		for _, tok := range tokens {
			if tok.Kind == lexer.KindCodeContent {
				contents = append(contents, tok.Content)
			}
		}
		joined := strings.Join(contents, "")
		assert.Contains(t, joined, "y := 2", "code mode must resume after %s", tag)

		last := tokens[len(tokens)-2]
		assert.Equal(t, lexer.KindText, last.Kind, "after %s", tag)
		assert.Equal(t, "after", last.Content, "after %s", tag)
	}
}

func TestEscapedTransition(t *testing.T) {
	tokens := lex(t, "a@@b")

	assert.Equal(t, []lexer.Kind{
		lexer.KindText, // a
		lexer.KindText, // @@
		lexer.KindText, // b
		lexer.KindEOF,
	}, kinds(tokens))
	assert.Equal(t, "@@", tokens[1].Content)
}

func TestComments(t *testing.T) {
	tokens := lex(t, "<!-- html -->@* razr *@")

	assert.Equal(t, []lexer.Kind{
		lexer.KindMarkupComment,
		lexer.KindRazrComment,
		lexer.KindEOF,
	}, kinds(tokens))
	assert.Equal(t, "<!-- html -->", tokens[0].Content)
	assert.Equal(t, "@* razr *@", tokens[1].Content)
}

func TestAttributes(t *testing.T) {
	tokens := lex(t, `<input type="text" checked value=plain />`)

	assert.Equal(t, []lexer.Kind{
		lexer.KindOpenTagStart,
		lexer.KindIdent, // input
		lexer.KindWhitespace,
		lexer.KindIdent, // type
		lexer.KindEquals,
		lexer.KindQuotedLiteral, // "text"
		lexer.KindWhitespace,
		lexer.KindIdent, // checked
		lexer.KindWhitespace,
		lexer.KindIdent, // value
		lexer.KindEquals,
		lexer.KindQuotedLiteral, // plain
		lexer.KindWhitespace,
		lexer.KindSelfClosingTagEnd,
		lexer.KindEOF,
	}, kinds(tokens))
	assert.Equal(t, `"text"`, tokens[5].Content)
	assert.Equal(t, "plain", tokens[11].Content)
}

func TestMalformedInputEmitsErrorTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "unterminated markup comment", text: "<!-- never closed"},
		{name: "unterminated razr comment", text: "@* never closed"},
		{name: "unterminated string in code", text: `@{ s := "oops }`},
		{name: "unterminated tag", text: "<div <span>"},
		{name: "dangling sigil", text: "a @ b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := lex(t, tt.text)

			var sawError bool
			for _, tok := range tokens {
				if tok.Kind == lexer.KindError {
					sawError = true
				}
			}
			assert.True(t, sawError, "expected an error token")
			assert.Equal(t, lexer.KindEOF, tokens[len(tokens)-1].Kind, "lexing must continue to EOF")
		})
	}
}

// Full fidelity: concatenated token content reproduces the source exactly.
func TestFullFidelity(t *testing.T) {
	inputs := []string{
		"",
		"plain text only",
		"<p>Hello @name</p>",
		"<div class=\"a\"><span>@user.Name</span></div>",
		"@{ var x = compute(1, \"two\") <em>nested</em> done() }",
		"@model Foo\n@inherits Base<TModel>\n<h1>@title</h1>",
		"<!-- c --> @* rc *@ @@ @(1 + 2)",
		"broken <div <span> @' \r\nwindows\r\nlines",
		"<ul>\n  <li>@items[0]</li>\n</ul>\n",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tokens := lex(t, input)

			var sb strings.Builder
			for _, tok := range tokens {
				sb.WriteString(tok.Content)
			}
			require.Equal(t, input, sb.String())

			// spans must be contiguous and monotonically increasing
			offset := 0
			for _, tok := range tokens {
				require.Equal(t, offset, tok.Span.Start, "token %v", tok)
				offset = tok.Span.End()
			}
		})
	}
}
