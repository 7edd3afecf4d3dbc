package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/go-razr/pkg/position"
	"github.com/walteh/go-razr/pkg/source"
)

func TestRangeOf(t *testing.T) {
	tests := []struct {
		name string
		text string
		span source.Span
		want position.Range
	}{
		{
			name: "single line",
			text: "<p>Hello</p>",
			span: source.NewSpan(3, 5),
			want: position.Range{
				Start: position.Place{Line: 0, Character: 3},
				End:   position.Place{Line: 0, Character: 8},
			},
		},
		{
			name: "crossing a newline",
			text: "<p>\nHello\n</p>",
			span: source.NewSpan(4, 5),
			want: position.Range{
				Start: position.Place{Line: 1, Character: 0},
				End:   position.Place{Line: 1, Character: 5},
			},
		},
		{
			name: "multi-byte text counts grapheme clusters",
			text: "héllo wörld",
			span: source.NewSpan(7, 6), // "wörld" in bytes
			want: position.Range{
				Start: position.Place{Line: 0, Character: 6},
				End:   position.Place{Line: 0, Character: 11},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := source.NewDocument(tt.text, "t.razr", "")
			assert.Equal(t, tt.want, position.RangeOf(doc, tt.span))
		})
	}
}
