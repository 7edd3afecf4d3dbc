package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/go-razr/pkg/source"
)

func TestPositionAt(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		wantLine int
		wantChar int
	}{
		{
			name:     "empty text",
			text:     "",
			offset:   0,
			wantLine: 0,
			wantChar: 0,
		},
		{
			name:     "single line, start",
			text:     "Hello, World!",
			offset:   0,
			wantLine: 0,
			wantChar: 0,
		},
		{
			name:     "single line, middle",
			text:     "Hello, World!",
			offset:   7,
			wantLine: 0,
			wantChar: 7,
		},
		{
			name:     "second line",
			text:     "Hello\nWorld\nTest",
			offset:   8,
			wantLine: 1,
			wantChar: 2,
		},
		{
			name:     "first char of a line",
			text:     "Hello\nWorld",
			offset:   6,
			wantLine: 1,
			wantChar: 0,
		},
		{
			name:     "newline belongs to the line it ends",
			text:     "Hello\nWorld",
			offset:   5,
			wantLine: 0,
			wantChar: 5,
		},
		{
			name:     "offset past end clamps",
			text:     "ab\ncd",
			offset:   99,
			wantLine: 1,
			wantChar: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := source.NewDocument(tt.text, "test.razr", "")
			line, char := doc.PositionAt(tt.offset)
			assert.Equal(t, tt.wantLine, line, "line")
			assert.Equal(t, tt.wantChar, char, "character")
		})
	}
}

func TestOffsetAtRoundTrip(t *testing.T) {
	text := "first line\nsecond line\n\nfourth"
	doc := source.NewDocument(text, "test.razr", "")
	for offset := 0; offset <= len(text); offset++ {
		line, char := doc.PositionAt(offset)
		require.Equal(t, offset, doc.OffsetAt(line, char), "offset %d", offset)
	}
}

func TestChecksum(t *testing.T) {
	a := source.NewDocument("<p>hi</p>", "a.razr", "")
	b := source.NewDocument("<p>hi</p>", "b.razr", "")
	c := source.NewDocument("<p>hi!</p>", "c.razr", "")

	assert.Equal(t, a.Checksum(), b.Checksum(), "same content, same checksum")
	assert.NotEqual(t, a.Checksum(), c.Checksum(), "different content, different checksum")
	assert.Len(t, a.ChecksumString(), 64)
}

func TestLineSpan(t *testing.T) {
	doc := source.NewDocument("ab\ncdef\n", "t.razr", "")

	assert.Equal(t, source.NewSpan(0, 2), doc.LineSpan(0))
	assert.Equal(t, source.NewSpan(3, 4), doc.LineSpan(1))
	assert.Equal(t, "cdef", doc.SpanText(doc.LineSpan(1)))
	// trailing newline opens an empty final line
	assert.Equal(t, source.NewSpan(8, 0), doc.LineSpan(2))
}

func TestSpanOps(t *testing.T) {
	s := source.NewSpan(4, 3)

	assert.Equal(t, 7, s.End())
	assert.True(t, s.Contains(4))
	assert.True(t, s.Contains(6))
	assert.False(t, s.Contains(7))

	assert.True(t, s.Overlaps(source.NewSpan(6, 10)))
	assert.False(t, s.Overlaps(source.NewSpan(7, 2)))
	assert.True(t, s.Overlaps(source.NewSpan(5, 0)), "empty span inside")

	assert.Equal(t, source.NewSpan(2, 8), s.Cover(source.NewSpan(2, 8)))
	assert.Equal(t, source.NewSpan(4, 6), s.Cover(source.NewSpan(9, 1)))
}
