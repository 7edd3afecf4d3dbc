package position

import (
	"fmt"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/walteh/go-razr/pkg/source"
)

// Place is a 0-based position in a document. Character counts grapheme
// clusters, not bytes, so it matches what an editor shows as a column.
type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// PlaceOf converts a byte offset into a Place using the document's line
// index.
func PlaceOf(doc *source.Document, offset int) Place {
	line, _ := doc.PositionAt(offset)
	lineStart := doc.OffsetAt(line, 0)
	prefix := doc.SpanText(source.NewSpan(lineStart, offset-lineStart))
	return Place{Line: line, Character: graphemes(prefix)}
}

// RangeOf converts a byte span into a line/character range.
func RangeOf(doc *source.Document, span source.Span) Range {
	return Range{
		Start: PlaceOf(doc, span.Start),
		End:   PlaceOf(doc, span.End()),
	}
}

func graphemes(s string) int {
	n, err := textseg.TokenCount([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil {
		// TokenCount only fails on scanner misuse; fall back to bytes.
		return len(s)
	}
	return n
}
