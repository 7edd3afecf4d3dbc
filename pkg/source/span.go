package source

import "fmt"

// Span is a half-open byte range into a document's text. Offsets are the
// canonical position unit everywhere in the compiler; line/column pairs are
// derived from a Document's line index only at the edges (diagnostics,
// source maps).
type Span struct {
	Start  int
	Length int
}

func NewSpan(start, length int) Span {
	return Span{Start: start, Length: length}
}

func (s Span) End() int {
	return s.Start + s.Length
}

func (s Span) Empty() bool {
	return s.Length == 0
}

func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End()
}

func (s Span) Overlaps(other Span) bool {
	if s.Empty() {
		return other.Start <= s.Start && s.Start <= other.End()
	}
	if other.Empty() {
		return s.Start <= other.Start && other.Start <= s.End()
	}
	return s.Start < other.End() && other.Start < s.End()
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End()
	if other.End() > end {
		end = other.End()
	}
	return Span{Start: start, Length: end - start}
}

func (s Span) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End())
}
