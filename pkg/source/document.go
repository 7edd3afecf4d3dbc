package source

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Document wraps the raw text of one compilation input. It is created once
// per input and never mutated; every later phase shares it read-only.
type Document struct {
	text         string
	path         string
	relativePath string

	// lineStarts[i] is the byte offset at which line i begins. lineStarts[0]
	// is always 0; a line begins after every '\n'.
	lineStarts []int

	checksum [sha256.Size]byte
}

// NewDocument builds a document from raw text. path is the file identity used
// in diagnostics and source mappings; relativePath is the project-relative
// form, which may be empty.
func NewDocument(text, path, relativePath string) *Document {
	d := &Document{
		text:         text,
		path:         path,
		relativePath: relativePath,
		checksum:     sha256.Sum256([]byte(text)),
	}
	d.lineStarts = append(d.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	return d
}

func (d *Document) Text() string {
	return d.text
}

func (d *Document) Len() int {
	return len(d.text)
}

func (d *Document) Path() string {
	return d.path
}

func (d *Document) RelativePath() string {
	return d.relativePath
}

// FilePath returns the best identity for user-facing output: the relative
// path when one was supplied, the absolute path otherwise.
func (d *Document) FilePath() string {
	if d.relativePath != "" {
		return d.relativePath
	}
	return d.path
}

func (d *Document) Checksum() [sha256.Size]byte {
	return d.checksum
}

func (d *Document) ChecksumString() string {
	return hex.EncodeToString(d.checksum[:])
}

func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// PositionAt converts a byte offset into a 0-based (line, character) pair via
// binary search over the line index. Offsets past the end of the document
// clamp to the final position.
func (d *Document) PositionAt(offset int) (line, character int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	// The first line start greater than offset bounds the search; the line
	// containing offset is the one before it.
	line = sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return line, offset - d.lineStarts[line]
}

// OffsetAt converts a 0-based (line, character) pair back into a byte offset.
// Out-of-range lines clamp to the document bounds.
func (d *Document) OffsetAt(line, character int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineStarts) {
		return len(d.text)
	}
	offset := d.lineStarts[line] + character
	if offset > len(d.text) {
		offset = len(d.text)
	}
	return offset
}

// LineSpan returns the span of one line, excluding its trailing newline.
func (d *Document) LineSpan(line int) Span {
	if line < 0 || line >= len(d.lineStarts) {
		return Span{}
	}
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}
	return Span{Start: start, Length: end - start}
}

// SpanText returns the slice of document text covered by span.
func (d *Document) SpanText(s Span) string {
	start := s.Start
	if start < 0 {
		start = 0
	}
	end := s.End()
	if end > len(d.text) {
		end = len(d.text)
	}
	if start >= end {
		return ""
	}
	return d.text[start:end]
}
