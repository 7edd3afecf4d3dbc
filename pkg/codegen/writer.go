package codegen

import (
	"fmt"
	"strings"

	"github.com/walteh/go-razr/pkg/source"
)

// SourceMapping links a range of generated code back to the template text it
// came from.
type SourceMapping struct {
	GeneratedSpan source.Span
	OriginalSpan  source.Span
	OriginalFile  string
}

// Writer builds the generated source, tracking indentation, the current
// generated offset, and the source mappings recorded along the way.
type Writer struct {
	sb          strings.Builder
	indent      int
	atLineStart bool
	mappings    []SourceMapping

	doc *source.Document
}

func NewWriter(doc *source.Document) *Writer {
	return &Writer{doc: doc, atLineStart: true}
}

func (w *Writer) Indent()  { w.indent++ }
func (w *Writer) Outdent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Write appends text, inserting the current indentation at each line start.
func (w *Writer) Write(s string) {
	for s != "" {
		if w.atLineStart && s[0] != '\n' {
			w.sb.WriteString(strings.Repeat("\t", w.indent))
			w.atLineStart = false
		}
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			w.sb.WriteString(s)
			return
		}
		w.sb.WriteString(s[:i+1])
		w.atLineStart = true
		s = s[i+1:]
	}
}

func (w *Writer) WriteLine(s string) {
	w.Write(s)
	w.Write("\n")
}

// WriteMapped appends text and records that it renders the given original
// span.
func (w *Writer) WriteMapped(original source.Span, text string) {
	if w.atLineStart && text != "" && text[0] != '\n' {
		w.sb.WriteString(strings.Repeat("\t", w.indent))
		w.atLineStart = false
	}
	start := w.sb.Len()
	w.sb.WriteString(text)
	w.atLineStart = strings.HasSuffix(text, "\n")
	w.mappings = append(w.mappings, SourceMapping{
		GeneratedSpan: source.NewSpan(start, len(text)),
		OriginalSpan:  original,
		OriginalFile:  w.doc.FilePath(),
	})
}

// LinePragma emits a //line comment pointing at the original position of
// span. Pragmas must start at column one, so any current indentation is
// bypassed for this line.
func (w *Writer) LinePragma(span source.Span) {
	if !w.atLineStart {
		w.sb.WriteByte('\n')
	}
	line, col := w.doc.PositionAt(span.Start)
	fmt.Fprintf(&w.sb, "//line %s:%d:%d\n", w.doc.FilePath(), line+1, col+1)
	w.atLineStart = true
}

// Offset is the number of bytes generated so far.
func (w *Writer) Offset() int {
	return w.sb.Len()
}

func (w *Writer) String() string {
	return w.sb.String()
}

func (w *Writer) Mappings() []SourceMapping {
	return w.mappings
}
