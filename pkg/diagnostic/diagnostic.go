package diagnostic

import (
	"sort"

	"github.com/walteh/go-razr/pkg/position"
	"github.com/walteh/go-razr/pkg/source"
)

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
)

func (s DiagnosticSeverity) rank() int {
	switch s {
	case Error:
		return 2
	case Warning:
		return 1
	default:
		return 0
	}
}

// Diagnostic is a single message attached to a span of one source file.
//
// Codes are stable strings: RZ1xxx lexical/syntax, RZ2xxx binding, RZ3xxx
// lowering/directives, RZ9xxx compiler configuration.
type Diagnostic struct {
	Code     string
	Message  string
	Severity DiagnosticSeverity
	File     string
	Span     source.Span
	Range    position.Range
}

// New builds a diagnostic for a span of doc, deriving the line/character
// range from the document's line index.
func New(doc *source.Document, code string, severity DiagnosticSeverity, span source.Span, message string) Diagnostic {
	return Diagnostic{
		Code:     code,
		Message:  message,
		Severity: severity,
		File:     doc.FilePath(),
		Span:     span,
		Range:    position.RangeOf(doc, span),
	}
}

// Collection is the append-only diagnostics sink shared by every compilation
// phase. The zero value is ready to use.
type Collection struct {
	items []Diagnostic
}

func (c *Collection) Add(d Diagnostic) {
	c.items = append(c.items, d)
}

func (c *Collection) Extend(other *Collection) {
	if other == nil {
		return
	}
	c.items = append(c.items, other.items...)
}

func (c *Collection) Len() int {
	return len(c.items)
}

// Items returns the underlying slice; callers must not modify it.
func (c *Collection) Items() []Diagnostic {
	return c.items
}

func (c *Collection) HasErrors() bool {
	for i := range c.items {
		if c.items[i].Severity == Error {
			return true
		}
	}
	return false
}

// SortedCopy returns a new collection with the same diagnostics in sorted
// order, leaving the receiver untouched.
func (c *Collection) SortedCopy() *Collection {
	out := &Collection{items: append([]Diagnostic(nil), c.items...)}
	out.Sort()
	return out
}

// Sort orders diagnostics by file, span start, span end, severity
// (descending) and code, so output is deterministic regardless of which
// phase contributed what.
func (c *Collection) Sort() {
	sort.SliceStable(c.items, func(i, j int) bool {
		di, dj := c.items[i], c.items[j]
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Span.Start != dj.Span.Start {
			return di.Span.Start < dj.Span.Start
		}
		if di.Span.End() != dj.Span.End() {
			return di.Span.End() < dj.Span.End()
		}
		if di.Severity != dj.Severity {
			return di.Severity.rank() > dj.Severity.rank()
		}
		return di.Code < dj.Code
	})
}
