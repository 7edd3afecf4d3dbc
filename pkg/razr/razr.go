// Package razr is the runtime the generated code links against: output
// helpers and the tag helper invocation protocol.
package razr

import (
	"context"
	"fmt"
	"html"
	"io"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// WriteString writes literal markup.
func WriteString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// WriteEscaped writes a template expression value, HTML-escaped. Values
// implementing fmt.Stringer render via String; everything else goes through
// fmt.Sprint.
func WriteEscaped(w io.Writer, v any) error {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(v)
	}
	_, err := io.WriteString(w, html.EscapeString(s))
	return err
}

// Body renders the element content of a tag helper invocation.
type Body func(ctx context.Context, w io.Writer) error

// Attribute is one attribute of an invoked element. Bound marks attributes
// that target a helper property rather than plain HTML output.
type Attribute struct {
	Name  string
	Value string
	Bound bool
}

// Invocation is everything the generated code knows about one tag helper
// element at the call site.
type Invocation struct {
	TagName    string
	Helpers    []string
	Attributes []Attribute
	Body       Body
}

// TagHelper is a runtime tag helper implementation.
type TagHelper interface {
	Process(ctx context.Context, w io.Writer, inv *Invocation) error
}

var (
	helpersMu sync.RWMutex
	helpers   = map[string]TagHelper{}
)

// Register installs the runtime implementation for a helper name. Generated
// code references helpers by descriptor name.
func Register(name string, h TagHelper) {
	helpersMu.Lock()
	defer helpersMu.Unlock()
	helpers[name] = h
}

// RunTagHelper dispatches an invocation to the first registered helper in
// inv.Helpers. With no implementation registered the element's body renders
// unchanged, so templates degrade instead of failing.
func RunTagHelper(ctx context.Context, w io.Writer, inv *Invocation) error {
	helpersMu.RLock()
	var impl TagHelper
	for _, name := range inv.Helpers {
		if h, ok := helpers[name]; ok {
			impl = h
			break
		}
	}
	helpersMu.RUnlock()

	if impl == nil {
		if inv.Body == nil {
			return nil
		}
		return inv.Body(ctx, w)
	}
	if err := impl.Process(ctx, w, inv); err != nil {
		return errors.Errorf("tag helper <%s>: %w", inv.TagName, err)
	}
	return nil
}
