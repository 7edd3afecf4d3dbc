// Package binder matches tag helper descriptors against the elements of a
// syntax tree. Binding is a single walk: each element is checked against
// every descriptor's rules with the element's tag name, its parent's tag
// name, and its attributes.
package binder

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/go-razr/pkg/descriptor"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
	"github.com/walteh/go-razr/pkg/syntax"
)

// DefaultOptOutPrefix is the marker that suppresses tag helper matching for
// a single element.
const DefaultOptOutPrefix = '!'

type Options struct {
	// OptOutPrefix overrides the opt-out marker; zero means
	// DefaultOptOutPrefix.
	OptOutPrefix byte
}

// Bind walks the tree and resolves which helpers apply to which elements.
// Elements that match nothing do not appear in the result; non-matching is
// never a diagnostic.
func Bind(ctx context.Context, tree *syntax.Tree, helpers []*descriptor.TagHelper, opts Options) (*Result, error) {
	prefix := opts.OptOutPrefix
	if prefix == 0 {
		prefix = DefaultOptOutPrefix
	}

	b := &binding{
		helpers: helpers,
		prefix:  prefix,
		result: &Result{
			byNode: make(map[*syntax.Node]*ElementBinding),
		},
	}
	if err := b.walk(ctx, tree.Document, tree.Root, ""); err != nil {
		return nil, err
	}
	b.result.Diagnostics.Sort()

	zerolog.Ctx(ctx).Debug().
		Str("file", tree.Document.FilePath()).
		Int("helpers", len(helpers)).
		Int("bound_elements", len(b.result.Elements)).
		Msg("bound tag helpers")
	return b.result, nil
}

type binding struct {
	helpers []*descriptor.TagHelper
	prefix  byte
	result  *Result
}

func (b *binding) walk(ctx context.Context, doc *source.Document, n *syntax.Node, parentTag string) error {
	childParent := parentTag
	if n.Kind == syntax.KindMarkupElement {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("binding canceled: %w", err)
		}
		name := n.TagName()
		optedOut := name != "" && name[0] == b.prefix
		stripped := strings.TrimPrefix(name, string(b.prefix))

		// an opted-out element never matches, not even a wildcard rule, but
		// its real name still scopes parent-tag matching for its children
		if !optedOut && name != "" {
			b.bindElement(doc, n, name, parentTag)
		}
		childParent = stripped
	}
	for _, c := range n.Children {
		if err := b.walk(ctx, doc, c, childParent); err != nil {
			return err
		}
	}
	return nil
}

func (b *binding) bindElement(doc *source.Document, n *syntax.Node, name, parentTag string) {
	attrs := n.Attributes()
	ruleAttrs := make([]descriptor.Attribute, len(attrs))
	for i, a := range attrs {
		ruleAttrs[i] = descriptor.Attribute{Name: a.Name, Value: a.Value}
	}

	var matched []*descriptor.TagHelper
	ruleFor := make(map[*descriptor.TagHelper][]*descriptor.TagMatchingRule)
	for _, h := range b.helpers {
		for i := range h.Rules {
			if h.Rules[i].Matches(name, parentTag, ruleAttrs) {
				ruleFor[h] = append(ruleFor[h], &h.Rules[i])
			}
		}
		if len(ruleFor[h]) > 0 {
			matched = append(matched, h)
		}
	}
	if len(matched) == 0 {
		return
	}

	eb := &ElementBinding{
		Node:    n,
		TagName: name,
		Helpers: matched,
		RuleFor: ruleFor,
	}
	b.bindAttributes(doc, eb, attrs)
	b.result.Elements = append(b.result.Elements, eb)
	b.result.byNode[n] = eb
}

// bindAttributes resolves each written attribute against every matched
// helper, recording one target per helper that binds it. Two attributes
// landing on the same property of the same helper is a conflict (RZ2001).
func (b *binding) bindAttributes(doc *source.Document, eb *ElementBinding, attrs []syntax.Attribute) {
	type target struct {
		helper *descriptor.TagHelper
		bound  *descriptor.BoundAttribute
		key    string
	}
	seen := make(map[target]string)

	for _, a := range attrs {
		ab := AttributeBinding{Name: a.Name, Value: a.Value}
		for _, h := range eb.Helpers {
			bound := h.BoundAttributeFor(a.Name)
			if bound == nil {
				continue
			}
			ab.Targets = append(ab.Targets, AttributeTarget{Helper: h, Bound: bound})

			tgt := target{helper: h, bound: bound, key: strings.ToLower(bound.IndexerKey(a.Name))}
			if prev, dup := seen[tgt]; dup {
				eb.Diagnostics = append(eb.Diagnostics, diagnostic.New(
					doc, "RZ2001", diagnostic.Error, a.Node.Span(),
					"attribute "+a.Name+" binds the same property as "+prev+" on helper "+h.Name))
			} else {
				seen[tgt] = a.Name
			}
		}
		eb.Attributes = append(eb.Attributes, ab)
	}
	for _, d := range eb.Diagnostics {
		b.result.Diagnostics.Add(d)
	}
}
