package descriptor

import "strings"

// BoundAttribute declares that an element attribute maps onto a property of
// the helper's type rather than being emitted as plain HTML.
type BoundAttribute struct {
	// Name is the attribute name as written in markup, or the full name an
	// indexer prefix was derived from.
	Name         string
	PropertyName string
	TypeName     string
	// IsIndexer marks a dictionary-style attribute: any attribute whose name
	// starts with IndexerPrefix binds, with the remainder as the key.
	IsIndexer     bool
	IndexerPrefix string
	IsEnum        bool
}

// MatchesName reports whether an attribute name written in markup binds to
// this attribute. Comparison is case-insensitive.
func (b BoundAttribute) MatchesName(name string) bool {
	if b.IsIndexer {
		return len(name) > len(b.IndexerPrefix) &&
			strings.EqualFold(name[:len(b.IndexerPrefix)], b.IndexerPrefix)
	}
	return strings.EqualFold(name, b.Name)
}

// IndexerKey returns the dictionary key part of an indexer attribute name;
// empty when the attribute is not an indexer or the name does not bind.
func (b BoundAttribute) IndexerKey(name string) string {
	if !b.IsIndexer || !b.MatchesName(name) {
		return ""
	}
	return name[len(b.IndexerPrefix):]
}
