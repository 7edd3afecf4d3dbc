// Package descriptor models tag helper metadata: what a helper is called,
// which elements it applies to, and which attributes it binds. Descriptors
// are immutable once built and carry a content checksum, so equality checks
// and caching never need deep comparison.
package descriptor

import (
	"crypto/sha256"
	"encoding/hex"
)

// Kind distinguishes the flavors of tag helper a descriptor can describe.
type Kind string

const (
	KindTagHelper     Kind = "tag-helper"
	KindComponent     Kind = "component"
	KindViewComponent Kind = "view-component"
)

// Checksum is the sha256 over a descriptor's canonical encoding. Two
// descriptors with equal checksums are structurally identical.
type Checksum = [sha256.Size]byte

// TagHelper describes one tag helper. Values are produced by a Builder and
// must not be mutated afterwards; the checksum is computed at build time and
// would go stale.
type TagHelper struct {
	Kind            Kind
	Name            string
	AssemblyName    string
	TypeName        string
	DisplayName     string
	Documentation   string
	Rules           []TagMatchingRule
	BoundAttributes []BoundAttribute

	checksum Checksum
}

// Checksum returns the descriptor's content checksum.
func (d *TagHelper) Checksum() Checksum {
	return d.checksum
}

// ChecksumString returns the checksum as lowercase hex.
func (d *TagHelper) ChecksumString() string {
	return hex.EncodeToString(d.checksum[:])
}

// Equal reports structural equality, implemented as checksum equality.
func (d *TagHelper) Equal(other *TagHelper) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.checksum == other.checksum
}

// BoundAttributeFor resolves the bound attribute an element attribute name
// targets, honoring indexer prefixes. Returns nil when the name binds
// nothing on this helper.
func (d *TagHelper) BoundAttributeFor(name string) *BoundAttribute {
	for i := range d.BoundAttributes {
		if d.BoundAttributes[i].MatchesName(name) {
			return &d.BoundAttributes[i]
		}
	}
	return nil
}
