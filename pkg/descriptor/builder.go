package descriptor

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Builder assembles a TagHelper in two phases: mutate, then Build. Build
// validates, copies every slice, and freezes the checksum, so the returned
// descriptor is independent of later builder mutation.
type Builder struct {
	kind            Kind
	name            string
	assemblyName    string
	typeName        string
	displayName     string
	documentation   string
	rules           []TagMatchingRule
	boundAttributes []BoundAttribute
}

func NewBuilder(kind Kind, name, assemblyName string) *Builder {
	return &Builder{
		kind:         kind,
		name:         name,
		assemblyName: assemblyName,
	}
}

func (b *Builder) TypeName(t string) *Builder {
	b.typeName = t
	return b
}

func (b *Builder) DisplayName(d string) *Builder {
	b.displayName = d
	return b
}

func (b *Builder) Documentation(d string) *Builder {
	b.documentation = d
	return b
}

func (b *Builder) Rule(r TagMatchingRule) *Builder {
	b.rules = append(b.rules, r)
	return b
}

func (b *Builder) BoundAttribute(a BoundAttribute) *Builder {
	b.boundAttributes = append(b.boundAttributes, a)
	return b
}

// Build validates the accumulated state and returns the frozen descriptor.
func (b *Builder) Build() (*TagHelper, error) {
	if b.name == "" {
		return nil, errors.New("descriptor name is required")
	}
	if len(b.rules) == 0 {
		return nil, errors.Errorf("descriptor %q has no tag matching rules", b.name)
	}
	for i, r := range b.rules {
		if r.TagName == "" {
			return nil, errors.Errorf("descriptor %q: rule %d has an empty tag name", b.name, i)
		}
	}
	seen := make(map[string]bool, len(b.boundAttributes))
	for _, a := range b.boundAttributes {
		key := strings.ToLower(a.Name)
		if a.IsIndexer {
			key = "indexer:" + strings.ToLower(a.IndexerPrefix)
		}
		if seen[key] {
			return nil, errors.Errorf("descriptor %q: duplicate bound attribute %q", b.name, a.Name)
		}
		seen[key] = true
	}

	d := &TagHelper{
		Kind:            b.kind,
		Name:            b.name,
		AssemblyName:    b.assemblyName,
		TypeName:        b.typeName,
		DisplayName:     b.displayName,
		Documentation:   b.documentation,
		Rules:           append([]TagMatchingRule(nil), b.rules...),
		BoundAttributes: append([]BoundAttribute(nil), b.boundAttributes...),
	}
	for i := range d.Rules {
		d.Rules[i].Attributes = append([]RequiredAttribute(nil), d.Rules[i].Attributes...)
	}
	d.checksum = computeChecksum(d)
	return d, nil
}

// computeChecksum hashes a canonical, length-prefixed encoding of every
// descriptor field. Any field change, including slice order, changes the
// checksum.
func computeChecksum(d *TagHelper) Checksum {
	h := sha256.New()
	hashString(h, string(d.Kind))
	hashString(h, d.Name)
	hashString(h, d.AssemblyName)
	hashString(h, d.TypeName)
	hashString(h, d.DisplayName)
	hashString(h, d.Documentation)

	hashInt(h, len(d.Rules))
	for _, r := range d.Rules {
		hashString(h, r.TagName)
		hashString(h, r.ParentTag)
		hashBool(h, r.CaseSensitive)
		hashInt(h, len(r.Attributes))
		for _, a := range r.Attributes {
			hashString(h, a.Name)
			hashInt(h, int(a.NameComparison))
			hashString(h, a.Value)
			hashInt(h, int(a.ValueComparison))
		}
	}

	hashInt(h, len(d.BoundAttributes))
	for _, a := range d.BoundAttributes {
		hashString(h, a.Name)
		hashString(h, a.PropertyName)
		hashString(h, a.TypeName)
		hashBool(h, a.IsIndexer)
		hashString(h, a.IndexerPrefix)
		hashBool(h, a.IsEnum)
	}

	var sum Checksum
	h.Sum(sum[:0])
	return sum
}

func hashString(h hash.Hash, s string) {
	hashInt(h, len(s))
	h.Write([]byte(s))
}

func hashInt(h hash.Hash, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}

func hashBool(h hash.Hash, b bool) {
	if b {
		hashInt(h, 1)
	} else {
		hashInt(h, 0)
	}
}
