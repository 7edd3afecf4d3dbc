package descriptor

import "strings"

// WildcardTagName matches any element name.
const WildcardTagName = "*"

// NameComparison selects how a required attribute's name is compared.
type NameComparison uint8

const (
	ComparisonFull NameComparison = iota
	ComparisonPrefix
)

// ValueComparison selects how a required attribute's value is compared.
// ValueComparisonNone requires only that the attribute is present.
type ValueComparison uint8

const (
	ValueComparisonNone ValueComparison = iota
	ValueComparisonFull
	ValueComparisonPrefix
	ValueComparisonSuffix
)

// RequiredAttribute is one attribute constraint of a matching rule.
type RequiredAttribute struct {
	Name            string
	NameComparison  NameComparison
	Value           string
	ValueComparison ValueComparison
}

// Matches reports whether an element attribute satisfies the constraint.
// Attribute names compare case-insensitively; values compare exactly.
func (r RequiredAttribute) Matches(name, value string) bool {
	switch r.NameComparison {
	case ComparisonPrefix:
		if len(name) <= len(r.Name) || !strings.EqualFold(name[:len(r.Name)], r.Name) {
			return false
		}
	default:
		if !strings.EqualFold(name, r.Name) {
			return false
		}
	}
	switch r.ValueComparison {
	case ValueComparisonFull:
		return value == r.Value
	case ValueComparisonPrefix:
		return strings.HasPrefix(value, r.Value)
	case ValueComparisonSuffix:
		return strings.HasSuffix(value, r.Value)
	default:
		return true
	}
}

// Attribute is the name/value view of one element attribute as the binder
// sees it.
type Attribute struct {
	Name  string
	Value string
}

// TagMatchingRule decides whether a helper applies to an element. All three
// filters (tag name, parent tag, required attributes) must pass.
type TagMatchingRule struct {
	// TagName is the element name the rule targets, or WildcardTagName.
	TagName string
	// ParentTag restricts matching to elements whose immediate parent has
	// this name; empty means any parent.
	ParentTag string
	// CaseSensitive switches tag and parent name comparison to exact,
	// which fully qualified component names require.
	CaseSensitive bool
	Attributes    []RequiredAttribute
}

// Matches applies the rule to an element with the given tag name, parent tag
// name (empty at document level), and attributes.
func (r TagMatchingRule) Matches(tag, parent string, attrs []Attribute) bool {
	if r.TagName != WildcardTagName && !r.equalName(r.TagName, tag) {
		return false
	}
	if r.ParentTag != "" && !r.equalName(r.ParentTag, parent) {
		return false
	}
	for _, req := range r.Attributes {
		if !anyAttributeMatches(req, attrs) {
			return false
		}
	}
	return true
}

func (r TagMatchingRule) equalName(want, got string) bool {
	if r.CaseSensitive {
		return want == got
	}
	return strings.EqualFold(want, got)
}

func anyAttributeMatches(req RequiredAttribute, attrs []Attribute) bool {
	for _, a := range attrs {
		if req.Matches(a.Name, a.Value) {
			return true
		}
	}
	return false
}
