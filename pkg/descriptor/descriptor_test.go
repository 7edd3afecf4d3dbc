package descriptor_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/go-razr/pkg/descriptor"
)

func buildHelper(t *testing.T, mutate func(b *descriptor.Builder)) *descriptor.TagHelper {
	t.Helper()
	b := descriptor.NewBuilder(descriptor.KindTagHelper, "EmailTagHelper", "MyApp.Helpers")
	b.TypeName("MyApp.Helpers.EmailTagHelper")
	b.Rule(descriptor.TagMatchingRule{TagName: "email"})
	if mutate != nil {
		mutate(b)
	}
	d, err := b.Build()
	require.NoError(t, err)
	return d
}

func TestChecksumStability(t *testing.T) {
	a := buildHelper(t, nil)
	b := buildHelper(t, nil)
	assert.Equal(t, a.Checksum(), b.Checksum())
	assert.True(t, a.Equal(b))
}

func TestChecksumChangesWithAnyField(t *testing.T) {
	base := buildHelper(t, nil)
	variants := map[string]func(b *descriptor.Builder){
		"display_name":  func(b *descriptor.Builder) { b.DisplayName("Email") },
		"documentation": func(b *descriptor.Builder) { b.Documentation("renders a mailto link") },
		"extra_rule":    func(b *descriptor.Builder) { b.Rule(descriptor.TagMatchingRule{TagName: "mail"}) },
		"rule_parent": func(b *descriptor.Builder) {
			b.Rule(descriptor.TagMatchingRule{TagName: "email", ParentTag: "footer"})
		},
		"bound_attribute": func(b *descriptor.Builder) {
			b.BoundAttribute(descriptor.BoundAttribute{Name: "address", PropertyName: "Address", TypeName: "string"})
		},
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			d := buildHelper(t, mutate)
			assert.NotEqual(t, base.Checksum(), d.Checksum())
			assert.False(t, base.Equal(d))
		})
	}
}

func TestBuildValidation(t *testing.T) {
	_, err := descriptor.NewBuilder(descriptor.KindTagHelper, "", "asm").
		Rule(descriptor.TagMatchingRule{TagName: "x"}).Build()
	require.Error(t, err)

	_, err = descriptor.NewBuilder(descriptor.KindTagHelper, "NoRules", "asm").Build()
	require.Error(t, err)

	_, err = descriptor.NewBuilder(descriptor.KindTagHelper, "EmptyTag", "asm").
		Rule(descriptor.TagMatchingRule{}).Build()
	require.Error(t, err)

	_, err = descriptor.NewBuilder(descriptor.KindTagHelper, "DupAttr", "asm").
		Rule(descriptor.TagMatchingRule{TagName: "x"}).
		BoundAttribute(descriptor.BoundAttribute{Name: "color"}).
		BoundAttribute(descriptor.BoundAttribute{Name: "Color"}).
		Build()
	require.Error(t, err)
}

func TestBuiltDescriptorIndependentOfBuilder(t *testing.T) {
	b := descriptor.NewBuilder(descriptor.KindTagHelper, "Frozen", "asm").
		Rule(descriptor.TagMatchingRule{TagName: "a"})
	d, err := b.Build()
	require.NoError(t, err)

	b.Rule(descriptor.TagMatchingRule{TagName: "b"})
	assert.Len(t, d.Rules, 1)
}

func TestRuleMatching(t *testing.T) {
	tests := []struct {
		name   string
		rule   descriptor.TagMatchingRule
		tag    string
		parent string
		attrs  []descriptor.Attribute
		want   bool
	}{
		{
			name: "exact_tag",
			rule: descriptor.TagMatchingRule{TagName: "email"},
			tag:  "email", want: true,
		},
		{
			name: "tag_case_insensitive_by_default",
			rule: descriptor.TagMatchingRule{TagName: "email"},
			tag:  "EMAIL", want: true,
		},
		{
			name: "case_sensitive_rejects",
			rule: descriptor.TagMatchingRule{TagName: "MyApp.Button", CaseSensitive: true},
			tag:  "myapp.button", want: false,
		},
		{
			name: "wildcard_matches_anything",
			rule: descriptor.TagMatchingRule{TagName: "*"},
			tag:  "whatever", want: true,
		},
		{
			name:   "parent_required",
			rule:   descriptor.TagMatchingRule{TagName: "item", ParentTag: "list"},
			tag:    "item",
			parent: "list", want: true,
		},
		{
			name:   "parent_mismatch",
			rule:   descriptor.TagMatchingRule{TagName: "item", ParentTag: "list"},
			tag:    "item",
			parent: "div", want: false,
		},
		{
			name: "required_attribute_presence",
			rule: descriptor.TagMatchingRule{TagName: "*", Attributes: []descriptor.RequiredAttribute{
				{Name: "asp-for"},
			}},
			tag:   "input",
			attrs: []descriptor.Attribute{{Name: "asp-for", Value: "Name"}},
			want:  true,
		},
		{
			name: "required_attribute_missing",
			rule: descriptor.TagMatchingRule{TagName: "*", Attributes: []descriptor.RequiredAttribute{
				{Name: "asp-for"},
			}},
			tag:   "input",
			attrs: []descriptor.Attribute{{Name: "type", Value: "text"}},
			want:  false,
		},
		{
			name: "attribute_name_prefix",
			rule: descriptor.TagMatchingRule{TagName: "*", Attributes: []descriptor.RequiredAttribute{
				{Name: "asp-", NameComparison: descriptor.ComparisonPrefix},
			}},
			tag:   "a",
			attrs: []descriptor.Attribute{{Name: "asp-route-id", Value: "7"}},
			want:  true,
		},
		{
			name: "attribute_value_full",
			rule: descriptor.TagMatchingRule{TagName: "input", Attributes: []descriptor.RequiredAttribute{
				{Name: "type", Value: "email", ValueComparison: descriptor.ValueComparisonFull},
			}},
			tag:   "input",
			attrs: []descriptor.Attribute{{Name: "type", Value: "email"}},
			want:  true,
		},
		{
			name: "attribute_value_full_mismatch",
			rule: descriptor.TagMatchingRule{TagName: "input", Attributes: []descriptor.RequiredAttribute{
				{Name: "type", Value: "email", ValueComparison: descriptor.ValueComparisonFull},
			}},
			tag:   "input",
			attrs: []descriptor.Attribute{{Name: "type", Value: "text"}},
			want:  false,
		},
		{
			name: "attribute_value_prefix",
			rule: descriptor.TagMatchingRule{TagName: "a", Attributes: []descriptor.RequiredAttribute{
				{Name: "href", Value: "https://", ValueComparison: descriptor.ValueComparisonPrefix},
			}},
			tag:   "a",
			attrs: []descriptor.Attribute{{Name: "href", Value: "https://example.com"}},
			want:  true,
		},
		{
			name: "attribute_value_suffix",
			rule: descriptor.TagMatchingRule{TagName: "img", Attributes: []descriptor.RequiredAttribute{
				{Name: "src", Value: ".png", ValueComparison: descriptor.ValueComparisonSuffix},
			}},
			tag:   "img",
			attrs: []descriptor.Attribute{{Name: "src", Value: "logo.png"}},
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Matches(tt.tag, tt.parent, tt.attrs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoundAttributeIndexer(t *testing.T) {
	plain := descriptor.BoundAttribute{Name: "color"}
	assert.True(t, plain.MatchesName("Color"))
	assert.False(t, plain.MatchesName("colors"))

	idx := descriptor.BoundAttribute{IsIndexer: true, IndexerPrefix: "data-", Name: "data"}
	assert.True(t, idx.MatchesName("data-id"))
	assert.False(t, idx.MatchesName("data-"))
	assert.Equal(t, "id", idx.IndexerKey("data-id"))
	assert.Equal(t, "", idx.IndexerKey("other"))
}

func TestCacheDedupesByChecksum(t *testing.T) {
	cache := descriptor.NewCache()
	a := buildHelper(t, nil)
	b := buildHelper(t, nil)
	require.NotSame(t, a, b)

	got := cache.GetOrAdd(a)
	assert.Same(t, a, got)
	got = cache.GetOrAdd(b)
	assert.Same(t, a, got)
	assert.Equal(t, 1, cache.Len())

	cached, ok := cache.Get(a.Checksum())
	require.True(t, ok)
	assert.Same(t, a, cached)
}

func TestCacheConcurrentInserts(t *testing.T) {
	cache := descriptor.NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := descriptor.NewBuilder(descriptor.KindComponent, "Shared", "asm")
			d.Rule(descriptor.TagMatchingRule{TagName: "shared"})
			built, err := d.Build()
			assert.NoError(t, err)
			cache.GetOrAdd(built)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
}
