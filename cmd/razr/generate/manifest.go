package generate

import (
	"bytes"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/go-razr/pkg/descriptor"
)

// Manifest declares the tag helpers available to a set of templates. It
// loads from HCL or YAML, matching on file extension.
type Manifest struct {
	Helpers []*HelperEntry `json:"helpers" hcl:"helper,block" yaml:"helpers"`
}

type HelperEntry struct {
	Name          string            `json:"name" hcl:"name,label" yaml:"name"`
	Kind          string            `json:"kind,omitempty" hcl:"kind,optional" yaml:"kind,omitempty"`
	Assembly      string            `json:"assembly,omitempty" hcl:"assembly,optional" yaml:"assembly,omitempty"`
	TypeName      string            `json:"type_name,omitempty" hcl:"type_name,optional" yaml:"type_name,omitempty"`
	DisplayName   string            `json:"display_name,omitempty" hcl:"display_name,optional" yaml:"display_name,omitempty"`
	Documentation string            `json:"documentation,omitempty" hcl:"documentation,optional" yaml:"documentation,omitempty"`
	Rules         []*RuleEntry      `json:"rules" hcl:"rule,block" yaml:"rules"`
	Attributes    []*AttributeEntry `json:"attributes,omitempty" hcl:"attribute,block" yaml:"attributes,omitempty"`
}

type RuleEntry struct {
	Tag           string                    `json:"tag" hcl:"tag,attr" yaml:"tag"`
	Parent        string                    `json:"parent,omitempty" hcl:"parent,optional" yaml:"parent,omitempty"`
	CaseSensitive bool                      `json:"case_sensitive,omitempty" hcl:"case_sensitive,optional" yaml:"case_sensitive,omitempty"`
	Require       []*RequiredAttributeEntry `json:"require,omitempty" hcl:"require,block" yaml:"require,omitempty"`
}

type RequiredAttributeEntry struct {
	Name       string `json:"name" hcl:"name,label" yaml:"name"`
	NameMatch  string `json:"name_match,omitempty" hcl:"name_match,optional" yaml:"name_match,omitempty"`
	Value      string `json:"value,omitempty" hcl:"value,optional" yaml:"value,omitempty"`
	ValueMatch string `json:"value_match,omitempty" hcl:"value_match,optional" yaml:"value_match,omitempty"`
}

type AttributeEntry struct {
	Name     string `json:"name" hcl:"name,label" yaml:"name"`
	Property string `json:"property,omitempty" hcl:"property,optional" yaml:"property,omitempty"`
	Type     string `json:"type,omitempty" hcl:"type,optional" yaml:"type,omitempty"`
	Indexer  bool   `json:"indexer,omitempty" hcl:"indexer,optional" yaml:"indexer,omitempty"`
	Prefix   string `json:"prefix,omitempty" hcl:"prefix,optional" yaml:"prefix,omitempty"`
	Enum     bool   `json:"enum,omitempty" hcl:"enum,optional" yaml:"enum,omitempty"`
}

// LoadManifest reads a helper manifest from path (supports YAML and HCL).
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading manifest file: %w", err)
	}
	return parseManifest(data, path)
}

func parseManifest(data []byte, path string) (*Manifest, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		var m Manifest
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&m); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
		return &m, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}
	var m Manifest
	diags = gohcl.DecodeBody(hclFile.Body, ctx, &m)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &m, nil
}

// Build constructs descriptors for every helper entry, deduping through the
// shared cache.
func (m *Manifest) Build(cache *descriptor.Cache) ([]*descriptor.TagHelper, error) {
	out := make([]*descriptor.TagHelper, 0, len(m.Helpers))
	for _, h := range m.Helpers {
		d, err := h.build()
		if err != nil {
			return nil, err
		}
		out = append(out, cache.GetOrAdd(d))
	}
	return out, nil
}

func (h *HelperEntry) build() (*descriptor.TagHelper, error) {
	kind := descriptor.Kind(h.Kind)
	if h.Kind == "" {
		kind = descriptor.KindTagHelper
	}
	b := descriptor.NewBuilder(kind, h.Name, h.Assembly).
		TypeName(h.TypeName).
		DisplayName(h.DisplayName).
		Documentation(h.Documentation)

	for _, r := range h.Rules {
		rule := descriptor.TagMatchingRule{
			TagName:       r.Tag,
			ParentTag:     r.Parent,
			CaseSensitive: r.CaseSensitive,
		}
		for _, req := range r.Require {
			nameCmp, err := parseNameComparison(req.NameMatch)
			if err != nil {
				return nil, errors.Errorf("helper %q: %w", h.Name, err)
			}
			valueCmp, err := parseValueComparison(req.ValueMatch)
			if err != nil {
				return nil, errors.Errorf("helper %q: %w", h.Name, err)
			}
			rule.Attributes = append(rule.Attributes, descriptor.RequiredAttribute{
				Name:            req.Name,
				NameComparison:  nameCmp,
				Value:           req.Value,
				ValueComparison: valueCmp,
			})
		}
		b.Rule(rule)
	}

	for _, a := range h.Attributes {
		b.BoundAttribute(descriptor.BoundAttribute{
			Name:          a.Name,
			PropertyName:  a.Property,
			TypeName:      a.Type,
			IsIndexer:     a.Indexer,
			IndexerPrefix: a.Prefix,
			IsEnum:        a.Enum,
		})
	}

	d, err := b.Build()
	if err != nil {
		return nil, errors.Errorf("building descriptor %q: %w", h.Name, err)
	}
	return d, nil
}

func parseNameComparison(s string) (descriptor.NameComparison, error) {
	switch s {
	case "", "full":
		return descriptor.ComparisonFull, nil
	case "prefix":
		return descriptor.ComparisonPrefix, nil
	}
	return 0, errors.Errorf("unknown name_match %q (want full or prefix)", s)
}

func parseValueComparison(s string) (descriptor.ValueComparison, error) {
	switch s {
	case "", "none":
		return descriptor.ValueComparisonNone, nil
	case "full":
		return descriptor.ValueComparisonFull, nil
	case "prefix":
		return descriptor.ValueComparisonPrefix, nil
	case "suffix":
		return descriptor.ValueComparisonSuffix, nil
	}
	return 0, errors.Errorf("unknown value_match %q (want none, full, prefix, or suffix)", s)
}
