package ir

// ArgKind is the grammar of one directive argument.
type ArgKind uint8

const (
	// ArgNone forbids arguments.
	ArgNone ArgKind = iota
	// ArgTypeName is a Go type expression, taken verbatim to end of line.
	ArgTypeName
	// ArgNamespaceName is a single dotted name or import path.
	ArgNamespaceName
	// ArgMemberPair is a type followed by a member name.
	ArgMemberPair
	// ArgIdentifier is a single plain identifier.
	ArgIdentifier
)

// Directive describes one registered directive keyword.
type Directive struct {
	Keyword     string
	Kind        NodeKind
	ArgKinds    []ArgKind
	Description string
}

// Directives is the fixed registry, in keyword order. The parser recognizes
// these keywords at document level; lowering applies the argument grammars.
var Directives = []Directive{
	{Keyword: "inherits", Kind: KindInheritsDirective, ArgKinds: []ArgKind{ArgTypeName},
		Description: "sets the base type of the generated template type"},
	{Keyword: "inject", Kind: KindInjectDirective, ArgKinds: []ArgKind{ArgMemberPair},
		Description: "declares an injected property: a type and a member name"},
	{Keyword: "model", Kind: KindModelDirective, ArgKinds: []ArgKind{ArgTypeName},
		Description: "declares the model type the template renders"},
	{Keyword: "namespace", Kind: KindNamespaceDirective, ArgKinds: []ArgKind{ArgNamespaceName},
		Description: "overrides the package of the generated code"},
	{Keyword: "page", Kind: KindPageDirective, ArgKinds: []ArgKind{ArgNone},
		Description: "marks the template as a routable page"},
	{Keyword: "section", Kind: KindSectionDirective, ArgKinds: []ArgKind{ArgIdentifier},
		Description: "names a content section"},
	{Keyword: "using", Kind: KindUsing, ArgKinds: []ArgKind{ArgNamespaceName},
		Description: "adds an import to the generated code"},
}

// Lookup returns the directive registered for keyword.
func Lookup(keyword string) (Directive, bool) {
	for _, d := range Directives {
		if d.Keyword == keyword {
			return d, true
		}
	}
	return Directive{}, false
}

// Keywords lists every registered directive keyword.
func Keywords() []string {
	out := make([]string, len(Directives))
	for i, d := range Directives {
		out[i] = d.Keyword
	}
	return out
}
