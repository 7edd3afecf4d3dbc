package diagnostic_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/go-razr/pkg/diagnostic"
	"github.com/walteh/go-razr/pkg/source"
)

func TestCollectionSortIsDeterministic(t *testing.T) {
	doc := source.NewDocument("<p>\n<q>\n</q>\n</p>\n", "t.razr", "")

	build := func(order []int) *diagnostic.Collection {
		all := []diagnostic.Diagnostic{
			diagnostic.New(doc, "RZ1002", diagnostic.Error, source.NewSpan(4, 3), "mismatched tag"),
			diagnostic.New(doc, "RZ2001", diagnostic.Warning, source.NewSpan(4, 3), "duplicate bound attribute"),
			diagnostic.New(doc, "RZ1001", diagnostic.Error, source.NewSpan(0, 3), "unterminated tag"),
			diagnostic.New(doc, "RZ3003", diagnostic.Info, source.NewSpan(8, 4), "extra model directive"),
		}
		var c diagnostic.Collection
		for _, i := range order {
			c.Add(all[i])
		}
		return c.SortedCopy()
	}

	a := build([]int{0, 1, 2, 3})
	b := build([]int{3, 2, 1, 0})

	require.Equal(t, a.Items(), b.Items())
	assert.Equal(t, "RZ1001", a.Items()[0].Code)
	// same span: error before warning
	assert.Equal(t, "RZ1002", a.Items()[1].Code)
	assert.Equal(t, "RZ2001", a.Items()[2].Code)
}

func TestHasErrors(t *testing.T) {
	doc := source.NewDocument("x", "t.razr", "")

	var c diagnostic.Collection
	assert.False(t, c.HasErrors())

	c.Add(diagnostic.New(doc, "RZ3003", diagnostic.Warning, source.NewSpan(0, 1), "warn"))
	assert.False(t, c.HasErrors())

	c.Add(diagnostic.New(doc, "RZ1001", diagnostic.Error, source.NewSpan(0, 1), "err"))
	assert.True(t, c.HasErrors())
}

func TestVSCodeFormatter(t *testing.T) {
	doc := source.NewDocument("<p>hello\nworld</p>", "t.razr", "")

	var c diagnostic.Collection
	c.Add(diagnostic.New(doc, "RZ1002", diagnostic.Error, source.NewSpan(9, 5), "mismatched tag"))

	out, err := diagnostic.NewVSCodeFormatter().Format(&c)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.EqualValues(t, 1, decoded[0]["severity"])
	assert.Equal(t, "RZ1002", decoded[0]["code"])

	rng := decoded[0]["range"].(map[string]any)
	start := rng["start"].(map[string]any)
	assert.EqualValues(t, 1, start["line"])
	assert.EqualValues(t, 0, start["character"])
}

func TestTextFormatter(t *testing.T) {
	doc := source.NewDocument("<p>", "views/page.razr", "")

	var c diagnostic.Collection
	c.Add(diagnostic.New(doc, "RZ1001", diagnostic.Error, source.NewSpan(0, 3), "unterminated tag"))

	out, err := diagnostic.NewTextFormatter().Format(&c)
	require.NoError(t, err)
	assert.Equal(t, "views/page.razr:1:1: error: unterminated tag [RZ1001]\n", string(out))
}
