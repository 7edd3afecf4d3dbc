package razr_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/go-razr/pkg/razr"
)

func TestWriteEscaped(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, razr.WriteEscaped(&sb, `<b>&"bold"</b>`))
	assert.Equal(t, "&lt;b&gt;&amp;&#34;bold&#34;&lt;/b&gt;", sb.String())

	sb.Reset()
	require.NoError(t, razr.WriteEscaped(&sb, 42))
	assert.Equal(t, "42", sb.String())
}

func TestRunTagHelperDefaultsToBody(t *testing.T) {
	var sb strings.Builder
	err := razr.RunTagHelper(context.Background(), &sb, &razr.Invocation{
		TagName: "unknown",
		Helpers: []string{"NobodyRegisteredThis"},
		Body: func(ctx context.Context, w io.Writer) error {
			return razr.WriteString(w, "content")
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "content", sb.String())
}

type upperHelper struct{}

func (upperHelper) Process(ctx context.Context, w io.Writer, inv *razr.Invocation) error {
	var sb strings.Builder
	if inv.Body != nil {
		if err := inv.Body(ctx, &sb); err != nil {
			return err
		}
	}
	return razr.WriteString(w, strings.ToUpper(sb.String()))
}

func TestRunTagHelperDispatchesByName(t *testing.T) {
	razr.Register("UpperTagHelper", upperHelper{})

	var sb strings.Builder
	err := razr.RunTagHelper(context.Background(), &sb, &razr.Invocation{
		TagName: "shout",
		Helpers: []string{"UpperTagHelper"},
		Body: func(ctx context.Context, w io.Writer) error {
			return razr.WriteString(w, "quiet")
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "QUIET", sb.String())
}
