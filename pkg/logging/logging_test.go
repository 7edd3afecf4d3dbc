package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewConsoleLogger(&bytes.Buffer{}, "loud", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestConsoleLoggerAnnotatesCaller(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewConsoleLogger(&buf, "debug", false)
	require.NoError(t, err)

	logger.Info().Msg("compiled")

	out := buf.String()
	assert.Contains(t, out, "compiled")
	assert.Contains(t, out, "logging_test.go")
}

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewConsoleLogger(&buf, "error", false)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestSplitFuncName(t *testing.T) {
	pkg, fn := splitFuncName("github.com/walteh/go-razr/pkg/compiler.(*Engine).Compile")
	assert.Equal(t, "github.com/walteh/go-razr/pkg/compiler", pkg)
	assert.Equal(t, "(*Engine).Compile", fn)

	pkg, fn = splitFuncName("main.run")
	assert.Equal(t, "main", pkg)
	assert.Equal(t, "run", fn)
}
