package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	parsed, err := ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, parsed)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestObservedFields(t *testing.T) {
	logger, logs := Observed(LevelInfo)
	scoped := logger.With(String("component", "ledger"))

	scoped.Debug("hidden")
	scoped.Warn("lease conflict", Int("x", 3), Error(errors.New("busy")))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "lease conflict", entries[0].Message)
	assert.Equal(t, "ledger", ctx["component"])
	assert.Equal(t, int64(3), ctx["x"])
	assert.Equal(t, "busy", ctx["error"])
}

func TestSetLevelPropagates(t *testing.T) {
	logger, logs := Observed(LevelError)
	child := logger.With(String("k", "v"))

	child.Info("dropped")
	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, child.GetLevel())
	child.Debug("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestNopAndProvide(t *testing.T) {
	n := Nop()
	n.Error("nothing")
	assert.NotNil(t, Provide())
}
