package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tokensmith/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewFromZap(zap.New(core)).With(map[string]any{"request_id": "abc"})

	log.Info("generated", map[string]any{"token_type": "Standard", "error": errors.New("boom")})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "generated", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["request_id"])
	assert.Equal(t, "Standard", ctx["token_type"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestNewZapLoggerLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		_, err := NewZapLogger(types.LoggingConfig{Level: level})
		assert.NoError(t, err, level)
	}

	_, err := NewZapLogger(types.LoggingConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	assert.NotPanics(t, func() {
		l.With(map[string]any{"a": 1}).Error("ignored", nil)
	})
}
