package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "test")

	logger.Info("query done", "rows", 10, "err", errors.New("boom"), "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "query done", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "test", fields["component"])
	assert.EqualValues(t, 10, fields["rows"])
	assert.Equal(t, "boom", fields["err"])
	assert.Contains(t, fields, "dangling")
}

func TestLoggerLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := FromZap(zap.New(core))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown")

	assert.Equal(t, 2, logs.Len())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}

	for input, expected := range cases {
		assert.Equal(t, expected, ParseLevel(input), input)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() { logger.Info("nothing") })
}
