package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelFlagValue(t *testing.T) {
	var level LogLevel
	require.NoError(t, level.Set("warn"))
	assert.Equal(t, LevelWarn, level)
	assert.Equal(t, "warn", level.String())
	assert.Equal(t, "level", level.Type())

	assert.Error(t, level.Set("loud"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Format: "text", Output: &buf})

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	logger.Warn(context.Background(), nil, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerIncludesComponentAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	logger.WithComponent("compiler").Error(context.Background(), errors.New("boom"), "failed")

	out := buf.String()
	assert.Contains(t, out, `"component":"compiler"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"msg":"failed"`)
}

func TestLoggerWithFieldsPersist(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	child := logger.With("template", "button")
	child.Info(context.Background(), "compiled", "parts", 3)

	out := buf.String()
	assert.Contains(t, out, `"template":"button"`)
	assert.Contains(t, out, `"parts":3`)
}
