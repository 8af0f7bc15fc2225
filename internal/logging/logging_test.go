package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithSinkWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithSink("debug", zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("chapter skipped", zap.String("chapter_id", "CH-0003"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "chapter skipped", entry["msg"])
	assert.Equal(t, "CH-0003", entry["chapter_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewWithSinkFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithSink("warn", zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty")
	assert.Error(t, err)
}

func TestNewDefaultsToInfo(t *testing.T) {
	logger, err := New("")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
