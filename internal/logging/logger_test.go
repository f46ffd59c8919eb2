package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("server").With("session", "abc").
		Warn(context.Background(), errors.New("boom"), "submit rejected", "errors", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "submit rejected", entry["msg"])
	assert.Equal(t, "server", entry["component"])
	assert.Equal(t, "abc", entry["session"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, float64(3), entry["errors"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Info(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(LevelDebug)
	logger.With("k", "v").Debug(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=v")
}

func TestDanglingFieldIsDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	logger.Info(context.Background(), "odd", "a", 1, "dangling")

	assert.Contains(t, buf.String(), "a=1")
	assert.NotContains(t, buf.String(), "dangling")
}
