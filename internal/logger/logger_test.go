package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The logger is global, so these tests don't run in parallel.

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("warn", "json", &buf))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	LogInfo("hidden %d", 1)
	assert.Empty(t, buf.String())

	LogError(errors.New("boom"), "turn %d failed", 3)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "turn 3 failed", entry["message"])
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("bogus", "console", &buf))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	LogInfo("session %s started", "abc")
	assert.Contains(t, buf.String(), "session abc started")
}

func TestInit_UnknownFormat(t *testing.T) {
	assert.Error(t, Init("info", "xml", &bytes.Buffer{}))
}

func TestLogPanic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("debug", "json", &buf))
	buf.Reset()

	LogPanic("kaboom")
	assert.Contains(t, buf.String(), "kaboom")
	assert.Contains(t, buf.String(), "stack")
}
