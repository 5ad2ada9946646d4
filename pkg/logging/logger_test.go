package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	logger.Info("hello", F("answer", 42))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, float64(42), entries[0].Fields["answer"])
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelWarn)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, LevelWarn, entries[0].Level)
	assert.Equal(t, LevelError, entries[1].Level)
}

func TestLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "verbose")

	logger.Debug("dropped")
	logger.Info("kept")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestWithFieldsIncludedOnEveryEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo).WithFields(F("flow_id", "demo"))

	logger.Info("first")
	logger.Info("second", F("row", 3))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "demo", entries[0].Fields["flow_id"])
	assert.Equal(t, "demo", entries[1].Fields["flow_id"])
	assert.Equal(t, float64(3), entries[1].Fields["row"])
}

func TestLogFlowExecution(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	logger.LogFlowExecution("demo", "exec-1", "started", map[string]any{"nodes": 5})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "flow execution", entries[0].Message)
	assert.Equal(t, "demo", entries[0].Fields["flow_id"])
	assert.Equal(t, "exec-1", entries[0].Fields["execution_id"])
	assert.Equal(t, "started", entries[0].Fields["event"])
	assert.Equal(t, float64(5), entries[0].Fields["nodes"])
}

func TestLogNodeExecution(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	logger.LogNodeExecution("demo", "exec-1", "greet", "completed", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "node execution", entries[0].Message)
	assert.Equal(t, "greet", entries[0].Fields["node_id"])
	assert.Equal(t, "completed", entries[0].Fields["event"])
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("ignored", F("k", "v"))
	logger.LogFlowExecution("f", "e", "started", nil)
	assert.Equal(t, logger, logger.WithFields(F("k", "v")))
}
