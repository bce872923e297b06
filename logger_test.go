package usersettings

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogLevelDebug)

	logger.Debug("Debug message", "arg1", 123)
	logger.Info("Info message")
	logger.Warn("Warn message", "key_warn", "val_warn")
	logger.Error("Error message", "user_id", int64(42), "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "Debug message", lines[0]["message"])
	assert.Equal(t, float64(123), lines[0]["arg1"])

	assert.Equal(t, "info", lines[1]["level"])
	assert.Equal(t, "warn", lines[2]["level"])
	assert.Equal(t, "val_warn", lines[2]["key_warn"])

	assert.Equal(t, "error", lines[3]["level"])
	assert.Equal(t, float64(42), lines[3]["user_id"])
	assert.Equal(t, "boom", lines[3]["error"])
	assert.Contains(t, lines[3], "time")
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogLevelInfo)

	logger.Debug("hidden")
	logger.Info("shown")
	logger.SetLevel(LogLevelError)
	logger.Warn("hidden too")
	logger.Error("shown too")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown", lines[0]["message"])
	assert.Equal(t, "shown too", lines[1]["message"])
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, LogLevelInfo)

	logger.Info("Registered new user", "user_id", 7)
	out := buf.String()
	assert.Contains(t, out, "Registered new user")
	assert.Contains(t, out, "user_id")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.SetLevel(LogLevelDebug)
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")
}
