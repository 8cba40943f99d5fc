package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmorris/prwatch/internal/adapter/observability"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestDefaultLogger_LogInfo_Human(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)

	logger.LogInfo(context.Background(), "watch primed", map[string]interface{}{
		"tracked":  12,
		"interval": "30s",
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "watch primed")
	assert.Contains(t, output, "interval=30s")
	assert.Contains(t, output, "tracked=12")
}

func TestDefaultLogger_FieldsSortedInHumanOutput(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)

	logger.LogInfo(context.Background(), "msg", map[string]interface{}{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	})

	output := buf.String()
	assert.Less(t, strings.Index(output, "alpha="), strings.Index(output, "mango="))
	assert.Less(t, strings.Index(output, "mango="), strings.Index(output, "zebra="))
}

func TestDefaultLogger_LogWarning_Human(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)

	logger.LogWarning(context.Background(), "grace re-fetch slow", map[string]interface{}{
		"elapsed": "7s",
	})

	output := buf.String()
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "grace re-fetch slow")
	assert.Contains(t, output, "elapsed=7s")
}

func TestDefaultLogger_JSONFormat(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatJSON)

	logger.LogInfo(context.Background(), "watch reporting", map[string]interface{}{
		"new":   2,
		"polls": 4,
	})

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	require.NotEqual(t, -1, jsonStart, "should contain JSON")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output[jsonStart:]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "watch reporting", entry["message"])
	assert.Equal(t, float64(2), entry["new"])
	assert.Contains(t, entry, "timestamp")
}

func TestDefaultLogger_RespectsLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.LogLevel
		shouldLog bool
	}{
		{"debug level logs info", observability.LogLevelDebug, true},
		{"info level logs info", observability.LogLevelInfo, true},
		{"error level skips info", observability.LogLevelError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			logger := observability.NewDefaultLogger(tt.level, observability.LogFormatHuman)

			logger.LogInfo(context.Background(), "test info", map[string]interface{}{"key": "value"})

			if tt.shouldLog {
				assert.Contains(t, buf.String(), "test info")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestDefaultLogger_ErrorAlwaysLogs(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelError, observability.LogFormatHuman)

	logger.LogError(context.Background(), "fetch failed", map[string]interface{}{"status": 502})

	assert.Contains(t, buf.String(), "[ERROR]")
	assert.Contains(t, buf.String(), "status=502")
}

func TestDefaultLogger_EmptyFieldsNoPairs(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)

	logger.LogInfo(context.Background(), "simple message", nil)

	assert.Contains(t, buf.String(), "simple message")
	assert.NotContains(t, buf.String(), "=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, observability.LogLevelDebug, observability.ParseLevel("debug"))
	assert.Equal(t, observability.LogLevelError, observability.ParseLevel("ERROR"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("info"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("bogus"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, observability.LogFormatJSON, observability.ParseFormat("json"))
	assert.Equal(t, observability.LogFormatHuman, observability.ParseFormat("human"))
	assert.Equal(t, observability.LogFormatHuman, observability.ParseFormat(""))
}

func TestNopLogger_Silent(t *testing.T) {
	buf := capture(t)
	observability.NopLogger{}.LogInfo(context.Background(), "anything", map[string]interface{}{"k": "v"})
	assert.Empty(t, buf.String())
}
