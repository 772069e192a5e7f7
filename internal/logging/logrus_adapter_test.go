package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{"debug level with text format", "debug", "text", logrus.DebugLevel},
		{"info level with json format", "info", "json", logrus.InfoLevel},
		{"warn level with text format", "warn", "text", logrus.WarnLevel},
		{"invalid level defaults to info", "chatty", "text", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			if tt.format == "json" {
				assert.IsType(t, &logrus.JSONFormatter{}, adapter.logger.Formatter)
			} else {
				assert.IsType(t, &logrus.TextFormatter{}, adapter.logger.Formatter)
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		existing := logrus.New()
		existing.SetLevel(logrus.DebugLevel)

		adapter, ok := NewLogrusAdapterFromLogger(existing).(*LogrusAdapter)
		require.True(t, ok)
		assert.Equal(t, existing, adapter.logger)
	})

	t.Run("with nil logger creates new one", func(t *testing.T) {
		adapter, ok := NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
		require.True(t, ok)
		assert.NotNil(t, adapter.logger)
	})
}

// captureAdapter returns a debug-level json adapter writing into buf.
func captureAdapter(buf *bytes.Buffer) Logger {
	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetOutput(buf)
	return NewLogrusAdapterFromLogger(base)
}

func TestLogrusAdapterWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := captureAdapter(&buf)

	logger.Info("candidate stored",
		Field{Key: FieldUserID, Value: "u1"},
		Field{Key: FieldConfidence, Value: 0.85})

	out := buf.String()
	assert.Contains(t, out, "candidate stored")
	assert.Contains(t, out, `"user_id":"u1"`)
	assert.Contains(t, out, `"confidence":0.85`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestLogrusAdapterWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := captureAdapter(&buf)

	logger.WithError(errors.New("boom")).Warn("summarization failed")

	out := buf.String()
	assert.Contains(t, out, "summarization failed")
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"level":"warning"`)
}

func TestLogrusAdapterWithFieldsChains(t *testing.T) {
	var buf bytes.Buffer
	logger := captureAdapter(&buf)

	scoped := logger.WithField(FieldUserID, "u1").WithFields(Field{Key: FieldOperation, Value: "import"})
	scoped.Debug("row accepted")
	// the original logger is unaffected by the derived one
	logger.Debug("plain")

	out := buf.String()
	assert.Contains(t, out, `"user_id":"u1"`)
	assert.Contains(t, out, `"operation":"import"`)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.NotContains(t, string(lines[1]), "user_id")
}

func TestMockLoggerCapturesEntries(t *testing.T) {
	mock := &MockLogger{}

	mock.Info("hello", Field{Key: FieldCount, Value: 3})
	mock.WithError(errors.New("boom")).Error("failed")

	assert.True(t, mock.HasEntry("INFO", "hello"))
	assert.False(t, mock.HasEntry("ERROR", "hello"))
	require.Len(t, mock.Entries, 1, "derived loggers keep their own entries")
}
