package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	LogOperation(newJSONLogger(&buf), "feed_loaded", slog.Int("rows", 12))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "feed_loaded", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 12, entry["rows"])
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	LogError(newJSONLogger(&buf), "load failed", errors.New("boom"), slog.String("table", "stops"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "stops", entry["table"])
}

func TestLogHTTPRequestLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{503, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(slog.LevelInfo.String()+"_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			LogHTTPRequest(newJSONLogger(&buf), "GET", "/api/lines", tt.status, 1.5)

			entry := decodeLine(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "/api/lines", entry["path"])
			assert.EqualValues(t, tt.status, entry["status"])
		})
	}
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	logger := newJSONLogger(&buf)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("close failed")
}

func TestSafeCloseWithLogging(t *testing.T) {
	var buf bytes.Buffer
	c := &failingCloser{}
	SafeCloseWithLogging(c, newJSONLogger(&buf), "body")

	assert.True(t, c.closed)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "body", entry["resource"])
}

type fakeTx struct{ err error }

func (f fakeTx) Rollback() error { return f.err }

func TestSafeRollbackWithLogging(t *testing.T) {
	var buf bytes.Buffer
	SafeRollbackWithLogging(fakeTx{err: sql.ErrTxDone}, newJSONLogger(&buf), "insert")
	assert.Zero(t, buf.Len(), "finished transactions are not an error")

	SafeRollbackWithLogging(fakeTx{err: errors.New("disk")}, newJSONLogger(&buf), "insert")
	assert.Contains(t, buf.String(), "disk")
}

func TestNewLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter(&buf, true, false).Info("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))

	buf.Reset()
	NewLoggerWithWriter(&buf, false, false).Debug("hidden")
	assert.Zero(t, buf.Len())

	NewLoggerWithWriter(&buf, false, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
