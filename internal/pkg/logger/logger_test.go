// internal/pkg/logger/logger_test.go
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}

	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	chained := NewRedactionHandler(NewContextHandler(handler))

	return &Logger{Logger: slog.New(chained), config: &LogConfig{Level: "debug", Format: "json"}}, buf
}

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestWithContextAddsRequestAttrs(t *testing.T) {
	l, buf := captureLogger(t)

	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-123")
	ctx = context.WithValue(ctx, ContextKeyMethod, "GET")
	ctx = context.WithValue(ctx, ContextKeyStatusCode, 200)

	l.WithContext(ctx).InfoContext(ctx, "request_completed")

	line := logLine(t, buf)
	assert.Equal(t, "req-123", line["request_id"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, float64(200), line["status_code"])
}

func TestRedactionMasksCredentials(t *testing.T) {
	t.Run("denied_keys_are_masked", func(t *testing.T) {
		l, buf := captureLogger(t)

		l.Info("token issued", slog.String("api_token", "sp_admin_token"))

		line := logLine(t, buf)
		assert.Equal(t, "***REDACTED***", line["api_token"])
	})

	t.Run("inline_values_are_masked", func(t *testing.T) {
		l, buf := captureLogger(t)

		l.Info("auth failed", slog.String("header", "Authorization: Bearer sp_viewer_token"))

		line := logLine(t, buf)
		assert.NotContains(t, line["header"], "sp_viewer_token")
	})

	t.Run("plain_attrs_pass_through", func(t *testing.T) {
		l, buf := captureLogger(t)

		l.Info("item updated", slog.String("sku", "FG-WDG-001"), slog.Int("quantity", 12))

		line := logLine(t, buf)
		assert.Equal(t, "FG-WDG-001", line["sku"])
		assert.Equal(t, float64(12), line["quantity"])
	})
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
}
