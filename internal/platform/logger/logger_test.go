package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/abgdnv/inventory/internal/platform/contextkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ToLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "", expected: slog.LevelInfo},
		{input: "verbose", expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToLevel(tc.input))
		})
	}
}

func Test_New_AddsRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := New(&buf, "info").With("component", "test")
	ctx := contextkeys.WithRequestID(context.Background(), "req-1")

	// when
	log.InfoContext(ctx, "hello")
	log.Debug("hidden")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "test", record["component"])
	assert.Equal(t, "hello", record["msg"])
}

func Test_New_AddsItemID(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := New(&buf, "debug")
	ctx := contextkeys.WithItemID(contextkeys.WithRequestID(context.Background(), "req-2"), "42")

	// when
	log.WarnContext(ctx, "photo missing")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-2", record["request_id"])
	assert.Equal(t, "42", record["item_id"])
	assert.Equal(t, "WARN", record["level"])
	assert.Contains(t, record, "source")
}

func Test_New_WithoutRequestContext(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := New(&buf, "info").WithGroup("janitor")

	// when
	log.Info("drained", "count", 2)

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "request_id")
	assert.NotContains(t, record, "item_id")
	assert.Equal(t, map[string]any{"count": float64(2)}, record["janitor"])
}
