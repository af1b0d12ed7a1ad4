package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"dinedash/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	log := New("orders", &buf, slog.LevelInfo)
	ctx := context.WithValue(context.Background(), common.RequestIDKey, "req-1")

	log.Error(ctx, "order.create", "create failed", errors.New("boom"), slog.String("order_id", "o-1"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "create failed", entry["msg"])
	assert.Equal(t, "orders", entry["service"])
	assert.Equal(t, "order.create", entry["action"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "o-1", entry["order_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("orders", &buf, slog.LevelInfo)

	log.Debug(context.Background(), "noise", "dropped")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "rate_limit", "kept")
	assert.NotZero(t, buf.Len())
	_, hasRequestID := decode(t, buf.Bytes())["request_id"]
	assert.False(t, hasRequestID)
}

func decode(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &entry))
	return entry
}
