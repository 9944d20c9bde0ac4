package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTraceIDContext(t *testing.T) {
	t.Run("adds provided trace ID to context", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "test-trace-123")
		assert.Equal(t, "test-trace-123", GetTraceID(ctx))
	})

	t.Run("blank ID leaves context untouched", func(t *testing.T) {
		base := context.Background()
		ctx := WithTraceID(base, "")

		assert.Equal(t, base, ctx)
		assert.Equal(t, "", GetTraceID(ctx))
	})

	t.Run("preserves other context values", func(t *testing.T) {
		type testKey string
		key := testKey("test-key")

		ctx := context.WithValue(context.Background(), key, "test-value")
		ctx = WithTraceID(ctx, "trace-456")

		assert.Equal(t, "trace-456", GetTraceID(ctx))

		extracted, ok := ctx.Value(key).(string)
		require.True(t, ok)
		assert.Equal(t, "test-value", extracted)
	})
}

func TestGetTraceID(t *testing.T) {
	t.Run("returns trace ID from context", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "test-trace-789")
		assert.Equal(t, "test-trace-789", GetTraceID(ctx))
	})

	t.Run("returns empty string when absent", func(t *testing.T) {
		assert.Equal(t, "", GetTraceID(context.Background()))
	})
}
