package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("logger on context", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		l := zap.New(core).Sugar().With("requestID", "abc")

		ctx := WithLogger(context.Background(), l)
		FromContext(ctx).Infow("fetched prices", "symbol", "AAPL")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		require.Equal(t, "fetched prices", entry.Message)
		require.Equal(t, "abc", entry.ContextMap()["requestID"])
		require.Equal(t, "AAPL", entry.ContextMap()["symbol"])
	})

	t.Run("falls back to global", func(t *testing.T) {
		require.NotNil(t, FromContext(context.Background()))
	})
}
