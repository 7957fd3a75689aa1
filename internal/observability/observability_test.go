package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/troubleshooter/internal/observability"
)

func TestEventBus_Publish(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bus := observability.NewEventBus(zap.New(core))

	ctx := observability.WithRequestID(context.Background(), "req-1")
	ctx = observability.WithFormat(ctx, "json")

	bus.Publish(ctx, "troubleshoot.stage", map[string]interface{}{
		"stage":           "parsed",
		"recommendations": 2,
	})

	entries := logs.All()
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, "troubleshoot.stage", entry.Message)
	require.Equal(t, zapcore.DebugLevel, entry.Level)

	fields := entry.ContextMap()
	require.Equal(t, "troubleshoot.stage", fields["event"])
	require.Equal(t, "parsed", fields["stage"])
	require.EqualValues(t, 2, fields["recommendations"])
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "json", fields["format"])
}

func TestInitLogger(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		logger, err := observability.InitLogger(&observability.LogConfig{Level: "debug"})
		require.NoError(t, err)
		require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := observability.InitLogger(&observability.LogConfig{Level: "verbose"})
		require.Error(t, err)
	})
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, observability.GetRequestID(ctx))

	ctx = observability.WithTraceID(ctx, observability.GenerateTraceID())
	ctx = observability.WithModel(ctx, "gpt-3.5-turbo")

	require.Len(t, observability.GetTraceID(ctx), 32)
	require.Equal(t, "gpt-3.5-turbo", observability.GetModel(ctx))
	require.NotEqual(t, observability.GenerateRequestID(), observability.GenerateRequestID())
}
