package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with console format", func(t *testing.T) {
		cfg := &Config{
			Level:      "debug",
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}

		log, err := New(cfg)
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("creates logger with json format", func(t *testing.T) {
		cfg := &Config{
			Level:      "warn",
			Format:     "json",
			Output:     "stderr",
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}

		log, err := New(cfg)
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	})
}

func TestNewForEnvironment(t *testing.T) {
	t.Run("production uses json config", func(t *testing.T) {
		log, err := NewForEnvironment("production")
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("development uses console config", func(t *testing.T) {
		log, err := NewForEnvironment("development")
		require.NoError(t, err)
		require.NotNil(t, log)
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("FromContext returns nop logger when absent", func(t *testing.T) {
		log := FromContext(context.Background())
		require.NotNil(t, log)
	})

	t.Run("WithContext round-trips the logger", func(t *testing.T) {
		base := zap.NewNop()
		ctx := WithContext(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("WithRequestID enriches context and logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		base := zap.New(core)

		ctx, enriched := WithRequestID(context.Background(), base, "req-123")
		enriched.Info("hello")

		assert.Equal(t, "req-123", GetRequestID(ctx))
		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "req-123", recorded.All()[0].ContextMap()["request_id"])
	})

	t.Run("WithChatID enriches context and logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		base := zap.New(core)

		ctx, enriched := WithChatID(context.Background(), base, "chat-42")
		enriched.Info("hello")

		assert.Equal(t, "chat-42", GetChatID(ctx))
		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "chat-42", recorded.All()[0].ContextMap()["chat_id"])
	})

	t.Run("L injects chat_id into every entry", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		base := zap.New(core)

		ctx := WithContext(context.Background(), base)
		ctx = context.WithValue(ctx, ChatIDKey, "chat-7")

		L(ctx).Info("payment recorded")

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "chat-7", recorded.All()[0].ContextMap()["chat_id"])
	})

	t.Run("GetTraceID returns empty without span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
