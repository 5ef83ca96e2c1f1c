package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitanshuser50/ContentFuse/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Run("json output includes static attrs", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithFormat(logger.FormatJSON),
			logger.WithAttr(slog.String("service", "contentfuse")),
		)

		log.Info("hello")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "contentfuse", record["service"])
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithLevel(slog.LevelWarn),
		)

		log.Info("dropped")
		assert.Zero(t, buf.Len())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("context extractor injects attrs", func(t *testing.T) {
		type ctxKey struct{}

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				if v, ok := ctx.Value(ctxKey{}).(string); ok {
					return slog.String("request_id", v), true
				}
				return slog.Attr{}, false
			}),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-123")
		log.InfoContext(ctx, "with context")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "req-123", record["request_id"])
	})

	t.Run("environment presets", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithEnvironment("production", "contentfuse"),
		)

		log.Debug("dropped in production")
		assert.Zero(t, buf.Len())
	})
}
