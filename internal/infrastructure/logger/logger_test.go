package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("creates logger for each format", func(t *testing.T) {
		for _, format := range []string{"json", "console"} {
			cfg := DefaultConfig()
			cfg.Format = format
			l, err := New(cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		}
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
		assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
		assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	})
}

func TestContext(t *testing.T) {
	t.Run("round trips logger through context", func(t *testing.T) {
		base := zap.NewNop()
		ctx := WithContext(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("missing logger yields no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("request id and user are carried", func(t *testing.T) {
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")
		ctx = WithUser(ctx, "ops")
		assert.Equal(t, "req-42", GetRequestID(ctx))
		assert.Equal(t, "ops", GetUser(ctx))
	})

	t.Run("L enriches log entries with context fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-7")

		L(ctx).Info("hello")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-7", fields["request_id"])
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs requests with status", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)

		r := gin.New()
		r.Use(GinMiddleware(zap.New(core)))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "HTTP Request", entry.Message)
		assert.Equal(t, int64(http.StatusNoContent), entry.ContextMap()["status"])
	})

	t.Run("request context carries logger and request id", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)

		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set("request_id", "req-9"); c.Next() })
		r.Use(GinMiddleware(zap.New(core)))
		r.GET("/ping", func(c *gin.Context) {
			ctx := c.Request.Context()
			assert.Equal(t, "req-9", GetRequestID(ctx))
			L(ctx).Info("from handler")
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.GreaterOrEqual(t, logs.Len(), 1)
		assert.Equal(t, "req-9", logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("recovery turns panics into 500s", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)

		r := gin.New()
		r.Use(Recovery(zap.New(core)))
		r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Panic recovered", logs.All()[0].Message)
	})
}
