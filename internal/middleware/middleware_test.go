package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, rl.Allow("a", now))
	assert.True(t, rl.Allow("a", now.Add(time.Second)))
	assert.False(t, rl.Allow("a", now.Add(2*time.Second)))
	assert.True(t, rl.Allow("b", now.Add(2*time.Second)))

	// first hit leaves the window
	assert.True(t, rl.Allow("a", now.Add(time.Minute)))

	rl.sweep(now.Add(time.Hour))
	assert.Empty(t, rl.requests)
}

func TestRateLimit_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.Use(RateLimit(ctx, 1, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/ping", nil).Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(context.Background(), 0, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", nil).Code)
	}
}

func TestRequireToken(t *testing.T) {
	r := gin.New()
	r.POST("/refresh", RequireToken("s3cret"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SubjectKey))
	})

	token, err := auth.Issue("s3cret", "operator", time.Hour)
	require.NoError(t, err)

	w := serve(r, http.MethodPost, "/refresh", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operator", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/refresh", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(r, http.MethodPost, "/refresh", http.Header{"Authorization": {"Bearer nope"}}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(r, http.MethodPost, "/refresh", http.Header{"Authorization": {token}}).Code)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(Logger(zap.New(core)), Recovery(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	serve(r, http.MethodGet, "/ok?section=T1", nil)
	w := serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/ok?section=T1", entries[0].ContextMap()["path"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
