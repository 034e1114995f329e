package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

func authRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client_id": ClientID(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware(map[string]string{"client-a": "secret-key"}, false, logging.NewNop())
	r := authRouter(m)

	tests := []struct {
		name       string
		clientID   string
		apiKey     string
		wantStatus int
	}{
		{"valid credentials", "client-a", "secret-key", http.StatusOK},
		{"wrong key", "client-a", "wrong", http.StatusUnauthorized},
		{"unknown client", "client-b", "secret-key", http.StatusUnauthorized},
		{"missing headers", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.clientID != "" {
				req.Header.Set(HeaderClientID, tt.clientID)
			}
			if tt.apiKey != "" {
				req.Header.Set(HeaderAPIKey, tt.apiKey)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthMiddleware_SetsClientID(t *testing.T) {
	m := NewAuthMiddleware(map[string]string{"client-a": "secret-key"}, false, logging.NewNop())
	r := authRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderClientID, "client-a")
	req.Header.Set(HeaderAPIKey, "secret-key")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"client_id":"client-a"`)
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	m := NewAuthMiddleware(nil, true, logging.NewNop())
	r := authRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("allowed request passes", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: true}
		r := gin.New()
		r.Use(NewRateLimitMiddleware(limiter, logging.NewNop()).Handler())
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, limiter.keys, 1)
	})

	t.Run("over budget gets 429", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: false}
		r := gin.New()
		r.Use(NewRateLimitMiddleware(limiter, logging.NewNop()).Handler())
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), string(errors.CodeRateLimit))
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: true, err: errors.New(errors.CodeCache, "redis down")}
		r := gin.New()
		r.Use(NewRateLimitMiddleware(limiter, logging.NewNop()).Handler())
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("keyed by client id when authenticated", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: true}
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set("client_id", "client-a") })
		r.Use(NewRateLimitMiddleware(limiter, logging.NewNop()).Handler())
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, limiter.keys, 1)
		assert.Equal(t, "client-a", limiter.keys[0])
	})
}
