package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Allower is the rate-limit decision, satisfied by redis.Limiter.
type Allower interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware enforces a per-client request budget. Unauthenticated
// requests are keyed by client IP.
type RateLimitMiddleware struct {
	limiter Allower
	logger  logging.Logger
}

// NewRateLimitMiddleware creates the middleware.
func NewRateLimitMiddleware(limiter Allower, log logging.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, logger: log}
}

// Handler rejects requests over the budget with 429.
func (m *RateLimitMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientID(c)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := m.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// The limiter fails open; a broken limiter must not take the
			// API down with it.
			m.logger.Warn("rate limiter unavailable", logging.Err(err))
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    string(errors.CodeRateLimit),
					"message": "rate limit exceeded",
				},
			})
			return
		}
		c.Next()
	}
}
