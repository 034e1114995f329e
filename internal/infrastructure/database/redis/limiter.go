package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Limiter is a fixed-window rate limiter keyed by caller identity. Each
// window is a redis counter expiring at the window boundary; the first hit
// in a window creates the counter and sets its TTL.
type Limiter struct {
	client *Client
	logger logging.Logger
	limit  int64
	window time.Duration
}

// NewLimiter allows limit requests per window per key.
func NewLimiter(client *Client, log logging.Logger, limit int64, window time.Duration) *Limiter {
	return &Limiter{client: client, logger: log, limit: limit, window: window}
}

// Allow consumes one request for key and reports whether it fits inside the
// current window. On redis failure it fails open: blocking all traffic on a
// cache outage would be worse than briefly losing the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / int64(l.window.Seconds())
	counter := fmt.Sprintf("veriflow:ratelimit:%s:%d", key, window)

	count, err := l.client.rdb.Incr(ctx, counter).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request",
			logging.String("key", key), logging.Err(err))
		return true, errors.Wrap(err, errors.CodeCache, "rate limit counter failed")
	}
	if count == 1 {
		if err := l.client.rdb.Expire(ctx, counter, l.window).Err(); err != nil {
			l.logger.Warn("rate limit window expiry failed", logging.Err(err))
		}
	}
	return count <= l.limit, nil
}
