// Package ratelimit caps how many requests one caller may make per minute on
// the expensive endpoints (applying and searching).
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Window is the length of one counting window.
const Window = time.Minute

// Counter is an atomic counter with expiry. RedisCounter is the production
// implementation.
type Counter interface {
	IncrementWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Limiter struct {
	counter Counter
	limit   int64
	logger  *zap.Logger
	now     func() time.Time
}

func NewLimiter(counter Counter, perMinute int64, logger *zap.Logger) *Limiter {
	return &Limiter{
		counter: counter,
		limit:   perMinute,
		logger:  logger.Named("ratelimit"),
		now:     time.Now,
	}
}

// Key builds the counter key for a caller within a scope such as "apply".
func Key(scope, caller string) string {
	return fmt.Sprintf("jobportal:ratelimit:%s:%s", scope, caller)
}

// Allow counts one request for key and reports whether it is within the
// limit. A failing counter lets the request through.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	bucket := fmt.Sprintf("%s:%d", key, l.now().Unix()/int64(Window/time.Second))

	count, err := l.counter.IncrementWithExpiry(ctx, bucket, Window)
	if err != nil {
		l.logger.Error("failed to check rate limit", zap.String("key", key), zap.Error(err))
		return true
	}
	if count > l.limit {
		l.logger.Warn("rate limit exceeded", zap.String("key", key), zap.Int64("count", count))
		return false
	}
	return true
}

// Limit returns the number of requests allowed per window.
func (l *Limiter) Limit() int64 {
	return l.limit
}
