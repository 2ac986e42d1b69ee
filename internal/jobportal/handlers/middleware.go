package handlers

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/auth"
	"github.com/gartstein/jobportal/internal/jobportal/ratelimit"
	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs every request with its status and duration.
func Logging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.status >= http.StatusInternalServerError {
			logger.Error("handler error", fields...)
			return
		}
		logger.Debug("request handled", fields...)
	})
}

// Recovery turns a panic in next into a 500 response.
func Recovery(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("stack", string(debug.Stack())),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// limited counts the request against the caller's budget for scope before
// running fn. Authenticated callers are keyed by user, others by address.
func (g *Gateway) limited(scope string, fn endpoint) endpoint {
	if g.limiter == nil {
		return fn
	}
	return func(r *http.Request, params map[string]string) (any, error) {
		if !g.limiter.Allow(r.Context(), ratelimit.Key(scope, caller(r))) {
			return nil, fmt.Errorf("%w: at most %d requests per minute", errRateLimited, g.limiter.Limit())
		}
		return fn(r, params)
	}
}

func caller(r *http.Request) string {
	if actor := auth.ActorFromContext(r.Context()); actor.Authenticated() {
		return "user:" + actor.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
