package auth

import (
	"net/http"
	"strings"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"go.uber.org/zap"
)

// HTTPMiddleware resolves the caller of every request from its bearer
// token. Requests without a token run anonymously unless they are
// protected; a token that fails validation is always rejected.
func HTTPMiddleware(next http.Handler, jwtSecret string, logger *zap.Logger) http.Handler {
	logger = logger.Named("auth")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if isProtectedRequest(r) {
				http.Error(w, "authorization header required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), models.Anonymous())))
			return
		}

		tokenString, err := bearer(header)
		if err != nil {
			http.Error(w, "invalid authorization format", http.StatusUnauthorized)
			return
		}
		actor, err := Authenticate(tokenString, jwtSecret)
		if err != nil {
			logger.Debug("rejected token", zap.Error(err), zap.String("path", r.URL.Path))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// isProtectedRequest reports whether a request needs a token. Every write
// does, except self-registration.
func isProtectedRequest(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	if r.Method == http.MethodPost && strings.TrimSuffix(r.URL.Path, "/") == "/v1/users" {
		return false
	}
	return true
}
