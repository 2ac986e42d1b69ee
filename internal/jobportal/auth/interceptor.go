// Package auth resolves the caller's identity from JWT bearer tokens for
// both the gRPC server and the HTTP gateway, and hands it to the handlers
// through the request context.
package auth

import (
	"context"
	"strings"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Interceptor holds the JWT secret and the set of methods that require a
// token.
type Interceptor struct {
	jwtSecret        string
	protectedMethods map[string]bool
}

type contextKey string

const (
	actorContextKey contextKey = "actor"
)

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the identity stored in ctx, or an anonymous
// actor when there is none.
func ActorFromContext(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(actorContextKey).(models.Actor); ok {
		return actor
	}
	return models.Anonymous()
}

// NewAuthInterceptor creates an Interceptor. Calls to protected methods
// must carry a token; other calls are resolved when a token is present and
// run anonymously otherwise.
func NewAuthInterceptor(jwtSecret string, protected ...string) *Interceptor {
	methods := make(map[string]bool, len(protected))
	for _, m := range protected {
		methods[m] = true
	}
	return &Interceptor{
		jwtSecret:        jwtSecret,
		protectedMethods: methods,
	}
}

// Unary returns a gRPC unary interceptor that resolves the caller.
func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		if len(md.Get("authorization")) == 0 {
			if i.protectedMethods[info.FullMethod] {
				return nil, status.Error(codes.Unauthenticated, "authorization header missing")
			}
			return handler(WithActor(ctx, models.Anonymous()), req)
		}

		tokenString, err := extractTokenFromMetadata(md)
		if err != nil {
			return nil, err
		}
		actor, err := Authenticate(tokenString, i.jwtSecret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		return handler(WithActor(ctx, actor), req)
	}
}

// extractTokenFromMetadata retrieves a Bearer token from gRPC metadata.
func extractTokenFromMetadata(md metadata.MD) (string, error) {
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization header missing")
	}
	return bearer(authHeaders[0])
}

func bearer(headerValue string) (string, error) {
	if !strings.HasPrefix(headerValue, "Bearer ") {
		return "", status.Error(codes.Unauthenticated, "invalid authorization format: missing Bearer prefix")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(headerValue, "Bearer "))
	if tokenString == "" {
		return "", status.Error(codes.Unauthenticated, "invalid authorization format: empty token")
	}
	return tokenString, nil
}
