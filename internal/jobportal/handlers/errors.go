package handlers

import (
	"errors"
	"fmt"
	"net/http"

	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorDomain is reported in the ErrorInfo detail of every error response.
const errorDomain = "jobportal"

// errRateLimited is returned by rate limited endpoints once a caller has
// used up its budget.
var errRateLimited = errors.New("rate limit exceeded")

// errorCode maps a service error kind to its gRPC code.
func errorCode(err error) (codes.Code, string) {
	if errors.Is(err, errRateLimited) {
		return codes.ResourceExhausted, "RATE_LIMITED"
	}
	kind := e.Kind(err)
	switch kind {
	case "NOT_FOUND":
		return codes.NotFound, kind
	case "CONFLICT":
		return codes.AlreadyExists, kind
	case "AUTHORIZATION":
		return codes.PermissionDenied, kind
	case "PRECONDITION":
		return codes.FailedPrecondition, kind
	case "VALIDATION":
		return codes.InvalidArgument, kind
	default:
		return codes.Internal, kind
	}
}

// toStatus converts a service error into a status carrying an ErrorInfo
// detail with the error kind. Internal errors are logged and their cause is
// not exposed.
func (g *Gateway) toStatus(r *http.Request, err error) *status.Status {
	code, reason := errorCode(err)
	msg := err.Error()
	if code == codes.Internal {
		g.logger.Error("internal server error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal server error"
	}

	st := status.New(code, msg)
	detailed, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain})
	if derr != nil {
		return st
	}
	return detailed
}

// writeError renders err through the mux error handler so that HTTP
// responses carry the same status body as the gateway.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	runtime.HTTPError(r.Context(), g.mux, g.errorMarshaler, w, r, g.toStatus(r, err).Err())
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e.ErrValidation, fmt.Sprintf(format, args...))
}
