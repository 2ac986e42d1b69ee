// Package errors defines the error kinds surfaced by the job portal core.
// Every error returned by a service wraps exactly one of these sentinels so
// callers can tell kinds apart with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrConflict      = fmt.Errorf("conflict")
	ErrAuthorization = fmt.Errorf("not authorized")
	ErrPrecondition  = fmt.Errorf("precondition failed")
	ErrValidation    = fmt.Errorf("invalid input")
	ErrInternal      = fmt.Errorf("internal error")
)

// Kind names the error kind of err, or "INTERNAL" when err wraps none of the
// known sentinels.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrAuthorization):
		return "AUTHORIZATION"
	case errors.Is(err, ErrPrecondition):
		return "PRECONDITION"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}
