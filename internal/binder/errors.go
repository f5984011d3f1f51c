package binder

import (
	"errors"
	"fmt"
)

// ErrNoPlane is returned when no plane can show the requested format on the
// target crtc.
var ErrNoPlane = errors.New("no usable plane")

// Error is a failed binder step.
type Error struct {
	Code  string
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeNoCrtc      = "NO_CRTC"
	ErrCodeNoConnector = "NO_CONNECTOR"
	ErrCodeNoMode      = "NO_MODE"
	ErrCodeNoPlane     = "NO_PLANE"
	ErrCodeAlloc       = "ALLOC_FAILED"
	ErrCodeFill        = "FILL_FAILED"
	ErrCodeAddFB       = "ADDFB_FAILED"
	ErrCodeSetCrtc     = "SETCRTC_FAILED"
	ErrCodeSetPlane    = "SETPLANE_FAILED"
	ErrCodeRelease     = "RELEASE_FAILED"
)

func newError(code, op string, cause error) *Error {
	return &Error{Code: code, Op: op, Cause: cause}
}

// IsCode reports whether err carries a binder error with the given code.
func IsCode(err error, code string) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == code
}
