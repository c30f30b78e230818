package nlp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/zeroshot/pkg/utils"
)

// Common classification errors
var (
	// ErrInvalidInput indicates empty text or no usable labels. It is the only
	// error reported to the end user as a hard stop.
	ErrInvalidInput = errors.New("invalid input: text and at least one label are required")

	// ErrAuthMissing indicates the remote provider has no credential
	ErrAuthMissing = errors.New("no credential configured for remote inference")

	// ErrResponseShape indicates a success payload in an unrecognized shape
	ErrResponseShape = errors.New("unrecognized provider response shape")

	// ErrProviderUnavailable indicates the provider could not be constructed
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Error kinds recorded for failed providers
const (
	KindInvalidInput  = "invalid_input"
	KindAuthMissing   = "auth_missing"
	KindRemote        = "remote_error"
	KindNetwork       = "network_error"
	KindTimeout       = "timeout"
	KindResponseShape = "response_shape"
	KindCircuitOpen   = "circuit_open"
	KindUnavailable   = "unavailable"
	KindPanic         = "panic"
	KindProvider      = "provider_error"
)

// RemoteError represents a non-2xx status or an error body from a hosted endpoint
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote inference error: %s", e.Message)
	}
	return fmt.Sprintf("remote inference error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPStatusCode exposes the status for retry decisions.
func (e *RemoteError) HTTPStatusCode() int {
	return e.StatusCode
}

// Is implements errors.Is support for RemoteError.
// This allows errors.Is(err, &RemoteError{}) to work with wrapped errors.
func (e *RemoteError) Is(target error) bool {
	_, ok := target.(*RemoteError)
	return ok
}

// NewRemoteError creates a new remote error
func NewRemoteError(statusCode int, message string) *RemoteError {
	return &RemoteError{StatusCode: statusCode, Message: message}
}

// NetworkError represents a transport-level failure
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is implements errors.Is support for NetworkError.
func (e *NetworkError) Is(target error) bool {
	_, ok := target.(*NetworkError)
	return ok
}

// TimeoutError represents a call that exceeded its deadline
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Timeout reports true, matching net.Error.
func (e *TimeoutError) Timeout() bool { return true }

// Is implements errors.Is support for TimeoutError.
func (e *TimeoutError) Is(target error) bool {
	_, ok := target.(*TimeoutError)
	return ok
}

// ResponseShapeError represents a payload matching none of the accepted shapes
type ResponseShapeError struct {
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrResponseShape.Error(), e.Reason)
}

// Is implements errors.Is support for ResponseShapeError and ErrResponseShape.
func (e *ResponseShapeError) Is(target error) bool {
	if target == ErrResponseShape {
		return true
	}
	_, ok := target.(*ResponseShapeError)
	return ok
}

// NewResponseShapeError creates a new response shape error
func NewResponseShapeError(format string, args ...any) *ResponseShapeError {
	return &ResponseShapeError{Reason: fmt.Sprintf(format, args...)}
}

// WrapTransportError classifies an error returned by an HTTP round trip as a
// TimeoutError or a NetworkError.
func WrapTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &NetworkError{Err: err}
}

// ErrorKind maps an error to the name recorded in a ProviderFailure.
func ErrorKind(err error) string {
	var panicErr *utils.PanicError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrAuthMissing):
		return KindAuthMissing
	case errors.Is(err, ErrResponseShape):
		return KindResponseShape
	case errors.Is(err, &TimeoutError{}), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, &RemoteError{}):
		return KindRemote
	case errors.Is(err, &NetworkError{}):
		return KindNetwork
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return KindCircuitOpen
	case errors.Is(err, ErrProviderUnavailable):
		return KindUnavailable
	case errors.As(err, &panicErr):
		return KindPanic
	default:
		return KindProvider
	}
}
