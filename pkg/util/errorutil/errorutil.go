package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the attendance API boundary. Callers branch on these
// instead of raw HTTP status codes.
const (
	CodeValidation    = "VALIDATION_FAILED"
	CodeAuthMissing   = "AUTH_MISSING"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeAlreadyMarked = "ALREADY_MARKED"
	CodeTimeout       = "TIMEOUT"
	CodeNetwork       = "NETWORK_UNREACHABLE"
	CodeServer        = "SERVER_ERROR"
)

// ClientError standardizes errors surfaced by the agent.
type ClientError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError constructs a ClientError.
func NewClientError(code, message string, status int, details map[string]any) *ClientError {
	return &ClientError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewClientError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewAuthMissing(message string) error {
	return NewClientError(CodeAuthMissing, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewClientError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewNotFound(resource string) error {
	return NewClientError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func NewConflict(message string) error {
	return NewClientError(CodeConflict, message, http.StatusConflict, nil)
}

func NewAlreadyMarked(message string) error {
	if message == "" {
		message = "attendance already marked for today"
	}
	return NewClientError(CodeAlreadyMarked, message, http.StatusConflict, nil)
}

func NewTimeout(err error) error {
	return &ClientError{
		Code:       CodeTimeout,
		Message:    "request timed out, it is safe to retry",
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

func NewNetworkUnreachable(err error) error {
	return &ClientError{
		Code:       CodeNetwork,
		Message:    "server is not responding, check your connection",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewServerError(message string, err error) error {
	if message == "" {
		message = "server error, please try again later"
	}
	return &ClientError{
		Code:       CodeServer,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToClientError converts generic errors to ClientError.
func ToClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return &ClientError{
		Code:       CodeServer,
		Message:    "unexpected error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	return clientErr.Code == code
}
