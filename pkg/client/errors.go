package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by the client. Every failed operation wraps
// exactly one of these, so callers can dispatch with errors.Is and still
// errors.As into *APIError for the status code and server message.
var (
	// ErrAuthentication is returned when the service rejects the credential.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSessionClosed is returned for any operation issued after Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed or out-of-range
	// parameters, locally validated ones included.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when a state transition is not permitted,
	// e.g. accepting a request that is no longer pending.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientFunds is returned when a transfer exceeds the
	// available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransport is returned for network failures and unexpected server
	// errors; the cause is wrapped.
	ErrTransport = errors.New("transport error")
)

// APIError carries the detail of a failed service call.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stackcoin api error (status %d, code %s): %s",
			e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("stackcoin api error (status %d): %s",
		e.StatusCode, e.Message)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *APIError) Unwrap() error {
	return e.Err
}

// errorBody is the JSON error envelope the service returns.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Error codes the service uses in the envelope.
const (
	codeUnauthorized      = "unauthorized"
	codeNotFound          = "not_found"
	codeInvalidArgument   = "invalid_argument"
	codeInvalidState      = "invalid_state"
	codeInsufficientFunds = "insufficient_funds"
)

// sentinelForCode maps a service error code to its sentinel.
func sentinelForCode(code string) error {
	switch code {
	case codeUnauthorized:
		return ErrAuthentication
	case codeNotFound:
		return ErrNotFound
	case codeInvalidArgument:
		return ErrInvalidArgument
	case codeInvalidState:
		return ErrInvalidState
	case codeInsufficientFunds:
		return ErrInsufficientFunds
	default:
		return nil
	}
}

// sentinelForStatus is the fallback mapping when the response body carries
// no usable error code.
func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuthentication
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusPaymentRequired:
		return ErrInsufficientFunds
	case status == http.StatusConflict:
		return ErrInvalidState
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrInvalidArgument
	default:
		return ErrTransport
	}
}

// errKind labels an error for the errors_total metric.
func errKind(err error) string {
	switch {
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "transport"
	}
}
