// ABOUTME: Typed errors returned by the marketplace API client
// ABOUTME: Sentinels are matched with errors.Is against *APIError and transport failures

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means the server rejected (or required) the bearer token
	ErrUnauthorized = errors.New("not authorized")
	// ErrForbidden means the caller is authenticated but not permitted
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the requested resource does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnreachable wraps connection failures
	ErrUnreachable = errors.New("cannot connect to marketplace")
	// ErrTimeout means the request did not complete in time
	ErrTimeout = errors.New("request timed out")
	// ErrCanceled means the caller abandoned the request
	ErrCanceled = errors.New("request canceled")
)

// ErrorResponse is the error body shape of the marketplace API
type ErrorResponse struct {
	Msg   string `json:"msg,omitempty"`
	Error string `json:"error,omitempty"`
}

func (r ErrorResponse) message() string {
	if r.Msg != "" {
		return r.Msg
	}
	return r.Error
}

// APIError is a non-2xx response from the marketplace
type APIError struct {
	StatusCode int
	Message    string
	// Authenticated is true when the failed request carried a bearer token
	Authenticated bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("marketplace returned status %d", e.StatusCode)
}

// Is maps status codes onto the package sentinels.
// A 422 on an authenticated call is how the server reports a malformed token.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized ||
			(e.Authenticated && e.StatusCode == http.StatusUnprocessableEntity)
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsTransient reports whether retrying the same call later might succeed
func IsTransient(err error) bool {
	if errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
