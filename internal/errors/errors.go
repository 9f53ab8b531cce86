package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common error types for the job portal session core
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAuthFailed         = errors.New("authentication failed")

	// Session errors
	ErrSessionSuperseded = errors.New("session superseded")
	ErrRefreshFailed     = errors.New("token refresh failed")
	ErrNoRefreshToken    = errors.New("no refresh token")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageCorrupt     = errors.New("storage corrupt")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInternal       = errors.New("internal error")
	ErrInvalidRequest = errors.New("invalid request")
)

// GenericMessage is shown when the backend did not supply a message.
const GenericMessage = "Something went wrong, please try again"

// authFailedMessage is the backend phrase that marks a revoked or unknown session.
const authFailedMessage = "authentication failed"

// APIError is a non-2xx answer from the portal backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsAuthFailure reports whether err means the backend no longer accepts the
// caller's credentials (401, 403, or an "authentication failed" message).
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthFailed) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
			return true
		}
		return strings.Contains(strings.ToLower(apiErr.Message), authFailedMessage)
	}
	return false
}

// UserMessage returns the server-provided message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback == "" {
		return GenericMessage
	}
	return fallback
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
