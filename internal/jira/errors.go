package jira

import (
	"errors"
	"fmt"
)

// AuthError indicates the server rejected the configured credentials.
type AuthError struct {
	URL        string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (HTTP %d) for %s", e.StatusCode, e.URL)
}

// NotFoundError indicates the server does not know the requested issue key.
type NotFoundError struct {
	Key string
	URL string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("issue %q not found", e.Key)
	}
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// TransportError indicates a network failure, timeout, or unexpected
// HTTP status from the server.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed with HTTP %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError indicates a malformed response payload. It unwraps to a
// TransportError so callers treating transport failures generically
// catch it with errors.As.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return &TransportError{URL: e.URL, Err: e.Err}
}

// IsTransient reports whether err is a transport failure worth retrying.
// Parse failures and explicit server verdicts (auth, not-found) are not
// transient: retrying them cannot change the outcome.
func IsTransient(err error) bool {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return false
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return false
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		// 4xx statuses are deterministic server verdicts.
		if transportErr.StatusCode >= 400 && transportErr.StatusCode < 500 {
			return false
		}
		return true
	}
	return false
}
