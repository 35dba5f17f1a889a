package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCircuitOpen is returned without touching the network while the
	// circuit breaker is open (or half-open and already probing).
	ErrCircuitOpen = errors.New("circuit open")

	// ErrAborted is returned when the caller's context ends during a request,
	// a rate-limit wait or a backoff wait. It is never retried.
	ErrAborted = errors.New("request aborted")
)

// Error is a classified failure of one remote call.
type Error struct {
	Method string
	Path   string

	// Status is the HTTP status, or 0 when no response arrived.
	Status int

	// Code and Message come from the error envelope when the server sent one.
	Code    string
	Message string

	// Timeout marks a per-attempt deadline expiry.
	Timeout bool

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Timeout:
		return fmt.Sprintf("api %s %s timed out: %v", e.Method, e.Path, e.Err)
	case e.Status == 0:
		return fmt.Sprintf("api %s %s: %v", e.Method, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("api %s %s: %s: %v", e.Method, e.Path, e.Message, e.Err)
	default:
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed: connection
// failures, timeouts, 5xx, 408 and 429.
func (e *Error) Retryable() bool {
	if e.Status == 0 {
		return true
	}
	return e.Status >= 500 ||
		e.Status == http.StatusRequestTimeout ||
		e.Status == http.StatusTooManyRequests
}

// IsRetryable classifies err for the retry loop.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrAborted) || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the text to show a user for err: the server's message when
// it sent one, otherwise the error string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
