package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures into a small set of categories
// suitable for retry decisions.
type ErrorKind string

const (
	// KindAuth indicates authentication or authorization failures.
	KindAuth ErrorKind = "auth"
	// KindInvalidRequest indicates the request itself is bad; retrying
	// without changing it will not succeed.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindRateLimited indicates the provider is throttling requests.
	KindRateLimited ErrorKind = "rate_limited"
	// KindUnavailable indicates a transient provider failure (5xx, network).
	KindUnavailable ErrorKind = "unavailable"
	// KindUnknown indicates an unclassified provider failure.
	KindUnknown ErrorKind = "unknown"
)

// Error describes a failure returned by a capability provider. It crosses
// package boundaries so the executor can make stable retry decisions.
type Error struct {
	// Provider is the provider name (e.g. "anthropic").
	Provider string
	// Kind is the coarse classification of the failure.
	Kind ErrorKind
	// Status is the HTTP status code when available, otherwise 0.
	Status int
	// Message is the provider error message when available.
	Message string
	// Retryable reports whether retrying the same request may succeed.
	Retryable bool
	// Cause preserves the original error chain.
	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		msg = "provider error"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Provider, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Kind, msg)
}

// Unwrap returns the underlying error to preserve the chain.
func (e *Error) Unwrap() error { return e.Cause }

// AsError returns the first *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsRetryable reports whether err carries a retryable provider failure.
// Errors outside the provider taxonomy are not retryable here; timeouts are
// classified by the executor, which owns the attempt deadline.
func IsRetryable(err error) bool {
	if pe, ok := AsError(err); ok {
		return pe.Retryable
	}
	return false
}

// classifyStatus maps an HTTP status to a kind and retry decision.
func classifyStatus(status int) (ErrorKind, bool) {
	switch {
	case status == 401 || status == 403:
		return KindAuth, false
	case status == 429:
		return KindRateLimited, true
	case status >= 500:
		return KindUnavailable, true
	case status >= 400:
		return KindInvalidRequest, false
	default:
		return KindUnknown, false
	}
}

// wrapHTTPError builds an *Error from a transport failure. A zero status
// means the call never produced an HTTP response (network failure), which is
// treated as retryable.
func wrapHTTPError(providerName string, status int, err error) *Error {
	if status == 0 {
		return &Error{
			Provider:  providerName,
			Kind:      KindUnavailable,
			Message:   err.Error(),
			Retryable: true,
			Cause:     err,
		}
	}
	kind, retryable := classifyStatus(status)
	return &Error{
		Provider:  providerName,
		Kind:      kind,
		Status:    status,
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     err,
	}
}
