package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can branch on it without string matching.
type Kind int

const (
	// Unauthenticated means no valid principal was attached to the request.
	Unauthenticated Kind = iota
	// Forbidden means the principal is known but lacks the required role or participation.
	Forbidden
	// NotFound means the referenced session or account does not exist.
	NotFound
	// InvalidInput means the request body or parameters failed validation.
	InvalidInput
	// InvalidTransition means the operation is not legal from the session's current status.
	InvalidTransition
	// Unavailable means a required collaborator (e.g. the support agent pool) cannot serve.
	Unavailable
	// Storage wraps persistence-layer failures, distinct from business-rule failures.
	Storage
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case InvalidInput:
		return "invalid_input"
	case InvalidTransition:
		return "invalid_transition"
	case Unavailable:
		return "unavailable"
	case Storage:
		return "storage"
	}
	return "unknown"
}

// Error is a typed failure with a stable kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// E creates a new typed error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a Storage error around a persistence failure.
func Wrap(message string, err error) *Error {
	return &Error{Kind: Storage, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors are
// treated as Storage so infrastructure failures never masquerade as 4xx.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Storage
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error kind to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidInput, InvalidTransition:
		return http.StatusBadRequest
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to surface to clients. Storage
// errors leak no internal detail.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Storage {
		return e.Message
	}
	return "internal server error"
}
