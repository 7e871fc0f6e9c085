// Package shared contains error types used across the domain packages.
// This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure independently of any transport.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindConflict
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "discipline", "user", "auth"
	Op      string // operation that failed, e.g. "Create", "Update"
	Kind    Kind
	Message string // human-readable, safe to show to callers
	Err     error  // underlying cause (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another *DomainError of the same domain and kind, so package-level
// sentinels work with errors.Is regardless of the Op they were raised from.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Domain == t.Domain && e.Message == t.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind Kind, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind Kind, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithOp returns a copy of e raised from a different operation.
func (e *DomainError) WithOp(op string) *DomainError {
	c := *e
	c.Op = op
	return &c
}

// KindOf extracts the kind of the outermost DomainError in err's chain.
// Errors that are not domain errors are internal.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the human-readable message of a domain error, or
// fallback when err is not one.
func MessageOf(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidInput checks if the error is a validation error.
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// IsConflict checks if the error is an "already exists" error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// Access errors shared by every domain.
var (
	ErrUnauthorized = NewDomainError("auth", "Authenticate", KindUnauthorized, "Unauthorized")
	ErrForbidden    = NewDomainError("auth", "Authorize", KindForbidden, "Operation not permitted")
)
