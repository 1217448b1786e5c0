package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. Callers branch on kinds, not on concrete
// error values.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindOperatorNotEligible Kind = "OPERATOR_NOT_ELIGIBLE"
	KindPostUnavailable     Kind = "POST_UNAVAILABLE"
	KindInvalidTransition   Kind = "INVALID_TRANSITION"
	KindInvalidPayload      Kind = "INVALID_PAYLOAD"
	KindConcurrencyConflict Kind = "CONCURRENCY_CONFLICT"
)

// DomainError is a typed failure surfaced by the assignment engine. A
// CONCURRENCY_CONFLICT is safe to retry: the conditional write that produced
// it guarantees no effect occurred.
type DomainError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two domain errors by kind.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return de.Kind == e.Kind
	}
	return false
}

func newDomain(kind Kind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *DomainError {
	return newDomain(KindNotFound, format, args...)
}

func NotEligible(format string, args ...interface{}) *DomainError {
	return newDomain(KindOperatorNotEligible, format, args...)
}

func PostUnavailable(format string, args ...interface{}) *DomainError {
	return newDomain(KindPostUnavailable, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *DomainError {
	return newDomain(KindInvalidTransition, format, args...)
}

func InvalidPayload(format string, args ...interface{}) *DomainError {
	return newDomain(KindInvalidPayload, format, args...)
}

func ConcurrencyConflict(format string, args ...interface{}) *DomainError {
	return newDomain(KindConcurrencyConflict, format, args...)
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
