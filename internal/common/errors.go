package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected operation. The dispatch layer maps kinds
// to responses; the core never deals in transport codes.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindValidation        ErrorKind = "VALIDATION_ERROR"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:          ErrNotFound,
	KindConflict:          ErrConflict,
	KindInvalidTransition: ErrInvalidTransition,
	KindValidation:        ErrValidation,
}

// DomainError is a rejection raised by the order core. It matches its kind's
// sentinel with errors.Is.
type DomainError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func newDomainError(kind ErrorKind, op, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown order, meal or coupon reference.
func NotFound(op, format string, args ...interface{}) error {
	return newDomainError(KindNotFound, op, format, args...)
}

// Conflict reports a write that collides with existing state.
func Conflict(op, format string, args ...interface{}) error {
	return newDomainError(KindConflict, op, format, args...)
}

// InvalidTransition reports a status change rejected by the authorizer.
func InvalidTransition(op, format string, args ...interface{}) error {
	return newDomainError(KindInvalidTransition, op, format, args...)
}

// Validation reports input that can never succeed as given.
func Validation(op, format string, args ...interface{}) error {
	return newDomainError(KindValidation, op, format, args...)
}

// KindOf returns the kind of a domain error anywhere in err's chain, or ""
// for infrastructure failures.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
