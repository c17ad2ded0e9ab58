package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error crossing a component boundary. Handlers map
// kinds to HTTP statuses; callers decide retryability from the kind alone.
type ErrorKind string

const (
	// ErrorKindValidation - rejected before any side effect; retry after correction.
	ErrorKindValidation ErrorKind = "VALIDATION"
	// ErrorKindNotFound - missing product/sale/sequence/tax config; needs reconfiguration.
	ErrorKindNotFound ErrorKind = "NOT_FOUND"
	// ErrorKindConflict - concurrent update lost; safe to retry from a fresh read.
	ErrorKindConflict ErrorKind = "CONFLICT"
	// ErrorKindExhaustion - sequence limit/expiry or insufficient stock; needs provisioning.
	ErrorKindExhaustion ErrorKind = "EXHAUSTION"
	// ErrorKindPartialFailure - some writes landed, some did not; needs reconciliation.
	ErrorKindPartialFailure ErrorKind = "PARTIAL_FAILURE"
	// ErrorKindInternal - everything else (driver errors, timeouts on reads).
	ErrorKindInternal ErrorKind = "INTERNAL"
)

type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ClassifiedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, format string, args ...any) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, err error, format string, args ...any) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the classification of err, walking wrapped causes.
// Unclassified errors are INTERNAL.
func KindOf(err error) ErrorKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrorKindInternal
}
