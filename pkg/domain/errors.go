package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an AppError for transport-level mapping.
type ErrorCode string

const (
	CodeNotFound        ErrorCode = "not_found"
	CodeValidation      ErrorCode = "validation"
	CodeForbidden       ErrorCode = "forbidden"
	CodeConflict        ErrorCode = "conflict"
	CodeStaleVersion    ErrorCode = "stale_version"
	CodeInvalidState    ErrorCode = "invalid_state"
	CodePaymentDeclined ErrorCode = "payment_declined"
	CodeInternal        ErrorCode = "internal"
)

// AppError is the domain error type surfaced by services. The HTTP layer maps
// codes to status codes; the core never deals in transport concerns.
type AppError struct {
	Code    ErrorCode
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError reports that an entity with the given identifier does not exist.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewValidationError reports malformed or out-of-policy input.
func NewValidationError(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg}
}

// NewForbiddenError reports that the caller is not allowed to perform a mutation.
func NewForbiddenError(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg}
}

// NewConflictError reports a collision with existing state, such as an
// overlapping booking interval.
func NewConflictError(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg}
}

// NewStaleVersionError reports an optimistic-locking write that lost to a
// concurrent modification of the same entity. Distinct from CodeConflict,
// which reports a collision with a different entity; callers may reload and
// retry a stale write.
func NewStaleVersionError(entity string) *AppError {
	return &AppError{Code: CodeStaleVersion, Message: fmt.Sprintf("%s was modified by another transaction", entity)}
}

// NewInvalidStateError reports a lifecycle transition that the state machine
// does not permit.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewPaymentDeclinedError reports a failed or timed-out payment authorization.
func NewPaymentDeclinedError(msg string) *AppError {
	return &AppError{Code: CodePaymentDeclined, Message: msg}
}

// CodeOf extracts the ErrorCode from err, or CodeInternal for unclassified errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err is a not-found AppError.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsConflict reports whether err is a conflict AppError.
func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }

// IsStaleVersion reports whether err is a stale-version AppError.
func IsStaleVersion(err error) bool { return CodeOf(err) == CodeStaleVersion }

// IsInvalidState reports whether err is an invalid-state AppError.
func IsInvalidState(err error) bool { return CodeOf(err) == CodeInvalidState }

// IsPaymentDeclined reports whether err is a payment-declined AppError.
func IsPaymentDeclined(err error) bool { return CodeOf(err) == CodePaymentDeclined }
