package service

import (
	"errors"
	"fmt"
)

// Code categorizes service errors.
type Code string

const (
	// CodeValidation indicates a request body that fails shape or domain checks.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound indicates a referenced butterfly or user does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict indicates the user already rated the butterfly.
	CodeConflict Code = "CONFLICT"

	// CodeStore indicates the persistence layer failed.
	CodeStore Code = "STORE"
)

// Client-facing messages.
const (
	MsgInvalidBody   = "Invalid request body"
	MsgAlreadyRated  = "You already rated"
	MsgStoreFailure  = "Internal server error"
	msgNotFoundShape = "No %s with the id of %s"
)

// Error is returned by every Service operation that fails.
//
// Message is safe to show to callers. Err carries the underlying cause and
// is only meant for logs.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description safe to send to clients.
	Message string

	// Entity names the missing record kind for CodeNotFound ("butterfly", "user").
	Entity string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError wraps a payload validation failure.
func NewValidationError(err error) *Error {
	return &Error{Code: CodeValidation, Message: MsgInvalidBody, Err: err}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf(msgNotFoundShape, entity, id),
		Entity:  entity,
	}
}

// NewConflictError reports a second rating for the same pair.
func NewConflictError(butterflyID, userID string) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: MsgAlreadyRated,
		Err:     fmt.Errorf("butterfly %s already rated by user %s", butterflyID, userID),
	}
}

// NewStoreError wraps a persistence failure for op.
func NewStoreError(op string, err error) *Error {
	return &Error{Code: CodeStore, Message: MsgStoreFailure, Err: fmt.Errorf("%s: %w", op, err)}
}

// CodeOf returns the code of a service error, or "" for other errors.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

// IsNotFound returns true if err is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsConflict returns true if err is a duplicate-rating error.
func IsConflict(err error) bool { return CodeOf(err) == CodeConflict }

// IsStore returns true if err is a persistence failure.
func IsStore(err error) bool { return CodeOf(err) == CodeStore }
