package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller is not the permitted actor for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState indicates that an operation was attempted from a lifecycle
// status that does not permit it. A lost conditional-update race surfaces as
// this error too: the row was no longer in the expected status.
var ErrInvalidState = errors.New("operation not allowed in current state")

// ErrInsufficientInventory indicates that a listing's available quantity could
// not cover a requested reservation.
var ErrInsufficientInventory = errors.New("insufficient available quantity")

// AppError wraps an underlying error with an HTTP-like status code and a
// message safe to surface to callers.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
