package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request clashes with the current state of a resource.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates the caller is authenticated but not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// ErrNotAuthorizedApprover is returned when an approver holds no step in the workflow.
var ErrNotAuthorizedApprover = NewForbiddenError("You are not authorized to approve this expense")

// ErrAlreadyProcessed is returned when every step the approver holds has already been decided.
var ErrAlreadyProcessed = NewConflictError("You have already processed this expense")

// ErrRefreshTokenExpired is returned when a stored refresh token is past its expiry.
var ErrRefreshTokenExpired = NewUnauthorizedError("Refresh token has expired")

// AppError carries an HTTP-ish code and message alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && !isSentinel(e.Err) {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause so errors.Is/As work through AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError. A nil err is replaced with the sentinel matching the code.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil {
		err = sentinelForCode(code)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a resource-specific message.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError wraps ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewValidationFailedError collects several field problems into one validation error.
func NewValidationFailedError(problems ...string) *AppError {
	msg := "validation failed"
	for i, p := range problems {
		if i == 0 {
			msg += ": " + p
		} else {
			msg += "; " + p
		}
	}
	return &AppError{Code: http.StatusBadRequest, Message: msg, Err: ErrValidation}
}

// NewConflictError wraps ErrConflict.
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrConflict}
}

// NewForbiddenError wraps ErrForbidden.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message, Err: ErrForbidden}
}

// NewUnauthorizedError wraps ErrUnauthorized.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message, Err: ErrUnauthorized}
}

func sentinelForCode(code int) error {
	switch code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusConflict:
		return ErrConflict
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return ErrInternal
	}
}

func isSentinel(err error) bool {
	switch err {
	case ErrNotFound, ErrValidation, ErrDuplicate, ErrConflict, ErrForbidden, ErrUnauthorized, ErrInternal:
		return true
	}
	return false
}
