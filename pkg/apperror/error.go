// Package apperror defines the application error taxonomy.
//
// Errors are split into expected business outcomes (NotFound, Conflict,
// Validation) and unexpected persistence failures. Handlers return these
// errors directly; the echo error handler renders them into the API envelope.
package apperror

import (
	"fmt"
	"net/http"
)

// Error represents an application error with HTTP status and a stable code
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error
func (e *Error) Unwrap() error {
	return e.Internal
}

// WithInternal returns a copy of the error with an internal error attached
func (e *Error) WithInternal(err error) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   err,
		Details:    e.Details,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    message,
		Internal:   e.Internal,
		Details:    e.Details,
	}
}

// WithDetails returns a copy of the error with details attached
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Code:       e.Code,
		Message:    e.Message,
		Internal:   e.Internal,
		Details:    details,
	}
}

// New creates a new application error
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

// Common error definitions
var (
	// Authentication errors
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized", "Authentication required")
	ErrInvalidToken       = New(http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid_credentials", "Invalid login credentials")

	// Resource errors
	ErrNotFound       = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrUserNotFound   = New(http.StatusNotFound, "user_not_found", "User not found")
	ErrFamilyNotFound = New(http.StatusNotFound, "family_not_found", "Family not found")
	ErrConflict       = New(http.StatusConflict, "conflict", "Resource already exists")

	// Uniqueness conflicts surfaced during signup
	ErrMailExists     = New(http.StatusBadRequest, "mail_already_exist", "User with this email already exists")
	ErrPhoneExists    = New(http.StatusBadRequest, "phone_already_exist", "User with this phone number already exists")
	ErrUsernameExists = New(http.StatusConflict, "username_already_exist", "User with this username already exists")

	// Validation errors
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrValidation = New(http.StatusUnprocessableEntity, "validation_error", "Validation failed")

	// Multi-step operation failures (generic, per operation)
	ErrFamilyCreateFailed = New(http.StatusBadRequest, "family_create_failed", "Family creation failed")
	ErrFamilyJoinFailed   = New(http.StatusBadRequest, "family_join_failed", "Family join failed")
	ErrFamilySearchFailed = New(http.StatusBadRequest, "family_search_failed", "Family search failed")
	ErrFamilyUpdateFailed = New(http.StatusBadRequest, "family_update_failed", "Family update failed")
	ErrUserCreateFailed   = New(http.StatusBadRequest, "user_create_failed", "User creation failed")
	ErrUserUpdateFailed   = New(http.StatusBadRequest, "user_update_failed", "User update failed")

	// Server errors
	ErrInternal = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrDatabase = New(http.StatusInternalServerError, "database_error", "Database operation failed")
	ErrThrottle = New(http.StatusTooManyRequests, "too_many_requests", "Too many requests, slow down")
)

// NewBadRequest creates a bad request error with a custom message
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFound creates a not found error for a resource type and ID
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s '%s' not found", resourceType, id))
}

// NewInternal creates an internal error with a message and optional wrapped error
func NewInternal(message string, err error) *Error {
	return &Error{
		HTTPStatus: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    message,
		Internal:   err,
	}
}

// IsNotFound reports whether err is an application NotFound error.
func IsNotFound(err error) bool {
	appErr, ok := err.(*Error)
	return ok && appErr.HTTPStatus == http.StatusNotFound
}

// IsConflict reports whether err is an application Conflict error.
func IsConflict(err error) bool {
	appErr, ok := err.(*Error)
	return ok && appErr.HTTPStatus == http.StatusConflict
}
