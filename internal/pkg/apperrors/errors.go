package apperrors

import (
	"errors"
	"strings"
)

// Resource errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
)

// Authorization errors
var (
	ErrPermissionDenied = errors.New("this action is unauthorized")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation error")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Course errors
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrSlugTaken      = errors.New("slug already taken")
)

// Enrollment errors. Both are reported with 401 on the wire.
var (
	ErrAlreadyEnrolled = errors.New("user already enrolled")
	ErrNotEnrolled     = errors.New("user not enrolled")
)

// NewCourseNotFoundError reports a course that could not be resolved from the
// given id or slug.
func NewCourseNotFoundError(idOrSlug string) error {
	return NewCustomError(ErrCourseNotFound, "course "+idOrSlug+" not found").
		WithStatusMsg(ErrCourseNotFound.Error())
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}

// ValidationError carries the flattened, ordered list of field messages.
type ValidationError struct {
	Errors []string
}

// NewValidationError creates a ValidationError from the given messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidationFailed.Error()
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
