package apperrors

import "errors"

// Error kinds surfaced by the bursary workflow
var (
	// ErrUnauthorized is returned when the actor's role lacks the capability for an operation
	ErrUnauthorized = errors.New("access denied")
	// ErrNotFound is returned when a referenced application, student or user does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput is returned for malformed or out-of-range input
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState is returned when an operation's state precondition is not met
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict is returned on uniqueness violations
	ErrConflict = errors.New("conflict")
)

// Authentication errors
var (
	ErrAuthentication  = errors.New("authentication failed")
	ErrAccountDisabled = errors.New("account is disabled")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("invalid token")
)

// NewNotFoundError creates a new custom error for a missing resource with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for uniqueness violations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewUnauthorizedError creates a new custom error for a denied capability
func NewUnauthorizedError(message string) error {
	return &CustomError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NewInvalidInputError creates a new custom error for bad input with a message
func NewInvalidInputError(message string) error {
	return &CustomError{
		Err:     ErrInvalidInput,
		Message: message,
	}
}

// NewInvalidStateError creates a new custom error for an unmet state precondition
func NewInvalidStateError(message string) error {
	return &CustomError{
		Err:     ErrInvalidState,
		Message: message,
	}
}

// NewAuthenticationError wraps ErrAuthentication with a message
func NewAuthenticationError(message string) error {
	return &CustomError{
		Err:     ErrAuthentication,
		Message: message,
	}
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
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
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

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// MessageOf returns the user-facing message carried by err, or fallback when err
// carries none.
func MessageOf(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
