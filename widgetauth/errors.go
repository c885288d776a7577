package widgetauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents an issuance error code
type ErrorCode string

const (
	ErrMissingSubject  ErrorCode = "MISSING_SUBJECT"
	ErrMissingSecret   ErrorCode = "MISSING_SECRET"
	ErrEncoding        ErrorCode = "ENCODING_ERROR"
	ErrInternal        ErrorCode = "INTERNAL_ERROR"
	ErrExecutionFailed ErrorCode = "EXECUTION_FAILED"
	ErrConfigError     ErrorCode = "CONFIG_ERROR"
)

// Error represents a token issuance error with a code and message
type Error struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *Error) Unwrap() error {
	return e.Internal
}

// NewError creates a new issuance error
func NewError(code ErrorCode, message string, internal error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// CodeOf returns the code of the outermost *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a missing-input error raised before issuance.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrMissingSubject, ErrMissingSecret:
		return true
	}
	return false
}
