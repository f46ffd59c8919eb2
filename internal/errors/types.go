// Package errors defines the structured error type used for infrastructure
// failures: configuration, I/O, networking and protocol problems.
//
// User input validation failures are not errors in this sense; they are
// data owned by the form package.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeProtocol   ErrorType = "protocol"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeConfigRead      = "ERR_CONFIG_READ"
	ErrCodeConfigWrite     = "ERR_CONFIG_WRITE"
	ErrCodeInvalidOrigin   = "ERR_INVALID_ORIGIN"
	ErrCodeServerStart     = "ERR_SERVER_START"
	ErrCodeBadFrame        = "ERR_BAD_FRAME"
	ErrCodeUnknownField    = "ERR_UNKNOWN_FIELD"
	ErrCodeRender          = "ERR_RENDER"
	ErrCodeInternalError   = "ERR_INTERNAL"
	ErrCodeInvalidArgument = "ERR_INVALID_ARGUMENT"
)

// AppError is a structured error type with context.
type AppError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Recoverable bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so callers can compare against a template error.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component

	return e
}

// NewValidationError creates an error for a malformed argument or request.
func NewValidationError(code, message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Code: code, Message: message, Recoverable: true}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *AppError {
	return &AppError{Type: ErrorTypeSecurity, Code: code, Message: message}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeIO, Code: code, Message: message, Cause: cause}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeNetwork, Code: code, Message: message, Cause: cause}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Code: code, Message: message, Cause: cause}
}

// NewProtocolError creates an error for a malformed client frame. The
// session that received it stays open.
func NewProtocolError(code, message string) *AppError {
	return &AppError{Type: ErrorTypeProtocol, Code: code, Message: message, Recoverable: true}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Code: code, Message: message, Cause: cause}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Recoverable
	}

	return false
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	return hasType(err, ErrorTypeSecurity)
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

func hasType(err error, t ErrorType) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type == t
	}

	return false
}

// ErrInvalidOrigin creates an invalid origin security error.
func ErrInvalidOrigin(origin string) *AppError {
	return NewSecurityError(ErrCodeInvalidOrigin, "invalid origin: "+origin)
}

// ErrUnknownField creates a protocol error for a change naming an unknown field.
func ErrUnknownField(field string) *AppError {
	return NewProtocolError(ErrCodeUnknownField, "unknown field: "+field).
		WithContext("field", field)
}
