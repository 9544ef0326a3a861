package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	// ErrorTypeValidation covers bad input: unknown provider or engine names,
	// empty prompts, unreadable attachments. Always detected before any
	// network call is made.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeConfiguration covers missing or unusable credentials and
	// endpoints for the selected provider. Also detected before any network
	// call is made.
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeTransport covers network failures, timeouts, and provider-side
	// rejections. Terminal: transport errors are never retried.
	ErrorTypeTransport ErrorType = "transport"

	// ErrorTypeUnauthorized covers gateway authentication failures.
	ErrorTypeUnauthorized ErrorType = "unauthorized"

	// ErrorTypeInternal covers everything that is our fault.
	ErrorTypeInternal ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Validation errors
	ErrUnknownProvider  = NewDomainError(ErrorTypeValidation, "unknown provider", nil)
	ErrUnknownEngine    = NewDomainError(ErrorTypeValidation, "unknown search engine", nil)
	ErrEmptyPrompt      = NewDomainError(ErrorTypeValidation, "prompt cannot be empty", nil)
	ErrEmptyQuery       = NewDomainError(ErrorTypeValidation, "search query cannot be empty", nil)
	ErrNoURLs           = NewDomainError(ErrorTypeValidation, "no URLs to scrape", nil)
	ErrImageUnsupported = NewDomainError(ErrorTypeValidation, "provider does not support image input", nil)

	// Configuration errors
	ErrMissingCredential = NewDomainError(ErrorTypeConfiguration, "provider credential not configured", nil)

	// Transport errors
	ErrProviderTransport = NewDomainError(ErrorTypeTransport, "provider request failed", nil)

	// Auth errors
	ErrUnauthorized = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)

	// Internal errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "internal error", nil)
)

// Error type checking helper functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeConfiguration
	}
	return false
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeTransport
	}
	return false
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnauthorized
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapValidation wraps an error as a validation error
func WrapValidation(message string, err error) error {
	return NewDomainError(ErrorTypeValidation, message, err)
}

// WrapConfiguration wraps an error as a configuration error
func WrapConfiguration(message string, err error) error {
	return NewDomainError(ErrorTypeConfiguration, message, err)
}

// WrapTransport wraps an error as a transport error
func WrapTransport(message string, err error) error {
	return NewDomainError(ErrorTypeTransport, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
