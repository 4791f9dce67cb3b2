package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the module.
type ErrorCode string

const (
	// ErrProvider is a non-2xx or payload-less provider response. Retryable.
	ErrProvider ErrorCode = "PROVIDER_ERROR"
	// ErrTransport is a network-level failure talking to the provider. Retryable.
	ErrTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrPersistence covers decode/resize/encode/write failures. Never retried.
	ErrPersistence ErrorCode = "PERSISTENCE_ERROR"
	// ErrConfiguration is a missing or out-of-range setting. Fatal at startup.
	ErrConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrInvalidRequest is a malformed GenerationRequest.
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Body       string    `json:"body,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// NewProviderError reports a provider response that carried no usable image.
func NewProviderError(status int, body string) *Error {
	return &Error{
		Code:       ErrProvider,
		Message:    fmt.Sprintf("provider error (%d): %s", status, body),
		HTTPStatus: status,
		Body:       body,
		Retryable:  true,
	}
}

// NewTransportError wraps a network failure.
func NewTransportError(cause error) *Error {
	return &Error{
		Code:      ErrTransport,
		Message:   "provider request failed",
		Retryable: true,
		Cause:     cause,
	}
}

// NewPersistenceError wraps a decode or storage failure.
func NewPersistenceError(message string, cause error) *Error {
	return &Error{Code: ErrPersistence, Message: message, Cause: cause}
}

// NewConfigurationError reports an invalid setting.
func NewConfigurationError(message string) *Error {
	return &Error{Code: ErrConfiguration, Message: message}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
