package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError       ErrorType = "VALIDATION_ERROR"
	RateLimitError        ErrorType = "RATE_LIMITED"
	NotFoundError         ErrorType = "NOT_FOUND"
	AuthError             ErrorType = "AUTHENTICATION_ERROR"
	InvalidActionError    ErrorType = "INVALID_ACTION"
	StorageCorruptedError ErrorType = "STORAGE_CORRUPTED"
	StorageError          ErrorType = "STORAGE_ERROR"
	ConfigError           ErrorType = "CONFIGURATION_ERROR"
	ServerError           ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// GetHTTPStatus returns the HTTP status code associated with the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors

func ValidationFailed(message string, detail string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

// RateLimited reports a submitter that exceeded the submission window.
// Responds with 400 rather than 429 so limited clients are indistinguishable
// from ordinary validation failures.
func RateLimited() *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    "Too many submissions. Please try again later.",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    "Not found",
		Detail:     fmt.Sprintf("%s ID: %v", entity, id),
		HTTPStatus: http.StatusNotFound,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func InvalidAction(action string) *AppError {
	return &AppError{
		Type:       InvalidActionError,
		Message:    "Invalid action",
		Detail:     fmt.Sprintf("action: %q", action),
		HTTPStatus: http.StatusBadRequest,
	}
}

// StorageCorrupted reports a persisted document that does not have the
// expected shape. It is never auto-repaired: overwriting the document with an
// empty list would silently destroy possibly-recoverable data.
func StorageCorrupted(key string) *AppError {
	return &AppError{
		Type:       StorageCorruptedError,
		Message:    fmt.Sprintf("Storage corrupted (%s)", key),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewStorageError wraps a store I/O failure with a sanitized message.
func NewStorageError(err error) *AppError {
	return &AppError{
		Type:       StorageError,
		Message:    "Storage operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

// MissingAdminToken reports the server-side misconfiguration of an absent
// admin secret. Distinct from a client Unauthorized.
func MissingAdminToken() *AppError {
	return &AppError{
		Type:       ConfigError,
		Message:    "Missing admin token configuration",
		HTTPStatus: http.StatusInternalServerError,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, RateLimitError, InvalidActionError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case StorageCorruptedError, StorageError, ConfigError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
