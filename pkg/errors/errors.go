package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable failure kind surfaced to API callers.
type ErrorCode string

const (
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeNotLive             ErrorCode = "NOT_LIVE"
	ErrCodeAlreadyLive         ErrorCode = "ALREADY_LIVE"
	ErrCodeAlreadyActive       ErrorCode = "ALREADY_ACTIVE"
	ErrCodeAuthorityConflict   ErrorCode = "AUTHORITY_CONFLICT"
	ErrCodeCapacityExceeded    ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeAlreadyModerated    ErrorCode = "ALREADY_MODERATED"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeRateLimit           ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error code, an HTTP status and optional context for
// the structured error responses the API returns.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Context    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair for the error response details.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Context:    make(map[string]interface{}),
	}
}

func Wrap(err error, code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Cause:      err,
		Context:    make(map[string]interface{}),
	}
}

func NewInvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func NewNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewNotLive(message string) *AppError {
	return New(ErrCodeNotLive, message, http.StatusConflict)
}

func NewAlreadyLive(message string) *AppError {
	return New(ErrCodeAlreadyLive, message, http.StatusConflict)
}

func NewAlreadyActive(message string) *AppError {
	return New(ErrCodeAlreadyActive, message, http.StatusConflict)
}

func NewAuthorityConflict(message string) *AppError {
	return New(ErrCodeAuthorityConflict, message, http.StatusConflict)
}

func NewCapacityExceeded(message string) *AppError {
	return New(ErrCodeCapacityExceeded, message, http.StatusConflict)
}

func NewAlreadyModerated(message string) *AppError {
	return New(ErrCodeAlreadyModerated, message, http.StatusConflict)
}

func NewUnauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func NewForbidden(message string) *AppError {
	return New(ErrCodeForbidden, message, http.StatusForbidden)
}

func NewRateLimit() *AppError {
	return New(ErrCodeRateLimit, "rate limit exceeded", http.StatusTooManyRequests)
}

func NewUpstreamUnavailable(message string) *AppError {
	return New(ErrCodeUpstreamUnavailable, message, http.StatusBadGateway)
}

func NewInternal(message string) *AppError {
	return New(ErrCodeInternal, message, http.StatusInternalServerError)
}

// GetAppError extracts an AppError from anywhere in the error chain.
func GetAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	type unwrapper interface {
		Unwrap() error
	}

	if u, ok := err.(unwrapper); ok {
		return GetAppError(u.Unwrap())
	}

	return nil
}
