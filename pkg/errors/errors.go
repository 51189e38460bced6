package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeClientError ErrorType = "client_error"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeBadURL      ErrorType = "bad_url"
	ErrorTypeStorage     ErrorType = "storage"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a typed scraper error. Code carries the HTTP status when one was received.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s error (code %d) for %s: %s", e.Type, e.Code, e.URL, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, url, message string) *Error {
	return &Error{Type: t, Message: message, URL: url}
}

// Wrap creates a typed error around an underlying cause
func Wrap(t ErrorType, url string, err error) *Error {
	return &Error{Type: t, Message: err.Error(), URL: url, Err: err}
}

// FromStatus maps a non-200 HTTP status code to a typed error
func FromStatus(code int, url string) *Error {
	e := &Error{
		Code:    code,
		URL:     url,
		Message: fmt.Sprintf("unexpected status %d %s", code, http.StatusText(code)),
	}
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		e.Type = ErrorTypeNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		e.Type = ErrorTypeServerError
	case code >= 400:
		e.Type = ErrorTypeClientError
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case http.StatusTooManyRequests:
		return true
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return false
	default:
		return statusCode >= 500
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not typed
func TypeOf(err error) ErrorType {
	var e *Error
	if As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}
