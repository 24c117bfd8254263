package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUpstream     = "UPSTREAM_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// ValidationError is raised before any network call is made. For action
// items it carries the index of the input item that failed validation.
type ValidationError struct {
	Item    int // -1 when not tied to a specific item
	Message string
}

func (e *ValidationError) Error() string {
	if e.Item >= 0 {
		return fmt.Sprintf("item %d: %s", e.Item, e.Message)
	}
	return e.Message
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Item: -1, Message: msg}
}

func NewValidationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Item: -1, Message: fmt.Sprintf(format, args...)}
}

func NewItemValidation(item int, msg string) *ValidationError {
	return &ValidationError{Item: item, Message: msg}
}

// UpstreamError is a failure response from the remote API.
type UpstreamError struct {
	StatusCode int
	Method     string
	Path       string
	Snippet    string // truncated response body, for diagnostics
}

func (e *UpstreamError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("%s %s: upstream returned %d: %s", e.Method, e.Path, e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("%s %s: upstream returned %d", e.Method, e.Path, e.StatusCode)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// StatusFor maps an error to the HTTP status and error code the API surface
// reports for it.
func StatusFor(err error) (int, string) {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest, ErrCodeInvalidInput
	case IsUpstream(err):
		return http.StatusBadGateway, ErrCodeUpstream
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
