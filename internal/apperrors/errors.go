// Package apperrors provides the structured errors surfaced at the HTTP
// boundary, with codes, causes and context for logging.
package apperrors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorCode categorizes an application error.
type ErrorCode string

const (
	ErrCodeValidation  ErrorCode = "VALIDATION_ERROR"
	ErrCodeRateLimit   ErrorCode = "RATE_LIMIT_ERROR"
	ErrCodeExternalAPI ErrorCode = "EXTERNAL_API_ERROR"
	ErrCodeTimeout     ErrorCode = "TIMEOUT_ERROR"
	ErrCodeStorage     ErrorCode = "STORAGE_ERROR"
)

// AppError is an error with a code, a client-facing message, an optional
// cause and free-form context for logs.
type AppError struct {
	Code      ErrorCode
	Message   string
	Operation string
	Cause     error
	Context   map[string]any
}

func (e *AppError) Error() string {
	prefix := ""
	if e.Operation != "" {
		prefix = "[" + e.Operation + "] "
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode maps the code to a response status. Upstream and timeout
// failures are reported as 500 so clients see one failure shape.
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HTTPResponse is the JSON error body.
type HTTPResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ToHTTPResponse builds the error body; details carry the cause's message.
func (e *AppError) ToHTTPResponse() HTTPResponse {
	resp := HTTPResponse{Error: e.Message}
	if e.Cause != nil {
		resp.Details = e.Cause.Error()
	}
	return resp
}

// SearchUnavailableError wraps a failure of the search pipeline.
func SearchUnavailableError(operation string, cause error, ctx map[string]any) *AppError {
	code := ErrCodeExternalAPI
	if errors.Is(cause, ErrSearchTimeout) {
		code = ErrCodeTimeout
	}
	return &AppError{
		Code:      code,
		Message:   ErrSearchServiceUnavailable.Error(),
		Operation: operation,
		Cause:     cause,
		Context:   ctx,
	}
}

// ValidationError reports invalid client input.
func ValidationError(message string, cause error, ctx map[string]any) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Cause:   cause,
		Context: ctx,
	}
}

// RateLimitError reports a rejected request.
func RateLimitError(ctx map[string]any) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimit,
		Message: ErrRateLimitExceeded.Error(),
		Context: ctx,
	}
}

// StorageError reports a failing history backend.
func StorageError(operation string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeStorage,
		Message:   ErrStorageUnavailable.Error(),
		Operation: operation,
		Cause:     cause,
	}
}

// FromError returns err as an AppError, classifying foreign errors as an
// unavailable search service.
func FromError(operation string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return SearchUnavailableError(operation, err, nil)
}

// LogError logs an error with its code and context when it is an AppError.
func LogError(logger *slog.Logger, err error, operation string) {
	if logger == nil || err == nil {
		return
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error("operation failed", "operation", operation, "error", err)
		return
	}

	attrs := []any{
		"operation", operation,
		"error_code", string(appErr.Code),
		"error", appErr.Error(),
	}
	for k, v := range appErr.Context {
		attrs = append(attrs, k, v)
	}

	if appErr.HTTPStatusCode() >= http.StatusInternalServerError {
		logger.Error("operation failed", attrs...)
		return
	}
	logger.Warn("operation rejected", attrs...)
}
