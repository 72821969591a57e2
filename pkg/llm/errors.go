package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies LLM call failures.
type ErrorType string

const (
	ErrorTypeAuth     ErrorType = "auth"     // bad credentials, not retryable
	ErrorTypeModel    ErrorType = "model"    // unknown model, not retryable
	ErrorTypeEndpoint ErrorType = "endpoint" // connectivity / server trouble
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents a structured LLM error with classification.
type Error struct {
	Type      ErrorType // Classification of the error
	Message   string    // Human-readable message
	Retryable bool      // Whether the operation can be retried
	Cause     error     // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured LLM error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
// Transient failures (timeouts, connection trouble, rate limits, 5xx)
// are marked retryable; config problems are not.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	if errors.Is(err, ErrCircuitOpen) {
		return NewError(ErrorTypeEndpoint, "circuit open", true, err)
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errStr, "401"), strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "invalid api key"):
		return NewError(ErrorTypeAuth, "authentication failed", false, err)

	case strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")):
		return NewError(ErrorTypeModel, "model not found", false, err)

	case strings.Contains(lower, "connection refused"), strings.Contains(lower, "no such host"):
		return NewError(ErrorTypeEndpoint, "connection failed", true, err)

	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"),
		strings.Contains(lower, "context canceled"):
		return NewError(ErrorTypeEndpoint, "request timeout", true, err)

	case strings.Contains(errStr, "429"), strings.Contains(lower, "rate limit"):
		return NewError(ErrorTypeEndpoint, "rate limited", true, err)

	case strings.Contains(errStr, "500"), strings.Contains(errStr, "502"),
		strings.Contains(errStr, "503"), strings.Contains(errStr, "504"):
		return NewError(ErrorTypeEndpoint, "server error", true, err)
	}

	return NewError(ErrorTypeUnknown, "llm error", false, err)
}

// IsRetryable returns true if the error is a retryable LLM error.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}
