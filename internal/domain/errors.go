package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes failures for clients and for log correlation.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeInvalidPrompt      ErrorCode = "INVALID_PROMPT"
	CodeRateLimit          ErrorCode = "RATE_LIMIT"
	CodeAPITimeout         ErrorCode = "API_TIMEOUT"
	CodeAPIFailure         ErrorCode = "API_FAILURE"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"
	CodeInvalidJobID       ErrorCode = "INVALID_JOB_ID"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// Error carries a taxonomy code alongside the technical cause. The technical
// message is for logs only; user-facing copy is resolved from the i18n catalog
// by code at the HTTP boundary.
type Error struct {
	Code              ErrorCode
	StatusCode        int
	Retryable         bool
	RetryAfterSeconds int
	FieldErrors       []string // message keys, populated for validation failures
	cause             string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.cause)
}

// NewError builds a taxonomy error with an explicit HTTP status.
func NewError(code ErrorCode, status int, cause string) *Error {
	return &Error{Code: code, StatusCode: status, cause: cause}
}

func NewValidationError(fieldErrors []string) *Error {
	return &Error{
		Code:        CodeValidation,
		StatusCode:  400,
		FieldErrors: fieldErrors,
		cause:       strings.Join(fieldErrors, ", "),
	}
}

func NewInvalidPromptError(key, cause string) *Error {
	return &Error{
		Code:        CodeInvalidPrompt,
		StatusCode:  400,
		FieldErrors: []string{key},
		cause:       cause,
	}
}

func NewRateLimitError(retryAfterSeconds int) *Error {
	return &Error{
		Code:              CodeRateLimit,
		StatusCode:        429,
		Retryable:         true,
		RetryAfterSeconds: retryAfterSeconds,
		cause:             fmt.Sprintf("rate limit exceeded, retry in %ds", retryAfterSeconds),
	}
}

// AsError extracts a taxonomy error from err, if any.
func AsError(err error) (*Error, bool) {
	var domErr *Error
	if errors.As(err, &domErr) {
		return domErr, true
	}
	return nil, false
}

// Classify maps an arbitrary error onto the taxonomy. Timeouts, upstream rate
// limits and maintenance signals are recognized by the same patterns the
// upstream providers use; everything else becomes INTERNAL_ERROR.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if domErr, ok := AsError(err); ok {
		return domErr
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(lower, "timeout"):
		return &Error{Code: CodeAPITimeout, StatusCode: 504, Retryable: true, RetryAfterSeconds: 30, cause: msg}
	case strings.Contains(lower, "rate limit"), strings.Contains(lower, "429"), strings.Contains(lower, "too many requests"):
		return &Error{Code: CodeRateLimit, StatusCode: 429, Retryable: true, RetryAfterSeconds: 60, cause: msg}
	case strings.Contains(lower, "503"), strings.Contains(lower, "service unavailable"), strings.Contains(lower, "maintenance"):
		return &Error{Code: CodeServiceUnavailable, StatusCode: 503, Retryable: true, RetryAfterSeconds: 300, cause: msg}
	}

	return &Error{Code: CodeInternal, StatusCode: 500, cause: msg}
}

// ErrNotFound marks a missing job row inside the store layer.
var ErrNotFound = errors.New("not found")
