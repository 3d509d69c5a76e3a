// File: internal/services/ai/errors.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeNetwork     ErrorType = "NETWORK"
	ErrTypeProvider    ErrorType = "PROVIDER"
	ErrTypeRateLimit   ErrorType = "RATE_LIMIT"
	ErrTypeTimeout     ErrorType = "TIMEOUT"
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrTypeValidation  ErrorType = "VALIDATION"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

// Retryable reports whether another attempt against the provider can
// reasonably succeed: rate limits, 5xx responses and transport failures.
func (e *AIError) Retryable() bool {
	switch e.Type {
	case ErrTypeNetwork, ErrTypeRateLimit:
		return true
	case ErrTypeProvider:
		return e.Code >= http.StatusInternalServerError
	default:
		return false
	}
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

// Classify maps a raw provider/client error onto the AIError taxonomy so the
// retry loop can decide by type instead of probing error strings.
func Classify(operation string, err error) *AIError {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AIError{Type: ErrTypeTimeout, Operation: operation, Message: "request deadline exceeded", Cause: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(operation, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(operation, reqErr.HTTPStatusCode, err)
	}

	// No HTTP status at all: connection refused, DNS failure, broken pipe.
	return &AIError{Type: ErrTypeNetwork, Operation: operation, Message: "transport failure", Cause: err}
}

func classifyStatus(operation string, status int, cause error) *AIError {
	switch {
	case status == http.StatusTooManyRequests:
		return &AIError{Type: ErrTypeRateLimit, Code: status, Operation: operation, Message: "provider rate limit", Cause: cause}
	case status >= http.StatusInternalServerError:
		return &AIError{Type: ErrTypeProvider, Code: status, Operation: operation, Message: "provider server error", Cause: cause}
	default:
		return &AIError{Type: ErrTypeProvider, Code: status, Operation: operation, Message: "provider rejected request", Cause: cause}
	}
}
