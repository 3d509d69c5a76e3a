// File: internal/services/chat/errors.go
package chat

import "fmt"

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeContext     ErrorType = "CONTEXT"
	ErrTypeLLM         ErrorType = "LLM"
	ErrTypePersistence ErrorType = "PERSISTENCE"
)

type ChatError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID uint
	UserID         uint
	Cause          error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func NewConfigError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeConfig, Operation: operation, Message: msg}
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

// NewNotFoundError covers both a missing conversation and one owned by a
// different user; the two are indistinguishable to the caller on purpose.
func NewNotFoundError(userID, conversationID uint) *ChatError {
	return &ChatError{
		Type:           ErrTypeNotFound,
		Operation:      "resolve_conversation",
		Message:        "conversation not found",
		UserID:         userID,
		ConversationID: conversationID,
	}
}

func NewPersistenceError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}
