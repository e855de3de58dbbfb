package domain

import (
	"errors"
	"fmt"
)

// ValidationError indicates that input failed domain validation. The protocol
// layer maps validation-class errors to JSON-RPC invalid-params responses.
type ValidationError struct {
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ToolNotFoundError indicates that a requested tool was not found.
type ToolNotFoundError struct {
	Name string
}

// Error returns the error message.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// ResourceNotFoundError indicates that a requested resource was not found.
type ResourceNotFoundError struct {
	URI string
}

// Error returns the error message.
func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URI)
}

// PromptNotFoundError indicates that a requested prompt was not found.
type PromptNotFoundError struct {
	Name string
}

// Error returns the error message.
func (e *PromptNotFoundError) Error() string {
	return fmt.Sprintf("prompt not found: %s", e.Name)
}

// SessionNotFoundError indicates that a requested session was not found.
type SessionNotFoundError struct {
	ID string
}

// Error returns the error message.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ConversationNotFoundError indicates that a requested conversation was not found.
type ConversationNotFoundError struct {
	ID string
}

// Error returns the error message.
func (e *ConversationNotFoundError) Error() string {
	return fmt.Sprintf("conversation not found: %s", e.ID)
}

// SessionStateError indicates an operation was attempted in a session state
// that does not permit it.
type SessionStateError struct {
	Operation string
	State     SessionState
}

// Error returns the error message.
func (e *SessionStateError) Error() string {
	return fmt.Sprintf("cannot %s session in state: %s", e.Operation, e.State)
}

// IsValidation reports whether err belongs to the validation class that the
// protocol layer surfaces as invalid-params. Tool lookup failures are
// excluded: the invocation pipeline converts those to error results instead
// of protocol errors.
func IsValidation(err error) bool {
	var (
		validation   *ValidationError
		resource     *ResourceNotFoundError
		prompt       *PromptNotFoundError
		sessionState *SessionStateError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &resource) ||
		errors.As(err, &prompt) ||
		errors.As(err, &sessionState)
}
