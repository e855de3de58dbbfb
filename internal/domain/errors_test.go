package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidation(t *testing.T) {
	validation := []error{
		NewValidationError("bad input"),
		&ResourceNotFoundError{URI: "file:///x"},
		&PromptNotFoundError{Name: "missing"},
		&SessionStateError{Operation: "initialize", State: SessionReady},
	}
	for _, err := range validation {
		assert.True(t, IsValidation(err), err.Error())
	}

	// Tool lookups are resolved to error results, not protocol errors.
	assert.False(t, IsValidation(&ToolNotFoundError{Name: "missing"}))
	assert.False(t, IsValidation(errors.New("plain")))
	assert.False(t, IsValidation(nil))
}

func TestIsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NewValidationError("bad"))
	assert.True(t, IsValidation(err))
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&ToolNotFoundError{Name: "echo"}).Error(), "echo")
	assert.Contains(t, (&ResourceNotFoundError{URI: "config://x"}).Error(), "config://x")
	assert.Contains(t, (&SessionNotFoundError{ID: "abc"}).Error(), "abc")
	assert.Contains(t, (&ConversationNotFoundError{ID: "def"}).Error(), "def")

	stateErr := &SessionStateError{Operation: "initialize", State: SessionClosed}
	assert.Contains(t, stateErr.Error(), "initialize")
	assert.Contains(t, stateErr.Error(), "closed")
}
