// Package domain defines the core entities, aggregates and value objects
// for the MCP server.
package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// SessionID uniquely identifies a session.
type SessionID string

// NewSessionID generates a new random session ID.
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// SessionIDFromString creates a SessionID from an existing string value.
func SessionIDFromString(value string) (SessionID, error) {
	if value == "" {
		return "", NewValidationError("session ID cannot be empty")
	}
	return SessionID(value), nil
}

// String returns the string value of the ID.
func (id SessionID) String() string { return string(id) }

// ConversationID uniquely identifies a conversation.
type ConversationID string

// NewConversationID generates a new random conversation ID.
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// ConversationIDFromString creates a ConversationID from an existing string value.
func ConversationIDFromString(value string) (ConversationID, error) {
	if value == "" {
		return "", NewValidationError("conversation ID cannot be empty")
	}
	return ConversationID(value), nil
}

// String returns the string value of the ID.
func (id ConversationID) String() string { return string(id) }

// MessageID uniquely identifies a message.
type MessageID string

// NewMessageID generates a new random message ID.
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// MessageIDFromString creates a MessageID from an existing string value.
func MessageIDFromString(value string) (MessageID, error) {
	if value == "" {
		return "", NewValidationError("message ID cannot be empty")
	}
	return MessageID(value), nil
}

// String returns the string value of the ID.
func (id MessageID) String() string { return string(id) }

// ToolName constraints.
const MaxToolNameLength = 64

var toolNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ToolName is a validated tool identifier: lowercase letters, digits and
// underscores, starting with a letter.
type ToolName string

// NewToolName validates and creates a ToolName.
func NewToolName(value string) (ToolName, error) {
	if value == "" {
		return "", NewValidationError("tool name cannot be empty")
	}
	if len(value) > MaxToolNameLength {
		return "", NewValidationError(fmt.Sprintf("tool name cannot exceed %d characters", MaxToolNameLength))
	}
	if !toolNamePattern.MatchString(value) {
		return "", NewValidationError(fmt.Sprintf("tool name must match %s: %s", toolNamePattern.String(), value))
	}
	return ToolName(value), nil
}

// String returns the string value of the name.
func (n ToolName) String() string { return string(n) }

// MaxToolDescriptionLength bounds tool descriptions.
const MaxToolDescriptionLength = 1024

// ToolDescription is a validated, non-empty tool description.
type ToolDescription string

// NewToolDescription validates and creates a ToolDescription.
func NewToolDescription(value string) (ToolDescription, error) {
	if value == "" {
		return "", NewValidationError("tool description cannot be empty")
	}
	if len(value) > MaxToolDescriptionLength {
		return "", NewValidationError(fmt.Sprintf("tool description cannot exceed %d characters", MaxToolDescriptionLength))
	}
	return ToolDescription(value), nil
}

// String returns the string value of the description.
func (d ToolDescription) String() string { return string(d) }

// validResourceSchemes lists the URI schemes a resource may use.
var validResourceSchemes = map[string]bool{
	"file":   true,
	"config": true,
	"status": true,
	"http":   true,
	"https":  true,
}

// ResourceURI is a validated resource URI of the form scheme://path.
type ResourceURI string

// NewResourceURI validates and creates a ResourceURI.
func NewResourceURI(value string) (ResourceURI, error) {
	if value == "" {
		return "", NewValidationError("resource URI cannot be empty")
	}
	if !strings.Contains(value, "://") {
		return "", NewValidationError(fmt.Sprintf("resource URI must contain a scheme: %s", value))
	}
	scheme := strings.ToLower(strings.SplitN(value, "://", 2)[0])
	if !validResourceSchemes[scheme] {
		return "", NewValidationError(fmt.Sprintf("resource URI scheme %q is not supported", scheme))
	}
	return ResourceURI(value), nil
}

// Scheme returns the lowercased URI scheme.
func (u ResourceURI) Scheme() string {
	return strings.ToLower(strings.SplitN(string(u), "://", 2)[0])
}

// Path returns the portion of the URI after the scheme separator.
func (u ResourceURI) Path() string {
	parts := strings.SplitN(string(u), "://", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return string(u)
}

// IsTemplate reports whether the URI is a template. Detection is a deliberate
// substring check for braces anywhere in the value; clients depend on this
// coarse behavior.
func (u ResourceURI) IsTemplate() bool {
	return strings.Contains(string(u), "{") && strings.Contains(string(u), "}")
}

// String returns the string value of the URI.
func (u ResourceURI) String() string { return string(u) }

// MaxSystemPromptLength bounds system prompts.
const MaxSystemPromptLength = 100000

// SystemPrompt is a bounded system prompt string.
type SystemPrompt string

// NewSystemPrompt validates and creates a SystemPrompt.
func NewSystemPrompt(value string) (SystemPrompt, error) {
	if len(value) > MaxSystemPromptLength {
		return "", NewValidationError(fmt.Sprintf("system prompt cannot exceed %d characters", MaxSystemPromptLength))
	}
	return SystemPrompt(value), nil
}

// IsEmpty reports whether the prompt is blank after trimming whitespace.
func (p SystemPrompt) IsEmpty() bool {
	return strings.TrimSpace(string(p)) == ""
}

// String returns the string value of the prompt.
func (p SystemPrompt) String() string { return string(p) }
