package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened inside an aggregate that outside
// observers may care about. Events are queued on the aggregate and drained
// exactly once via Events().
type DomainEvent interface {
	EventType() string
	Occurred() time.Time
}

// BaseEvent carries the identity and timestamp common to all events.
type BaseEvent struct {
	EventID    string
	OccurredAt time.Time
}

func newBaseEvent() BaseEvent {
	return BaseEvent{
		EventID:    uuid.New().String(),
		OccurredAt: time.Now().UTC(),
	}
}

// Occurred returns the event timestamp.
func (e BaseEvent) Occurred() time.Time { return e.OccurredAt }

// SessionCreatedEvent is emitted when a session is created.
type SessionCreatedEvent struct {
	BaseEvent
	SessionID string
}

// EventType returns the event type name.
func (SessionCreatedEvent) EventType() string { return "SessionCreated" }

// SessionInitializedEvent is emitted when a session completes initialization.
type SessionInitializedEvent struct {
	BaseEvent
	SessionID     string
	ClientName    string
	ClientVersion string
}

// EventType returns the event type name.
func (SessionInitializedEvent) EventType() string { return "SessionInitialized" }

// SessionClosedEvent is emitted when a session is closed.
type SessionClosedEvent struct {
	BaseEvent
	SessionID string
}

// EventType returns the event type name.
func (SessionClosedEvent) EventType() string { return "SessionClosed" }

// ToolRegisteredEvent is emitted when a tool is registered with a session.
type ToolRegisteredEvent struct {
	BaseEvent
	SessionID string
	ToolName  string
	Category  string
}

// NewToolRegisteredEvent creates a ToolRegisteredEvent.
func NewToolRegisteredEvent(sessionID SessionID, toolName, category string) *ToolRegisteredEvent {
	return &ToolRegisteredEvent{
		BaseEvent: newBaseEvent(),
		SessionID: sessionID.String(),
		ToolName:  toolName,
		Category:  category,
	}
}

// EventType returns the event type name.
func (ToolRegisteredEvent) EventType() string { return "ToolRegistered" }

// ToolExecutedEvent is emitted after every tool invocation, successful or not.
type ToolExecutedEvent struct {
	BaseEvent
	SessionID    string
	ToolName     string
	Success      bool
	Duration     time.Duration
	ErrorMessage string
}

// NewToolExecutedEvent creates a ToolExecutedEvent.
func NewToolExecutedEvent(sessionID SessionID, toolName string, success bool, duration time.Duration, errorMessage string) *ToolExecutedEvent {
	return &ToolExecutedEvent{
		BaseEvent:    newBaseEvent(),
		SessionID:    sessionID.String(),
		ToolName:     toolName,
		Success:      success,
		Duration:     duration,
		ErrorMessage: errorMessage,
	}
}

// EventType returns the event type name.
func (ToolExecutedEvent) EventType() string { return "ToolExecuted" }

// ConversationCreatedEvent is emitted when a conversation is created.
type ConversationCreatedEvent struct {
	BaseEvent
	ConversationID string
	Model          string
}

// EventType returns the event type name.
func (ConversationCreatedEvent) EventType() string { return "ConversationCreated" }

// MessageAddedEvent is emitted when a message is appended to a conversation.
type MessageAddedEvent struct {
	BaseEvent
	ConversationID string
	MessageID      string
	Role           string
}

// EventType returns the event type name.
func (MessageAddedEvent) EventType() string { return "MessageAdded" }
