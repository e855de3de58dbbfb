package domain

import (
	"sync"
	"time"
)

// ConversationStatus is a conversation's mutable status.
type ConversationStatus string

// Conversation statuses.
const (
	ConversationActive    ConversationStatus = "active"
	ConversationPaused    ConversationStatus = "paused"
	ConversationCompleted ConversationStatus = "completed"
	ConversationError     ConversationStatus = "error"
)

// ConversationSettings tunes upstream message creation.
type ConversationSettings struct {
	MaxTokens     int
	Temperature   float64
	TopP          *float64
	TopK          *int
	StopSequences []string
}

// DefaultConversationSettings returns the standard settings.
func DefaultConversationSettings() ConversationSettings {
	return ConversationSettings{MaxTokens: 4096, Temperature: 1.0}
}

// Conversation is the aggregate root for one exchange with the upstream
// model: an append-only message list with running token counters.
type Conversation struct {
	ID           ConversationID
	Model        Model
	SystemPrompt SystemPrompt
	CreatedAt    time.Time

	mu           sync.Mutex
	messages     []*Message
	status       ConversationStatus
	settings     ConversationSettings
	inputTokens  int
	outputTokens int
	updatedAt    time.Time
	events       []DomainEvent
}

// NewConversation creates an active conversation and queues a
// ConversationCreated event.
func NewConversation(model Model, systemPrompt SystemPrompt, settings ConversationSettings) *Conversation {
	now := time.Now().UTC()
	c := &Conversation{
		ID:           NewConversationID(),
		Model:        model,
		SystemPrompt: systemPrompt,
		CreatedAt:    now,
		status:       ConversationActive,
		settings:     settings,
		updatedAt:    now,
	}
	c.events = append(c.events, ConversationCreatedEvent{
		BaseEvent:      newBaseEvent(),
		ConversationID: c.ID.String(),
		Model:          model.String(),
	})
	return c
}

// AddMessage appends a message, accumulates its token counts, and queues a
// MessageAdded event.
func (c *Conversation) AddMessage(message *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	c.inputTokens += message.InputTokens
	c.outputTokens += message.OutputTokens
	c.updatedAt = time.Now().UTC()
	c.events = append(c.events, MessageAddedEvent{
		BaseEvent:      newBaseEvent(),
		ConversationID: c.ID.String(),
		MessageID:      message.ID.String(),
		Role:           string(message.Role),
	})
}

// Messages returns a snapshot of the message list.
func (c *Conversation) Messages() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := make([]*Message, len(c.messages))
	copy(messages, c.messages)
	return messages
}

// MessagesForAPI returns all messages in the upstream API shape.
func (c *Conversation) MessagesForAPI() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.messages))
	for _, message := range c.messages {
		out = append(out, message.ToAPIFormat())
	}
	return out
}

// SetStatus updates the conversation status.
func (c *Conversation) SetStatus(status ConversationStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.updatedAt = time.Now().UTC()
}

// Status returns the conversation status.
func (c *Conversation) Status() ConversationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Settings returns the conversation settings.
func (c *Conversation) Settings() ConversationSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// LastMessage returns the most recent message, or nil.
func (c *Conversation) LastMessage() *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// TokenCounts returns the accumulated input and output token counts.
func (c *Conversation) TokenCounts() (input, output int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputTokens, c.outputTokens
}

// TotalTokens returns the combined token count.
func (c *Conversation) TotalTokens() int {
	input, output := c.TokenCounts()
	return input + output
}

// UpdatedAt returns the time of the last mutation.
func (c *Conversation) UpdatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

// Events drains the pending domain events exactly once.
func (c *Conversation) Events() []DomainEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.events
	c.events = nil
	return events
}
