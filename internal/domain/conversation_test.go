package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversation() *Conversation {
	return NewConversation(DefaultModel(), SystemPrompt(""), DefaultConversationSettings())
}

func TestNewConversation(t *testing.T) {
	conversation := newTestConversation()
	assert.NotEmpty(t, conversation.ID.String())
	assert.Equal(t, ConversationActive, conversation.Status())
	assert.Zero(t, conversation.MessageCount())

	events := conversation.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "ConversationCreated", events[0].EventType())
}

func TestConversation_AddMessage(t *testing.T) {
	conversation := newTestConversation()
	conversation.Events()

	user := NewUserMessage("hello")
	conversation.AddMessage(user)

	assistant := NewAssistantMessage("hi there")
	assistant.InputTokens = 10
	assistant.OutputTokens = 5
	conversation.AddMessage(assistant)

	assert.Equal(t, 2, conversation.MessageCount())
	assert.Same(t, assistant, conversation.LastMessage())

	input, output := conversation.TokenCounts()
	assert.Equal(t, 10, input)
	assert.Equal(t, 5, output)
	assert.Equal(t, 15, conversation.TotalTokens())

	events := conversation.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "MessageAdded", events[0].EventType())
}

func TestConversation_Messages_Snapshot(t *testing.T) {
	conversation := newTestConversation()
	conversation.AddMessage(NewUserMessage("one"))

	snapshot := conversation.Messages()
	conversation.AddMessage(NewUserMessage("two"))

	assert.Len(t, snapshot, 1)
	assert.Len(t, conversation.Messages(), 2)
}

func TestConversation_MessagesForAPI(t *testing.T) {
	conversation := newTestConversation()
	conversation.AddMessage(NewUserMessage("hello"))

	wire := conversation.MessagesForAPI()
	require.Len(t, wire, 1)
	assert.Equal(t, "user", wire[0]["role"])
}

func TestConversation_SetStatus(t *testing.T) {
	conversation := newTestConversation()
	conversation.SetStatus(ConversationCompleted)
	assert.Equal(t, ConversationCompleted, conversation.Status())
}

func TestDefaultConversationSettings(t *testing.T) {
	settings := DefaultConversationSettings()
	assert.Equal(t, 4096, settings.MaxTokens)
	assert.Equal(t, 1.0, settings.Temperature)
}
