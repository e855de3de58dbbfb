package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greetingGenerator(_ context.Context, args map[string]string) ([]PromptMessage, error) {
	return []PromptMessage{{Role: RoleUser, Content: "Hello, " + args["name"]}}, nil
}

func TestPrompt_Messages(t *testing.T) {
	prompt := NewPrompt("greeting", "Greets someone", []PromptArgument{
		{Name: "name", Description: "Who to greet", Required: true},
		{Name: "tone", Description: "Optional tone"},
	}, greetingGenerator)

	messages, err := prompt.Messages(context.Background(), map[string]string{"name": "world"})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.Equal(t, "Hello, world", messages[0].Content)
}

func TestPrompt_Messages_MissingRequired(t *testing.T) {
	prompt := NewPrompt("greeting", "Greets someone", []PromptArgument{
		{Name: "name", Required: true},
	}, greetingGenerator)

	_, err := prompt.Messages(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.True(t, IsValidation(err))
}

func TestPrompt_Messages_NilGenerator(t *testing.T) {
	prompt := NewPrompt("empty", "", nil, nil)
	messages, err := prompt.Messages(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, messages)
}

func TestPrompt_ToWire(t *testing.T) {
	prompt := NewPrompt("greeting", "Greets someone", []PromptArgument{
		{Name: "name", Description: "Who to greet", Required: true},
	}, greetingGenerator)

	wire := prompt.ToWire()
	assert.Equal(t, "greeting", wire["name"])
	assert.Equal(t, "Greets someone", wire["description"])

	args, ok := wire["arguments"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, args, 1)
	assert.Equal(t, "name", args[0]["name"])
	assert.Equal(t, true, args[0]["required"])
}

func TestPromptMessage_ToWire(t *testing.T) {
	message := PromptMessage{Role: RoleUser, Content: "hi"}
	wire := message.ToWire()
	assert.Equal(t, "user", wire["role"])

	content, ok := wire["content"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text", content["type"])
	assert.Equal(t, "hi", content["text"])
}
