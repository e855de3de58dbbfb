package domain

import (
	"context"
	"fmt"
	"time"
)

// PromptArgument describes one argument a prompt accepts.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// ToWire converts the argument to its prompts/list wire representation.
func (a PromptArgument) ToWire() map[string]any {
	wire := map[string]any{"name": a.Name}
	if a.Description != "" {
		wire["description"] = a.Description
	}
	if a.Required {
		wire["required"] = true
	}
	return wire
}

// PromptMessage is one message produced by prompt generation.
type PromptMessage struct {
	Role    Role
	Content string
}

// ToWire converts the message to its prompts/get wire representation.
func (m PromptMessage) ToWire() map[string]any {
	return map[string]any{
		"role":    string(m.Role),
		"content": map[string]any{"type": "text", "text": m.Content},
	}
}

// PromptGenerator produces the messages for a prompt given its arguments.
type PromptGenerator func(ctx context.Context, args map[string]string) ([]PromptMessage, error)

// Prompt is a parameterized message template registered with a session,
// identified by name.
type Prompt struct {
	Name        string
	Description string
	Arguments   []PromptArgument
	Generator   PromptGenerator
	CreatedAt   time.Time
}

// NewPrompt creates a prompt with the given arguments and generator.
func NewPrompt(name, description string, arguments []PromptArgument, generator PromptGenerator) *Prompt {
	return &Prompt{
		Name:        name,
		Description: description,
		Arguments:   arguments,
		Generator:   generator,
		CreatedAt:   time.Now().UTC(),
	}
}

// Messages validates required arguments and runs the generator. A prompt
// without a generator produces no messages.
func (p *Prompt) Messages(ctx context.Context, args map[string]string) ([]PromptMessage, error) {
	for _, arg := range p.Arguments {
		if arg.Required {
			if _, ok := args[arg.Name]; !ok {
				return nil, NewValidationError(fmt.Sprintf("missing required argument: %s", arg.Name))
			}
		}
	}
	if p.Generator == nil {
		return nil, nil
	}
	return p.Generator(ctx, args)
}

// ToWire converts the prompt to its prompts/list wire representation.
func (p *Prompt) ToWire() map[string]any {
	wire := map[string]any{"name": p.Name}
	if p.Description != "" {
		wire["description"] = p.Description
	}
	if len(p.Arguments) > 0 {
		args := make([]map[string]any, 0, len(p.Arguments))
		for _, arg := range p.Arguments {
			args = append(args, arg.ToWire())
		}
		wire["arguments"] = args
	}
	return wire
}
