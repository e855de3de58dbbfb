package domain

import "context"

// ChatRequest carries everything needed to create an upstream message.
type ChatRequest struct {
	Messages     []*Message
	Model        Model
	SystemPrompt SystemPrompt
	MaxTokens    int
	Temperature  float64
	Tools        []*Tool
}

// StreamEvent is one event of an upstream streaming response: message_start,
// content_block_start/delta/stop, message_delta, or message_stop, with the
// raw event payload attached.
type StreamEvent struct {
	Type string
	Data map[string]any
}

// StreamFunc consumes streaming events. Returning an error aborts the stream.
type StreamFunc func(event StreamEvent) error

// ChatService is the upstream model client consumed by the conversation
// handler and the claude_conversation tool. Implementations are responsible
// for their own retry policy on rate-limit and connection failures.
type ChatService interface {
	// CreateMessage sends the request and returns the assistant's reply.
	CreateMessage(ctx context.Context, req ChatRequest) (*Message, error)

	// StreamMessage sends the request, invoking fn for every streaming
	// event, and returns the assembled final reply.
	StreamMessage(ctx context.Context, req ChatRequest, fn StreamFunc) (*Message, error)

	// CountTokens returns the upstream token count for the request.
	CountTokens(ctx context.Context, req ChatRequest) (int, error)
}
