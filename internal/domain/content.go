package domain

import (
	"strings"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Model identifies an upstream Claude model variant.
type Model string

// Known model variants.
const (
	ModelClaude4Opus    Model = "claude-opus-4-20250514"
	ModelClaude4Sonnet  Model = "claude-sonnet-4-20250514"
	ModelClaude35Sonnet Model = "claude-3-5-sonnet-20241022"
	ModelClaude35Haiku  Model = "claude-3-5-haiku-20241022"
	ModelClaude3Opus    Model = "claude-3-opus-20240229"
	ModelClaude3Sonnet  Model = "claude-3-sonnet-20240229"
	ModelClaude3Haiku   Model = "claude-3-haiku-20240307"
)

var knownModels = map[Model]bool{
	ModelClaude4Opus:    true,
	ModelClaude4Sonnet:  true,
	ModelClaude35Sonnet: true,
	ModelClaude35Haiku:  true,
	ModelClaude3Opus:    true,
	ModelClaude3Sonnet:  true,
	ModelClaude3Haiku:   true,
}

// DefaultModel returns the model used when none is requested.
func DefaultModel() Model { return ModelClaude4Sonnet }

// ModelFromString parses a model identifier.
func ModelFromString(value string) (Model, error) {
	m := Model(value)
	if !knownModels[m] {
		return "", NewValidationError("unknown model: " + value)
	}
	return m, nil
}

// String returns the model identifier.
func (m Model) String() string { return string(m) }

// MimeType is a media type label attached to resource content.
type MimeType string

// Common MIME types.
const (
	MimeTextPlain       MimeType = "text/plain"
	MimeTextHTML        MimeType = "text/html"
	MimeTextCSS         MimeType = "text/css"
	MimeTextJavaScript  MimeType = "text/javascript"
	MimeTextMarkdown    MimeType = "text/markdown"
	MimeTextCSV         MimeType = "text/csv"
	MimeApplicationJSON MimeType = "application/json"
	MimeApplicationXML  MimeType = "application/xml"
	MimeApplicationYAML MimeType = "application/yaml"
	MimeOctetStream     MimeType = "application/octet-stream"
	MimeApplicationPDF  MimeType = "application/pdf"
	MimeImagePNG        MimeType = "image/png"
	MimeImageJPEG       MimeType = "image/jpeg"
	MimeImageGIF        MimeType = "image/gif"
	MimeImageSVG        MimeType = "image/svg+xml"
)

var extensionMimeTypes = map[string]MimeType{
	"txt":      MimeTextPlain,
	"html":     MimeTextHTML,
	"htm":      MimeTextHTML,
	"css":      MimeTextCSS,
	"js":       MimeTextJavaScript,
	"mjs":      MimeTextJavaScript,
	"md":       MimeTextMarkdown,
	"markdown": MimeTextMarkdown,
	"csv":      MimeTextCSV,
	"json":     MimeApplicationJSON,
	"xml":      MimeApplicationXML,
	"yaml":     MimeApplicationYAML,
	"yml":      MimeApplicationYAML,
	"pdf":      MimeApplicationPDF,
	"png":      MimeImagePNG,
	"jpg":      MimeImageJPEG,
	"jpeg":     MimeImageJPEG,
	"gif":      MimeImageGIF,
	"svg":      MimeImageSVG,
}

// MimeTypeFromExtension maps a file extension to a MIME type, defaulting to
// application/octet-stream.
func MimeTypeFromExtension(ext string) MimeType {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if mime, ok := extensionMimeTypes[ext]; ok {
		return mime
	}
	return MimeOctetStream
}

// String returns the MIME type value.
func (m MimeType) String() string { return string(m) }

// ContentBlock is one block of message content: text, a tool use request, or
// a tool result.
type ContentBlock interface {
	// ToWire converts the block to its wire representation.
	ToWire() map[string]any
}

// TextContent is a plain text content block.
type TextContent struct {
	Text string
}

// ToWire converts the block to its wire representation.
func (c TextContent) ToWire() map[string]any {
	return map[string]any{"type": "text", "text": c.Text}
}

// ToolUseContent is a tool invocation request emitted by the model.
type ToolUseContent struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToWire converts the block to its wire representation.
func (c ToolUseContent) ToWire() map[string]any {
	return map[string]any{
		"type":  "tool_use",
		"id":    c.ID,
		"name":  c.Name,
		"input": c.Input,
	}
}

// ToolResultContent carries the outcome of a tool invocation back to the model.
type ToolResultContent struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// ToWire converts the block to its wire representation.
func (c ToolResultContent) ToWire() map[string]any {
	wire := map[string]any{
		"type":        "tool_result",
		"tool_use_id": c.ToolUseID,
		"content":     c.Content,
	}
	if c.IsError {
		wire["is_error"] = true
	}
	return wire
}

// Message is a single conversation message composed of content blocks.
type Message struct {
	ID           MessageID
	Role         Role
	Content      []ContentBlock
	CreatedAt    time.Time
	InputTokens  int
	OutputTokens int
}

// NewMessage creates a message with the given role and content blocks.
func NewMessage(role Role, content ...ContentBlock) *Message {
	return &Message{
		ID:        NewMessageID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// NewUserMessage creates a user message with a single text block.
func NewUserMessage(text string) *Message {
	return NewMessage(RoleUser, TextContent{Text: text})
}

// NewAssistantMessage creates an assistant message with a single text block.
func NewAssistantMessage(text string) *Message {
	return NewMessage(RoleAssistant, TextContent{Text: text})
}

// Text returns the concatenation of all text blocks, newline separated.
func (m *Message) Text() string {
	var texts []string
	for _, block := range m.Content {
		if t, ok := block.(TextContent); ok {
			texts = append(texts, t.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ToolUses returns all tool use blocks in the message.
func (m *Message) ToolUses() []ToolUseContent {
	var uses []ToolUseContent
	for _, block := range m.Content {
		if u, ok := block.(ToolUseContent); ok {
			uses = append(uses, u)
		}
	}
	return uses
}

// HasToolUse reports whether the message contains a tool use block.
func (m *Message) HasToolUse() bool {
	return len(m.ToolUses()) > 0
}

// TotalTokens returns the combined token count for the message.
func (m *Message) TotalTokens() int {
	return m.InputTokens + m.OutputTokens
}

// ToAPIFormat converts the message to the upstream messages-API shape.
func (m *Message) ToAPIFormat() map[string]any {
	blocks := make([]map[string]any, 0, len(m.Content))
	for _, block := range m.Content {
		blocks = append(blocks, block.ToWire())
	}
	return map[string]any{"role": string(m.Role), "content": blocks}
}
