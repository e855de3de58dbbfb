package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultToolTimeout bounds tool execution when no override is configured.
const DefaultToolTimeout = 30 * time.Second

// ToolHandler executes a tool invocation. Implementations must tolerate
// cancellation mid-flight: the invocation pipeline abandons handlers that
// outlive their timeout.
type ToolHandler interface {
	Invoke(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// ToolHandlerFunc adapts a plain function to the ToolHandler interface.
type ToolHandlerFunc func(ctx context.Context, args map[string]any) (*ToolResult, error)

// Invoke calls the wrapped function.
func (f ToolHandlerFunc) Invoke(ctx context.Context, args map[string]any) (*ToolResult, error) {
	return f(ctx, args)
}

// ToolInputSchema is the JSON-Schema-like description of a tool's arguments.
type ToolInputSchema struct {
	Type                 string
	Properties           map[string]map[string]any
	Required             []string
	AdditionalProperties bool
}

// NewToolInputSchema creates an object schema with the given properties and
// required fields. additionalProperties defaults to false.
func NewToolInputSchema(properties map[string]map[string]any, required []string) ToolInputSchema {
	return ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// ToolInputSchemaFromMap builds a schema from a raw JSON-Schema map.
func ToolInputSchemaFromMap(data map[string]any) ToolInputSchema {
	schema := ToolInputSchema{Type: "object", Properties: map[string]map[string]any{}}
	if t, ok := data["type"].(string); ok && t != "" {
		schema.Type = t
	}
	if props, ok := data["properties"].(map[string]any); ok {
		for name, raw := range props {
			if prop, ok := raw.(map[string]any); ok {
				schema.Properties[name] = prop
			}
		}
	}
	if required, ok := data["required"].([]any); ok {
		for _, raw := range required {
			if name, ok := raw.(string); ok {
				schema.Required = append(schema.Required, name)
			}
		}
	}
	if additional, ok := data["additionalProperties"].(bool); ok {
		schema.AdditionalProperties = additional
	}
	return schema
}

// ToWire converts the schema to its JSON-Schema wire representation.
func (s ToolInputSchema) ToWire() map[string]any {
	properties := s.Properties
	if properties == nil {
		properties = map[string]map[string]any{}
	}
	wire := map[string]any{
		"type":       s.Type,
		"properties": properties,
	}
	if len(s.Required) > 0 {
		wire["required"] = s.Required
	}
	if !s.AdditionalProperties {
		wire["additionalProperties"] = false
	}
	return wire
}

// ToolContent is one content item of a tool result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the outcome of a tool invocation. The invocation pipeline
// always returns one of these, never an error, so failures travel inside a
// successful JSON-RPC envelope with isError set.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// TextResult creates a successful text result.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []ToolContent{{Type: "text", Text: text}}}
}

// ErrorResult creates a failed text result.
func ErrorResult(message string) *ToolResult {
	return &ToolResult{
		Content: []ToolContent{{Type: "text", Text: message}},
		IsError: true,
	}
}

// JSONResult creates a result whose text is the indented JSON encoding of v.
func JSONResult(v any) *ToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to encode result: %v", err))
	}
	return TextResult(string(data))
}

// JSONErrorResult creates a failed result carrying the JSON encoding of v.
func JSONErrorResult(v any) *ToolResult {
	result := JSONResult(v)
	result.IsError = true
	return result
}

// Tool is an invocable capability registered with a session. A tool without
// a handler is listable but every execution reports an error result.
type Tool struct {
	Name        ToolName
	Description ToolDescription
	InputSchema ToolInputSchema
	Handler     ToolHandler
	Category    string
	Tags        []string
	Enabled     bool
	Timeout     time.Duration
	CreatedAt   time.Time
}

// ToolOption customizes a tool at construction time.
type ToolOption func(*Tool)

// WithToolCategory sets the tool's category.
func WithToolCategory(category string) ToolOption {
	return func(t *Tool) { t.Category = category }
}

// WithToolTags sets the tool's tags.
func WithToolTags(tags ...string) ToolOption {
	return func(t *Tool) { t.Tags = tags }
}

// WithToolTimeout overrides the execution timeout.
func WithToolTimeout(timeout time.Duration) ToolOption {
	return func(t *Tool) { t.Timeout = timeout }
}

// NewTool validates the name and description and creates a tool. The tool
// starts enabled, in the "general" category, with the default timeout.
func NewTool(name, description string, schema ToolInputSchema, handler ToolHandler, opts ...ToolOption) (*Tool, error) {
	toolName, err := NewToolName(name)
	if err != nil {
		return nil, err
	}
	toolDesc, err := NewToolDescription(description)
	if err != nil {
		return nil, err
	}
	tool := &Tool{
		Name:        toolName,
		Description: toolDesc,
		InputSchema: schema,
		Handler:     handler,
		Category:    "general",
		Enabled:     true,
		Timeout:     DefaultToolTimeout,
		CreatedAt:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(tool)
	}
	return tool, nil
}

// Execute runs the tool's handler. Missing handlers and disabled tools
// produce error results rather than Go errors.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (*ToolResult, error) {
	if t.Handler == nil {
		return ErrorResult(fmt.Sprintf("tool %q has no handler", t.Name)), nil
	}
	if !t.Enabled {
		return ErrorResult(fmt.Sprintf("tool %q is disabled", t.Name)), nil
	}
	return t.Handler.Invoke(ctx, args)
}

// ToWire converts the tool to its tools/list wire representation.
func (t *Tool) ToWire() map[string]any {
	return map[string]any{
		"name":        t.Name.String(),
		"description": t.Description.String(),
		"inputSchema": t.InputSchema.ToWire(),
	}
}
