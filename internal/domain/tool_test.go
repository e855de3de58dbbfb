package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(_ context.Context, _ map[string]any) (*ToolResult, error) {
	return TextResult("ok"), nil
}

func TestNewTool_Defaults(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	tool, err := NewTool("echo", "echoes input", schema, ToolHandlerFunc(noopHandler))
	require.NoError(t, err)

	assert.Equal(t, "echo", tool.Name.String())
	assert.Equal(t, "general", tool.Category)
	assert.True(t, tool.Enabled)
	assert.Equal(t, DefaultToolTimeout, tool.Timeout)
}

func TestNewTool_Options(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	tool, err := NewTool("echo", "echoes input", schema, ToolHandlerFunc(noopHandler),
		WithToolCategory("utility"),
		WithToolTags("test", "debug"),
		WithToolTimeout(120*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, "utility", tool.Category)
	assert.Equal(t, []string{"test", "debug"}, tool.Tags)
	assert.Equal(t, 120*time.Second, tool.Timeout)
}

func TestNewTool_InvalidName(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	_, err := NewTool("Bad Name", "desc", schema, ToolHandlerFunc(noopHandler))
	assert.Error(t, err)
}

func TestTool_Execute(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	tool, err := NewTool("echo", "echoes input", schema, ToolHandlerFunc(
		func(_ context.Context, args map[string]any) (*ToolResult, error) {
			msg, _ := args["message"].(string)
			return TextResult(msg), nil
		}))
	require.NoError(t, err)

	result, err := tool.Execute(context.Background(), map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "hi", result.Content[0].Text)
}

func TestTool_Execute_Disabled(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	tool, err := NewTool("echo", "echoes input", schema, ToolHandlerFunc(noopHandler))
	require.NoError(t, err)
	tool.Enabled = false

	result, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "disabled")
}

func TestTool_Execute_NilHandler(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	tool, err := NewTool("echo", "echoes input", schema, nil)
	require.NoError(t, err)

	result, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestTool_Execute_HandlerError(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	tool, err := NewTool("bad", "always fails", schema, ToolHandlerFunc(
		func(_ context.Context, _ map[string]any) (*ToolResult, error) {
			return nil, errors.New("boom")
		}))
	require.NoError(t, err)

	_, err = tool.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestTool_ToWire(t *testing.T) {
	schema := NewToolInputSchema(map[string]map[string]any{
		"message": {"type": "string"},
	}, []string{"message"})
	tool, err := NewTool("echo", "echoes input", schema, ToolHandlerFunc(noopHandler))
	require.NoError(t, err)

	wire := tool.ToWire()
	assert.Equal(t, "echo", wire["name"])
	assert.Equal(t, "echoes input", wire["description"])

	schemaWire, ok := wire["inputSchema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schemaWire["type"])
	assert.Equal(t, []string{"message"}, schemaWire["required"])
}

func TestToolResults(t *testing.T) {
	text := TextResult("hello")
	assert.False(t, text.IsError)
	assert.Equal(t, "text", text.Content[0].Type)
	assert.Equal(t, "hello", text.Content[0].Text)

	errResult := ErrorResult("bad")
	assert.True(t, errResult.IsError)
	assert.Contains(t, errResult.Content[0].Text, "bad")

	jsonResult := JSONResult(map[string]int{"n": 1})
	assert.False(t, jsonResult.IsError)
	assert.Contains(t, jsonResult.Content[0].Text, `"n": 1`)

	jsonErr := JSONErrorResult(map[string]int{"exit_code": 2})
	assert.True(t, jsonErr.IsError)
}

func TestToolInputSchema_ToWire(t *testing.T) {
	schema := NewToolInputSchema(nil, nil)
	wire := schema.ToWire()
	assert.Equal(t, "object", wire["type"])
	_, hasRequired := wire["required"]
	assert.False(t, hasRequired)
}

func TestToolInputSchemaFromMap(t *testing.T) {
	schema := ToolInputSchemaFromMap(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{"type": "string"},
		},
		"required": []any{"path"},
	})
	assert.Equal(t, []string{"path"}, schema.Required)
	assert.Contains(t, schema.Properties, "path")
}
