package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
)

func TestCodeReviewGenerator(t *testing.T) {
	messages, err := codeReviewGenerator(context.Background(), map[string]string{
		"code":     "func main() {}",
		"language": "go",
	})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Contains(t, messages[0].Content, "func main() {}")
	assert.Contains(t, messages[0].Content, "```go")
	assert.Contains(t, messages[0].Content, "Code quality and best practices")
}

func TestExplainCodeGenerator(t *testing.T) {
	tests := []struct {
		name        string
		detailLevel string
		want        string
	}{
		{name: "brief", detailLevel: "brief", want: "brief, high-level"},
		{name: "detailed", detailLevel: "detailed", want: "comprehensive, in-depth"},
		{name: "unknown falls back to medium", detailLevel: "extreme", want: "balanced explanation"},
		{name: "empty falls back to medium", detailLevel: "", want: "balanced explanation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages, err := explainCodeGenerator(context.Background(), map[string]string{
				"code":         "x = 1",
				"language":     "python",
				"detail_level": tt.detailLevel,
			})
			require.NoError(t, err)
			require.Len(t, messages, 1)
			assert.Contains(t, messages[0].Content, tt.want)
			assert.Contains(t, messages[0].Content, "x = 1")
		})
	}
}

func TestDebugHelpGenerator(t *testing.T) {
	messages, err := debugHelpGenerator(context.Background(), map[string]string{
		"code":     "panic(nil)",
		"error":    "runtime error: invalid memory address",
		"language": "go",
	})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Contains(t, messages[0].Content, "panic(nil)")
	assert.Contains(t, messages[0].Content, "invalid memory address")
	assert.Contains(t, messages[0].Content, "root cause")
}

func TestBuiltinPrompts(t *testing.T) {
	prompts := builtinPrompts()
	require.Len(t, prompts, 3)

	byName := map[string]*domain.Prompt{}
	for _, prompt := range prompts {
		byName[prompt.Name] = prompt
	}

	require.Contains(t, byName, "code_review")
	require.Contains(t, byName, "explain_code")
	require.Contains(t, byName, "debug_help")

	// Required arguments are enforced through Messages.
	_, err := byName["code_review"].Messages(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = byName["debug_help"].Messages(context.Background(), map[string]string{"code": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error")
}
