package builtin

import (
	"context"
	"fmt"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
)

func codeReviewGenerator(_ context.Context, args map[string]string) ([]domain.PromptMessage, error) {
	code := args["code"]
	language := args["language"]

	content := fmt.Sprintf(`Please review the following %s code and provide feedback on:
1. Code quality and best practices
2. Potential bugs or issues
3. Performance considerations
4. Security concerns
5. Suggestions for improvement

Code to review:
`+"```%s\n%s\n```"+`

Please provide a thorough code review with specific recommendations.`, language, language, code)

	return []domain.PromptMessage{{Role: domain.RoleUser, Content: content}}, nil
}

var detailInstructions = map[string]string{
	"brief":    "Provide a brief, high-level explanation.",
	"medium":   "Provide a balanced explanation with key details.",
	"detailed": "Provide a comprehensive, in-depth explanation.",
}

func explainCodeGenerator(_ context.Context, args map[string]string) ([]domain.PromptMessage, error) {
	code := args["code"]
	language := args["language"]

	instruction, ok := detailInstructions[args["detail_level"]]
	if !ok {
		instruction = detailInstructions["medium"]
	}

	content := fmt.Sprintf(`Please explain the following %s code.

%s

Code to explain:
`+"```%s\n%s\n```"+`

Include:
- What the code does overall
- Key functions and their purposes
- Important data structures
- Any notable patterns or techniques used`, language, instruction, language, code)

	return []domain.PromptMessage{{Role: domain.RoleUser, Content: content}}, nil
}

func debugHelpGenerator(_ context.Context, args map[string]string) ([]domain.PromptMessage, error) {
	code := args["code"]
	errorText := args["error"]
	language := args["language"]

	content := fmt.Sprintf(`I need help debugging this %s code.

The code:
`+"```%s\n%s\n```"+`

The error/issue:
%s

Please help me:
1. Understand what's causing the error
2. Identify the root cause
3. Suggest a fix with explanation
4. Recommend any preventive measures for similar issues`, language, language, code, errorText)

	return []domain.PromptMessage{{Role: domain.RoleUser, Content: content}}, nil
}

func builtinPrompts() []*domain.Prompt {
	return []*domain.Prompt{
		domain.NewPrompt(
			"code_review",
			"Get a thorough code review with actionable feedback",
			[]domain.PromptArgument{
				{Name: "code", Description: "The code to review", Required: true},
				{Name: "language", Description: "Programming language of the code"},
			},
			codeReviewGenerator,
		),
		domain.NewPrompt(
			"explain_code",
			"Get a detailed explanation of what code does",
			[]domain.PromptArgument{
				{Name: "code", Description: "The code to explain", Required: true},
				{Name: "language", Description: "Programming language of the code"},
				{Name: "detail_level", Description: "Level of detail: brief, medium, or detailed"},
			},
			explainCodeGenerator,
		),
		domain.NewPrompt(
			"debug_help",
			"Get help debugging code errors",
			[]domain.PromptArgument{
				{Name: "code", Description: "The code with the bug", Required: true},
				{Name: "error", Description: "The error message or description of the issue", Required: true},
				{Name: "language", Description: "Programming language of the code"},
			},
			debugHelpGenerator,
		),
	}
}
