// Package builtin registers the tools, resources and prompts the server
// ships with.
package builtin

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gobwas/glob"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
)

func echoHandler(_ context.Context, args map[string]any) (*domain.ToolResult, error) {
	message, _ := args["message"].(string)
	return domain.TextResult("Echo: " + message), nil
}

func readFileHandler(_ context.Context, args map[string]any) (*domain.ToolResult, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return domain.ErrorResult("Path is required"), nil
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Error reading file: %s", err)), nil
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return domain.ErrorResult(fmt.Sprintf("File not found: %s", path)), nil
	}
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Error reading file: %s", err)), nil
	}
	if info.IsDir() {
		return domain.ErrorResult(fmt.Sprintf("Not a file: %s", path)), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsPermission(err) {
			return domain.ErrorResult(fmt.Sprintf("Permission denied: %s", path)), nil
		}
		return domain.ErrorResult(fmt.Sprintf("Error reading file: %s", err)), nil
	}
	if !utf8.Valid(data) {
		return domain.ErrorResult(fmt.Sprintf("Cannot decode file as text: %s", path)), nil
	}
	return domain.TextResult(string(data)), nil
}

func writeFileHandler(_ context.Context, args map[string]any) (*domain.ToolResult, error) {
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	createDirs, _ := args["create_dirs"].(bool)

	if path == "" {
		return domain.ErrorResult("Path is required"), nil
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Error writing file: %s", err)), nil
	}

	parent := filepath.Dir(resolved)
	if createDirs {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return domain.ErrorResult(fmt.Sprintf("Error writing file: %s", err)), nil
		}
	} else if _, err := os.Stat(parent); os.IsNotExist(err) {
		return domain.ErrorResult(fmt.Sprintf("Directory does not exist: %s", parent)), nil
	}

	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		if os.IsPermission(err) {
			return domain.ErrorResult(fmt.Sprintf("Permission denied: %s", path)), nil
		}
		return domain.ErrorResult(fmt.Sprintf("Error writing file: %s", err)), nil
	}
	return domain.TextResult(fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), path)), nil
}

func listDirectoryHandler(_ context.Context, args map[string]any) (*domain.ToolResult, error) {
	path, _ := args["path"].(string)
	if path == "" {
		path = "."
	}
	recursive, _ := args["recursive"].(bool)

	resolved, err := resolvePath(path)
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Error listing directory: %s", err)), nil
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return domain.ErrorResult(fmt.Sprintf("Directory not found: %s", path)), nil
	}
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Error listing directory: %s", err)), nil
	}
	if !info.IsDir() {
		return domain.ErrorResult(fmt.Sprintf("Not a directory: %s", path)), nil
	}

	entries := make([]map[string]string, 0)
	if recursive {
		err = filepath.WalkDir(resolved, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if p == resolved {
				return nil
			}
			rel, relErr := filepath.Rel(resolved, p)
			if relErr != nil {
				return relErr
			}
			entries = append(entries, map[string]string{
				"path": rel,
				"type": entryType(d.IsDir()),
			})
			return nil
		})
	} else {
		var dirEntries []fs.DirEntry
		dirEntries, err = os.ReadDir(resolved)
		for _, entry := range dirEntries {
			entries = append(entries, map[string]string{
				"name": entry.Name(),
				"type": entryType(entry.IsDir()),
			})
		}
	}
	if err != nil {
		if os.IsPermission(err) {
			return domain.ErrorResult(fmt.Sprintf("Permission denied: %s", path)), nil
		}
		return domain.ErrorResult(fmt.Sprintf("Error listing directory: %s", err)), nil
	}
	return domain.JSONResult(entries), nil
}

func entryType(isDir bool) string {
	if isDir {
		return "directory"
	}
	return "file"
}

func searchFilesHandler(_ context.Context, args map[string]any) (*domain.ToolResult, error) {
	path, _ := args["path"].(string)
	if path == "" {
		path = "."
	}
	pattern, _ := args["pattern"].(string)
	if pattern == "" {
		pattern = "*"
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Error searching files: %s", err)), nil
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		return domain.ErrorResult(fmt.Sprintf("Directory not found: %s", path)), nil
	}

	matcher, err := glob.Compile(pattern, '/')
	if err != nil {
		return domain.ErrorResult(fmt.Sprintf("Invalid pattern: %s", err)), nil
	}

	matches := make([]string, 0)
	walkErr := filepath.WalkDir(resolved, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // skip unreadable entries
		}
		if p == resolved {
			return nil
		}
		rel, relErr := filepath.Rel(resolved, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matcher.Match(rel) || matcher.Match(filepath.Base(rel)) {
			matches = append(matches, rel)
		}
		return nil
	})
	if walkErr != nil {
		return domain.ErrorResult(fmt.Sprintf("Error searching files: %s", walkErr)), nil
	}

	return domain.JSONResult(map[string]any{
		"matches": matches,
		"count":   len(matches),
	}), nil
}

func executeCommandHandler(ctx context.Context, args map[string]any) (*domain.ToolResult, error) {
	command, _ := args["command"].(string)
	if command == "" {
		return domain.ErrorResult("Command is required"), nil
	}
	workingDir, _ := args["working_dir"].(string)

	timeout := 30 * time.Second
	if v, ok := args["timeout"].(float64); ok && v > 0 {
		timeout = time.Duration(v * float64(time.Second))
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	if workingDir != "" {
		resolved, err := resolvePath(workingDir)
		if err != nil {
			return domain.ErrorResult(fmt.Sprintf("Error executing command: %s", err)), nil
		}
		cmd.Dir = resolved
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if execCtx.Err() == context.DeadlineExceeded {
		return domain.ErrorResult(fmt.Sprintf("Command timed out after %s", timeout)), nil
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return domain.ErrorResult(fmt.Sprintf("Error executing command: %s", err)), nil
		}
	}

	result := map[string]any{
		"exit_code": exitCode,
		"stdout":    stdout.String(),
		"stderr":    stderr.String(),
	}
	if exitCode != 0 {
		return domain.JSONErrorResult(result), nil
	}
	return domain.JSONResult(result), nil
}

func systemInfoHandler(_ context.Context, _ map[string]any) (*domain.ToolResult, error) {
	hostname, _ := os.Hostname()
	cwd, _ := os.Getwd()

	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	return domain.JSONResult(map[string]any{
		"platform":     runtime.GOOS,
		"architecture": runtime.GOARCH,
		"go_version":   runtime.Version(),
		"num_cpu":      runtime.NumCPU(),
		"hostname":     hostname,
		"cwd":          cwd,
		"user":         username,
	}), nil
}

// claudeConversationHandler builds the handler for the claude_conversation
// tool, bound to an upstream chat service.
func claudeConversationHandler(chat domain.ChatService) domain.ToolHandlerFunc {
	return func(ctx context.Context, args map[string]any) (*domain.ToolResult, error) {
		message, _ := args["message"].(string)
		if message == "" {
			return domain.ErrorResult("Message is required"), nil
		}

		modelName, _ := args["model"].(string)
		model, err := domain.ModelFromString(modelName)
		if err != nil {
			model = domain.DefaultModel()
		}

		maxTokens := 4096
		if v, ok := args["max_tokens"].(float64); ok && v > 0 {
			maxTokens = int(v)
		}

		var systemPrompt domain.SystemPrompt
		if raw, _ := args["system_prompt"].(string); raw != "" {
			systemPrompt, err = domain.NewSystemPrompt(raw)
			if err != nil {
				return domain.ErrorResult(fmt.Sprintf("Invalid system prompt: %s", err)), nil
			}
		}

		reply, err := chat.CreateMessage(ctx, domain.ChatRequest{
			Messages:     []*domain.Message{domain.NewUserMessage(message)},
			Model:        model,
			SystemPrompt: systemPrompt,
			MaxTokens:    maxTokens,
		})
		if err != nil {
			return domain.ErrorResult(fmt.Sprintf("Error calling Claude API: %s", err)), nil
		}
		return domain.TextResult(reply.Text()), nil
	}
}

// resolvePath expands a leading ~ and makes the path absolute.
func resolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

type toolDef struct {
	name        string
	description string
	category    string
	tags        []string
	schema      domain.ToolInputSchema
	handler     domain.ToolHandler
	opts        []domain.ToolOption
}

func toolDefs() []toolDef {
	return []toolDef{
		{
			name:        "echo",
			description: "Echo back a message - useful for testing",
			category:    "utility",
			tags:        []string{"test", "debug"},
			schema: domain.NewToolInputSchema(map[string]map[string]any{
				"message": {"type": "string", "description": "The message to echo back"},
			}, []string{"message"}),
			handler: domain.ToolHandlerFunc(echoHandler),
		},
		{
			name:        "read_file",
			description: "Read the contents of a file",
			category:    "file",
			tags:        []string{"file", "read"},
			schema: domain.NewToolInputSchema(map[string]map[string]any{
				"path":     {"type": "string", "description": "Path to the file to read"},
				"encoding": {"type": "string", "description": "File encoding (default: utf-8)", "default": "utf-8"},
			}, []string{"path"}),
			handler: domain.ToolHandlerFunc(readFileHandler),
		},
		{
			name:        "write_file",
			description: "Write content to a file",
			category:    "file",
			tags:        []string{"file", "write"},
			schema: domain.NewToolInputSchema(map[string]map[string]any{
				"path":        {"type": "string", "description": "Path to the file to write"},
				"content":     {"type": "string", "description": "Content to write to the file"},
				"create_dirs": {"type": "boolean", "description": "Create parent directories if they don't exist", "default": false},
			}, []string{"path", "content"}),
			handler: domain.ToolHandlerFunc(writeFileHandler),
		},
		{
			name:        "list_directory",
			description: "List files and directories in a path",
			category:    "file",
			tags:        []string{"file", "directory", "list"},
			schema: domain.NewToolInputSchema(map[string]map[string]any{
				"path":      {"type": "string", "description": "Path to the directory to list", "default": "."},
				"recursive": {"type": "boolean", "description": "Recursively list subdirectories", "default": false},
			}, []string{"path"}),
			handler: domain.ToolHandlerFunc(listDirectoryHandler),
		},
		{
			name:        "search_files",
			description: "Search for files matching a pattern",
			category:    "file",
			tags:        []string{"file", "search", "glob"},
			schema: domain.NewToolInputSchema(map[string]map[string]any{
				"path":    {"type": "string", "description": "Base path to search in", "default": "."},
				"pattern": {"type": "string", "description": "Glob pattern to match (e.g., '*.go', '**/*.txt')"},
			}, []string{"path", "pattern"}),
			handler: domain.ToolHandlerFunc(searchFilesHandler),
		},
		{
			name:        "execute_command",
			description: "Execute a shell command",
			category:    "system",
			tags:        []string{"shell", "command", "execute"},
			schema: domain.NewToolInputSchema(map[string]map[string]any{
				"command":     {"type": "string", "description": "The shell command to execute"},
				"working_dir": {"type": "string", "description": "Working directory for the command"},
				"timeout":     {"type": "integer", "description": "Timeout in seconds (default: 30)", "default": 30},
			}, []string{"command"}),
			handler: domain.ToolHandlerFunc(executeCommandHandler),
		},
		{
			name:        "system_info",
			description: "Get system information",
			category:    "system",
			tags:        []string{"system", "info"},
			schema:      domain.NewToolInputSchema(map[string]map[string]any{}, nil),
			handler:     domain.ToolHandlerFunc(systemInfoHandler),
		},
	}
}

// claudeToolDef is the conversation tool; its handler calls upstream, so
// it gets a longer timeout than the default.
func claudeToolDef(chat domain.ChatService) toolDef {
	return toolDef{
		name:        "claude_conversation",
		description: "Have a conversation with Claude AI",
		category:    "ai",
		tags:        []string{"ai", "claude", "conversation"},
		schema: domain.NewToolInputSchema(map[string]map[string]any{
			"message":       {"type": "string", "description": "The message to send to Claude"},
			"system_prompt": {"type": "string", "description": "Optional system prompt"},
			"model":         {"type": "string", "description": "Claude model to use", "default": domain.DefaultModel().String()},
			"max_tokens":    {"type": "integer", "description": "Maximum tokens in response", "default": 4096},
		}, []string{"message"}),
		handler: claudeConversationHandler(chat),
		opts:    []domain.ToolOption{domain.WithToolTimeout(120 * time.Second)},
	}
}
