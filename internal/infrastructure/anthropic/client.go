// Package anthropic is an HTTP client for the Anthropic Messages API.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/logging"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	initialBackoff = 1 * time.Second
	maxBackoff     = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the Anthropic Messages API. It implements
// domain.ChatService.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a client. APIKey is required.
func NewClient(opts Options, logger *logging.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, &domain.ValidationError{Message: "anthropic api key is required"}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type apiRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Messages    []map[string]any `json:"messages"`
	System      string           `json:"system,omitempty"`
	Temperature float64          `json:"temperature"`
	Tools       []map[string]any `json:"tools,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

type apiContentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	StopReason string            `json:"stop_reason"`
	Usage      apiUsage          `json:"usage"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func buildRequest(req domain.ChatRequest) apiRequest {
	model := req.Model.String()
	if model == "" {
		model = domain.DefaultModel().String()
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 1.0
	}
	messages := make([]map[string]any, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, m.ToAPIFormat())
	}
	var tools []map[string]any
	for _, t := range req.Tools {
		tools = append(tools, map[string]any{
			"name":         t.Name.String(),
			"description":  t.Description.String(),
			"input_schema": t.InputSchema.ToWire(),
		})
	}
	return apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Messages:    messages,
		System:      req.SystemPrompt.String(),
		Temperature: temperature,
		Tools:       tools,
	}
}

func messageFromResponse(resp *apiResponse) *domain.Message {
	blocks := make([]domain.ContentBlock, 0, len(resp.Content))
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			blocks = append(blocks, domain.TextContent{Text: b.Text})
		case "tool_use":
			blocks = append(blocks, domain.ToolUseContent{ID: b.ID, Name: b.Name, Input: b.Input})
		}
	}
	msg := domain.NewMessage(domain.RoleAssistant, blocks...)
	msg.InputTokens = resp.Usage.InputTokens
	msg.OutputTokens = resp.Usage.OutputTokens
	return msg
}

// retryable reports whether an HTTP status warrants another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// doWithRetry posts body to path, retrying transient failures with
// exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, path string, body []byte) ([]byte, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying anthropic request", logging.Fields{
				"attempt": attempt,
				"backoff": backoff.String(),
			})
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return data, nil
		}

		lastErr = apiErrorFromBody(resp.StatusCode, data)
		if !retryable(resp.StatusCode) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("anthropic request failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
}

func apiErrorFromBody(status int, data []byte) error {
	var e apiError
	if err := json.Unmarshal(data, &e); err == nil && e.Error.Message != "" {
		return fmt.Errorf("anthropic api error (%d %s): %s", status, e.Error.Type, e.Error.Message)
	}
	return fmt.Errorf("anthropic api error: status %d", status)
}

// CreateMessage implements domain.ChatService.
func (c *Client) CreateMessage(ctx context.Context, req domain.ChatRequest) (*domain.Message, error) {
	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, err
	}
	data, err := c.doWithRetry(ctx, "/v1/messages", body)
	if err != nil {
		return nil, err
	}
	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	return messageFromResponse(&resp), nil
}

// StreamMessage implements domain.ChatService. It posts with stream
// enabled and forwards server-sent events to fn as they arrive; the
// assembled assistant message is returned once the stream ends.
func (c *Client) StreamMessage(ctx context.Context, req domain.ChatRequest, fn domain.StreamFunc) (*domain.Message, error) {
	apiReq := buildRequest(req)
	apiReq.Stream = true
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, apiErrorFromBody(resp.StatusCode, data)
	}

	return c.consumeStream(ctx, resp.Body, fn)
}

func (c *Client) consumeStream(ctx context.Context, body io.Reader, fn domain.StreamFunc) (*domain.Message, error) {
	var (
		text         strings.Builder
		inputTokens  int
		outputTokens int
	)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		var event struct {
			Type  string `json:"type"`
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
			Message struct {
				Usage apiUsage `json:"usage"`
			} `json:"message"`
			Usage apiUsage `json:"usage"`
		}
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}

		switch event.Type {
		case "message_start":
			inputTokens = event.Message.Usage.InputTokens
		case "content_block_delta":
			if event.Delta.Type == "text_delta" {
				text.WriteString(event.Delta.Text)
				if fn != nil {
					streamEvent := domain.StreamEvent{
						Type: event.Type,
						Data: map[string]any{"text": event.Delta.Text},
					}
					if err := fn(streamEvent); err != nil {
						return nil, err
					}
				}
			}
		case "message_delta":
			outputTokens = event.Usage.OutputTokens
		case "message_stop":
			msg := domain.NewAssistantMessage(text.String())
			msg.InputTokens = inputTokens
			msg.OutputTokens = outputTokens
			return msg, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Stream ended without a message_stop event; return what we have.
	msg := domain.NewAssistantMessage(text.String())
	msg.InputTokens = inputTokens
	msg.OutputTokens = outputTokens
	return msg, nil
}

// CountTokens implements domain.ChatService via the count_tokens
// endpoint.
func (c *Client) CountTokens(ctx context.Context, req domain.ChatRequest) (int, error) {
	apiReq := buildRequest(req)
	payload := map[string]any{
		"model":    apiReq.Model,
		"messages": apiReq.Messages,
	}
	if apiReq.System != "" {
		payload["system"] = apiReq.System
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	data, err := c.doWithRetry(ctx, "/v1/messages/count_tokens", body)
	if err != nil {
		return 0, err
	}
	var resp struct {
		InputTokens int `json:"input_tokens"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("decode count_tokens response: %w", err)
	}
	return resp.InputTokens, nil
}
