package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	return client
}

func chatRequest(text string) domain.ChatRequest {
	return domain.ChatRequest{
		Messages: []*domain.Message{domain.NewUserMessage(text)},
		Model:    domain.DefaultModel(),
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Options{}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestCreateMessage(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody apiRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_01",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "hello back"},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 12, "output_tokens": 7},
		})
	})

	msg, err := client.CreateMessage(context.Background(), chatRequest("hello"))
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "sk-test", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, domain.DefaultModel().String(), gotBody.Model)
	assert.Equal(t, 4096, gotBody.MaxTokens)

	assert.Equal(t, domain.RoleAssistant, msg.Role)
	assert.Equal(t, "hello back", msg.Text())
	assert.Equal(t, 12, msg.InputTokens)
	assert.Equal(t, 7, msg.OutputTokens)
}

func TestCreateMessage_ToolUse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_02",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "tool_use", "id": "toolu_01", "name": "echo", "input": map[string]any{"message": "hi"}},
			},
			"stop_reason": "tool_use",
			"usage":       map[string]int{"input_tokens": 3, "output_tokens": 2},
		})
	})

	msg, err := client.CreateMessage(context.Background(), chatRequest("use the tool"))
	require.NoError(t, err)

	uses := msg.ToolUses()
	require.Len(t, uses, 1)
	assert.Equal(t, "echo", uses[0].Name)
	assert.Equal(t, "hi", uses[0].Input["message"])
}

func TestCreateMessage_RetryOn429(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "msg_03",
			"role":    "assistant",
			"content": []map[string]any{{"type": "text", "text": "ok"}},
			"usage":   map[string]int{"input_tokens": 1, "output_tokens": 1},
		})
	})

	msg, err := client.CreateMessage(context.Background(), chatRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Text())
	assert.Equal(t, int32(2), calls.Load())
}

func TestCreateMessage_NoRetryOn400(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"bad model"}}`)
	})

	_, err := client.CreateMessage(context.Background(), chatRequest("hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateMessage_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "sk-test", BaseURL: srv.URL, MaxRetries: 2}, nil)
	require.NoError(t, err)

	_, err = client.CreateMessage(context.Background(), chatRequest("hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}

func TestStreamMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\n")
		fmt.Fprint(w, `data: {"type":"message_start","message":{"usage":{"input_tokens":9,"output_tokens":0}}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"hel"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"lo"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"message_delta","usage":{"output_tokens":4}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"message_stop"}`+"\n\n")
	})

	var chunks []string
	msg, err := client.StreamMessage(context.Background(), chatRequest("hi"), func(event domain.StreamEvent) error {
		if text, ok := event.Data["text"].(string); ok {
			chunks = append(chunks, text)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"hel", "lo"}, chunks)
	assert.Equal(t, "hello", msg.Text())
	assert.Equal(t, 9, msg.InputTokens)
	assert.Equal(t, 4, msg.OutputTokens)
}

func TestStreamMessage_CallbackError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"x"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"message_stop"}`+"\n\n")
	})

	_, err := client.StreamMessage(context.Background(), chatRequest("hi"), func(domain.StreamEvent) error {
		return fmt.Errorf("consumer gave up")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumer gave up")
}

func TestCountTokens(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages/count_tokens", r.URL.Path)
		fmt.Fprint(w, `{"input_tokens":42}`)
	})

	count, err := client.CountTokens(context.Background(), chatRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
