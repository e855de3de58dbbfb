package telemetry

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopSink(t *testing.T) {
	var sink Sink = NopSink{}

	sink.RecordToolCall("echo", time.Millisecond, true, "")
	sink.RecordResourceRead("config://server", time.Millisecond, false)
	sink.RecordPromptGet("code_review", true)
	sink.RecordSessionEvent("session.created")
	sink.RecordMessage("ping")
}

func TestPrometheusSink_RecordToolCall(t *testing.T) {
	sink := NewPrometheusSink("test")

	sink.RecordToolCall("echo", 5*time.Millisecond, true, "")
	sink.RecordToolCall("echo", 5*time.Millisecond, true, "")
	sink.RecordToolCall("echo", 5*time.Millisecond, false, "timeout")

	assert.Equal(t, float64(2), testutil.ToFloat64(sink.toolCalls.WithLabelValues("echo", "ok", "")))
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.toolCalls.WithLabelValues("echo", "error", "timeout")))
}

func TestPrometheusSink_OtherCounters(t *testing.T) {
	sink := NewPrometheusSink("test")

	sink.RecordResourceRead("config://server", time.Millisecond, true)
	sink.RecordPromptGet("debug_help", false)
	sink.RecordSessionEvent("session.initialized")
	sink.RecordMessage("tools/list")
	sink.RecordMessage("tools/list")

	assert.Equal(t, float64(1), testutil.ToFloat64(sink.resourceReads.WithLabelValues("config://server", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.promptGets.WithLabelValues("debug_help", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.sessionEvents.WithLabelValues("session.initialized")))
	assert.Equal(t, float64(2), testutil.ToFloat64(sink.messages.WithLabelValues("tools/list")))
}

func TestPrometheusSink_Handler(t *testing.T) {
	sink := NewPrometheusSink("test")
	sink.RecordMessage("initialize")

	rec := httptest.NewRecorder()
	sink.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "mcp_messages_total")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "ok", statusLabel(true))
	assert.Equal(t, "error", statusLabel(false))
}
