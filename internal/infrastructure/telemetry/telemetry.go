// Package telemetry records operational metrics for protocol activity.
//
// A Sink is injected into the components that produce metrics; nothing
// in this package holds global state.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink receives metric events from the server.
type Sink interface {
	// RecordToolCall records one tool invocation. errorKind is empty on
	// success; otherwise one of not_found, disabled, timeout,
	// execution_error.
	RecordToolCall(name string, duration time.Duration, success bool, errorKind string)
	// RecordResourceRead records one resource read.
	RecordResourceRead(uri string, duration time.Duration, success bool)
	// RecordPromptGet records one prompt retrieval.
	RecordPromptGet(name string, success bool)
	// RecordSessionEvent records a session lifecycle event by type.
	RecordSessionEvent(eventType string)
	// RecordMessage records one inbound protocol message by method.
	RecordMessage(method string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordToolCall(string, time.Duration, bool, string) {}
func (NopSink) RecordResourceRead(string, time.Duration, bool)     {}
func (NopSink) RecordPromptGet(string, bool)                       {}
func (NopSink) RecordSessionEvent(string)                          {}
func (NopSink) RecordMessage(string)                               {}

// PrometheusSink implements Sink on a private prometheus registry.
type PrometheusSink struct {
	registry *prometheus.Registry

	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	resourceReads *prometheus.CounterVec
	promptGets    *prometheus.CounterVec
	sessionEvents *prometheus.CounterVec
	messages      *prometheus.CounterVec
}

// NewPrometheusSink creates a sink with all collectors registered on a
// fresh registry.
func NewPrometheusSink(serviceName string) *PrometheusSink {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": serviceName}

	s := &PrometheusSink{
		registry: registry,
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mcp_tool_calls_total",
			Help:        "Tool invocations by name and outcome.",
			ConstLabels: labels,
		}, []string{"tool", "status", "error_kind"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "mcp_tool_duration_seconds",
			Help:        "Tool invocation latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"tool"}),
		resourceReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mcp_resource_reads_total",
			Help:        "Resource reads by URI and outcome.",
			ConstLabels: labels,
		}, []string{"uri", "status"}),
		promptGets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mcp_prompt_gets_total",
			Help:        "Prompt retrievals by name and outcome.",
			ConstLabels: labels,
		}, []string{"prompt", "status"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mcp_session_events_total",
			Help:        "Session lifecycle events by type.",
			ConstLabels: labels,
		}, []string{"event"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mcp_messages_total",
			Help:        "Inbound protocol messages by method.",
			ConstLabels: labels,
		}, []string{"method"}),
	}

	registry.MustRegister(
		s.toolCalls,
		s.toolDuration,
		s.resourceReads,
		s.promptGets,
		s.sessionEvents,
		s.messages,
	)
	return s
}

func statusLabel(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

// RecordToolCall implements Sink.
func (s *PrometheusSink) RecordToolCall(name string, duration time.Duration, success bool, errorKind string) {
	s.toolCalls.WithLabelValues(name, statusLabel(success), errorKind).Inc()
	s.toolDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordResourceRead implements Sink.
func (s *PrometheusSink) RecordResourceRead(uri string, duration time.Duration, success bool) {
	s.resourceReads.WithLabelValues(uri, statusLabel(success)).Inc()
}

// RecordPromptGet implements Sink.
func (s *PrometheusSink) RecordPromptGet(name string, success bool) {
	s.promptGets.WithLabelValues(name, statusLabel(success)).Inc()
}

// RecordSessionEvent implements Sink.
func (s *PrometheusSink) RecordSessionEvent(eventType string) {
	s.sessionEvents.WithLabelValues(eventType).Inc()
}

// RecordMessage implements Sink.
func (s *PrometheusSink) RecordMessage(method string) {
	s.messages.WithLabelValues(method).Inc()
}

// Handler returns an http.Handler exposing the sink's registry in
// Prometheus text format.
func (s *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (s *PrometheusSink) Registry() *prometheus.Registry {
	return s.registry
}
