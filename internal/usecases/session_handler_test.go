package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/persistence"
)

// eventSink counts session events by type.
type eventSink struct {
	mu     sync.Mutex
	events map[string]int
}

func newEventSink() *eventSink {
	return &eventSink{events: map[string]int{}}
}

func (s *eventSink) RecordSessionEvent(eventType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[eventType]++
}

func (s *eventSink) count(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[eventType]
}

func (s *eventSink) RecordToolCall(string, time.Duration, bool, string) {}
func (s *eventSink) RecordResourceRead(string, time.Duration, bool)     {}
func (s *eventSink) RecordPromptGet(string, bool)                       {}
func (s *eventSink) RecordMessage(string)                               {}

func TestSessionHandler_Lifecycle(t *testing.T) {
	sink := newEventSink()
	handler := NewSessionHandler(persistence.NewSessionRepository(), sink, nil)
	ctx := context.Background()

	session, err := handler.Create(ctx, "srv", "1.0", domain.DefaultSessionCapabilities())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCreated, session.State())
	assert.Equal(t, 1, sink.count("SessionCreated"))

	stored, err := handler.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Same(t, session, stored)

	result, err := handler.Initialize(ctx, session, domain.ClientInfo{Name: "client", Version: "0.1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.LatestProtocolVersion, result.ProtocolVersion)
	assert.True(t, session.IsReady())
	assert.Equal(t, 1, sink.count("SessionInitialized"))

	require.NoError(t, handler.Close(ctx, session))
	assert.True(t, session.IsClosed())
	assert.Equal(t, 1, sink.count("SessionClosed"))

	// Close is idempotent and emits no second event.
	require.NoError(t, handler.Close(ctx, session))
	assert.Equal(t, 1, sink.count("SessionClosed"))
}

func TestSessionHandler_InitializeTwice(t *testing.T) {
	handler := NewSessionHandler(persistence.NewSessionRepository(), nil, nil)
	ctx := context.Background()

	session, err := handler.Create(ctx, "srv", "1.0", domain.DefaultSessionCapabilities())
	require.NoError(t, err)

	_, err = handler.Initialize(ctx, session, domain.ClientInfo{Name: "client"}, nil)
	require.NoError(t, err)

	_, err = handler.Initialize(ctx, session, domain.ClientInfo{Name: "again"}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
