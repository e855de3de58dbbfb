package usecases

import (
	"context"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/logging"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/telemetry"
)

// SessionHandler owns session lifecycle: creation, initialization and
// shutdown, persisted through the session repository.
type SessionHandler struct {
	repo   domain.SessionRepository
	sink   telemetry.Sink
	logger *logging.Logger
}

// NewSessionHandler creates a handler.
func NewSessionHandler(repo domain.SessionRepository, sink telemetry.Sink, logger *logging.Logger) *SessionHandler {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionHandler{repo: repo, sink: sink, logger: logger}
}

// Create makes a new session and persists it.
func (h *SessionHandler) Create(ctx context.Context, serverName, serverVersion string, capabilities domain.SessionCapabilities) (*domain.Session, error) {
	session := domain.NewSession(serverName, serverVersion, capabilities)
	if err := h.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	h.drainEvents(session)
	h.logger.Info("session created", logging.Fields{"session_id": session.ID.String()})
	return session, nil
}

// Initialize transitions the session to ready and returns the
// initialize result for the wire.
func (h *SessionHandler) Initialize(ctx context.Context, session *domain.Session, client domain.ClientInfo, clientCapabilities map[string]any) (*domain.InitializeResult, error) {
	result, err := session.Initialize(client, clientCapabilities)
	if err != nil {
		return nil, err
	}
	if err := h.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	h.drainEvents(session)
	h.logger.Info("session initialized", logging.Fields{
		"session_id":     session.ID.String(),
		"client_name":    client.Name,
		"client_version": client.Version,
	})
	return result, nil
}

// Close shuts the session down. It is safe to call more than once.
func (h *SessionHandler) Close(ctx context.Context, session *domain.Session) error {
	session.Close()
	if err := h.repo.Save(ctx, session); err != nil {
		return err
	}
	h.drainEvents(session)
	h.logger.Info("session closed", logging.Fields{"session_id": session.ID.String()})
	return nil
}

// Get retrieves a session by ID.
func (h *SessionHandler) Get(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return h.repo.Get(ctx, id)
}

// drainEvents forwards queued domain events to the telemetry sink.
func (h *SessionHandler) drainEvents(session *domain.Session) {
	for _, event := range session.Events() {
		h.sink.RecordSessionEvent(event.EventType())
	}
}
