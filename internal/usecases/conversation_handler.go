package usecases

import (
	"context"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/logging"
)

// ConversationHandler drives multi-turn conversations with the upstream
// model on behalf of a session.
type ConversationHandler struct {
	repo   domain.ConversationRepository
	chat   domain.ChatService
	logger *logging.Logger
}

// NewConversationHandler creates a handler. chat may be nil, in which
// case SendMessage fails with a validation error.
func NewConversationHandler(repo domain.ConversationRepository, chat domain.ChatService, logger *logging.Logger) *ConversationHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ConversationHandler{repo: repo, chat: chat, logger: logger}
}

// Create starts a new conversation attached to a session.
func (h *ConversationHandler) Create(ctx context.Context, sessionID domain.SessionID, model domain.Model, systemPrompt domain.SystemPrompt, settings domain.ConversationSettings) (*domain.Conversation, error) {
	conversation := domain.NewConversation(model, systemPrompt, settings)
	if err := h.repo.Save(ctx, conversation); err != nil {
		return nil, err
	}
	if err := h.repo.Attach(ctx, sessionID, conversation.ID); err != nil {
		return nil, err
	}
	conversation.Events()
	h.logger.Info("conversation created", logging.Fields{
		"conversation_id": conversation.ID.String(),
		"model":           model.String(),
	})
	return conversation, nil
}

// SendMessage appends a user message to the conversation, asks the
// upstream model for a reply, appends that reply and returns it.
func (h *ConversationHandler) SendMessage(ctx context.Context, conversationID domain.ConversationID, text string) (*domain.Message, error) {
	if h.chat == nil {
		return nil, &domain.ValidationError{Message: "no chat service configured"}
	}

	conversation, err := h.repo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	conversation.AddMessage(domain.NewUserMessage(text))

	settings := conversation.Settings()
	req := domain.ChatRequest{
		Messages:     conversation.Messages(),
		Model:        conversation.Model,
		SystemPrompt: conversation.SystemPrompt,
		MaxTokens:    settings.MaxTokens,
		Temperature:  settings.Temperature,
	}

	reply, err := h.chat.CreateMessage(ctx, req)
	if err != nil {
		h.logger.Error("upstream message failed", logging.Fields{
			"conversation_id": conversationID.String(),
			"error":           err.Error(),
		})
		return nil, err
	}

	conversation.AddMessage(reply)
	if err := h.repo.Save(ctx, conversation); err != nil {
		return nil, err
	}
	conversation.Events()
	return reply, nil
}

// Get retrieves a conversation by ID.
func (h *ConversationHandler) Get(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	return h.repo.Get(ctx, id)
}

// ListBySession lists the conversations attached to a session.
func (h *ConversationHandler) ListBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.Conversation, error) {
	return h.repo.ListBySession(ctx, sessionID)
}
