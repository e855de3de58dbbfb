// Package persistence provides in-memory repository implementations backed
// by a map and a coarse lock per repository.
package persistence

import (
	"context"
	"sync"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
)

// SessionRepository is an in-memory domain.SessionRepository.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
}

// NewSessionRepository creates an empty session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[domain.SessionID]*domain.Session)}
}

// Save stores or replaces a session.
func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(_ context.Context, id domain.SessionID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, &domain.SessionNotFoundError{ID: id.String()}
	}
	return session, nil
}

// ListAll returns all stored sessions.
func (r *SessionRepository) ListAll(_ context.Context) ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*domain.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Delete removes a session, reporting whether it existed.
func (r *SessionRepository) Delete(_ context.Context, id domain.SessionID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

// ConversationRepository is an in-memory domain.ConversationRepository.
// Conversations are attached to sessions via Attach.
type ConversationRepository struct {
	mu            sync.RWMutex
	conversations map[domain.ConversationID]*domain.Conversation
	bySession     map[domain.SessionID][]domain.ConversationID
}

// NewConversationRepository creates an empty conversation repository.
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		conversations: make(map[domain.ConversationID]*domain.Conversation),
		bySession:     make(map[domain.SessionID][]domain.ConversationID),
	}
}

// Save stores or replaces a conversation.
func (r *ConversationRepository) Save(_ context.Context, conversation *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conversation.ID] = conversation
	return nil
}

// Attach associates a conversation with a session for ListBySession.
func (r *ConversationRepository) Attach(_ context.Context, sessionID domain.SessionID, conversationID domain.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bySession[sessionID] {
		if existing == conversationID {
			return nil
		}
	}
	r.bySession[sessionID] = append(r.bySession[sessionID], conversationID)
	return nil
}

// Get retrieves a conversation by ID.
func (r *ConversationRepository) Get(_ context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, &domain.ConversationNotFoundError{ID: id.String()}
	}
	return conversation, nil
}

// ListAll returns all stored conversations.
func (r *ConversationRepository) ListAll(_ context.Context) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversations := make([]*domain.Conversation, 0, len(r.conversations))
	for _, conversation := range r.conversations {
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}

// ListBySession returns the conversations attached to a session, in
// attachment order.
func (r *ConversationRepository) ListBySession(_ context.Context, sessionID domain.SessionID) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.bySession[sessionID]
	conversations := make([]*domain.Conversation, 0, len(ids))
	for _, id := range ids {
		if conversation, ok := r.conversations[id]; ok {
			conversations = append(conversations, conversation)
		}
	}
	return conversations, nil
}

// Delete removes a conversation, reporting whether it existed.
func (r *ConversationRepository) Delete(_ context.Context, id domain.ConversationID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[id]; !ok {
		return false, nil
	}
	delete(r.conversations, id)
	return true, nil
}

// ToolRepository is an in-memory domain.ToolRepository.
type ToolRepository struct {
	mu    sync.RWMutex
	tools map[string]*domain.Tool
}

// NewToolRepository creates an empty tool repository.
func NewToolRepository() *ToolRepository {
	return &ToolRepository{tools: make(map[string]*domain.Tool)}
}

// Save stores or replaces a tool.
func (r *ToolRepository) Save(_ context.Context, tool *domain.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name.String()] = tool
	return nil
}

// Get retrieves a tool by name.
func (r *ToolRepository) Get(_ context.Context, name string) (*domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, &domain.ToolNotFoundError{Name: name}
	}
	return tool, nil
}

// ListAll returns all stored tools.
func (r *ToolRepository) ListAll(_ context.Context) ([]*domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]*domain.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools, nil
}

// ListEnabled returns only enabled tools.
func (r *ToolRepository) ListEnabled(_ context.Context) ([]*domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tools []*domain.Tool
	for _, tool := range r.tools {
		if tool.Enabled {
			tools = append(tools, tool)
		}
	}
	return tools, nil
}

// ListByCategory returns the tools in a category.
func (r *ToolRepository) ListByCategory(_ context.Context, category string) ([]*domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tools []*domain.Tool
	for _, tool := range r.tools {
		if tool.Category == category {
			tools = append(tools, tool)
		}
	}
	return tools, nil
}

// Delete removes a tool, reporting whether it existed.
func (r *ToolRepository) Delete(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return false, nil
	}
	delete(r.tools, name)
	return true, nil
}

// ResourceRepository is an in-memory domain.ResourceRepository.
type ResourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*domain.Resource
}

// NewResourceRepository creates an empty resource repository.
func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{resources: make(map[string]*domain.Resource)}
}

// Save stores or replaces a resource.
func (r *ResourceRepository) Save(_ context.Context, resource *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[resource.URI.String()] = resource
	return nil
}

// Get retrieves a resource by URI.
func (r *ResourceRepository) Get(_ context.Context, uri string) (*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resource, ok := r.resources[uri]
	if !ok {
		return nil, &domain.ResourceNotFoundError{URI: uri}
	}
	return resource, nil
}

// ListAll returns all stored resources.
func (r *ResourceRepository) ListAll(_ context.Context) ([]*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resources := make([]*domain.Resource, 0, len(r.resources))
	for _, resource := range r.resources {
		resources = append(resources, resource)
	}
	return resources, nil
}

// ListTemplates returns only template resources.
func (r *ResourceRepository) ListTemplates(_ context.Context) ([]*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var resources []*domain.Resource
	for _, resource := range r.resources {
		if resource.IsTemplate {
			resources = append(resources, resource)
		}
	}
	return resources, nil
}

// Delete removes a resource, reporting whether it existed.
func (r *ResourceRepository) Delete(_ context.Context, uri string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[uri]; !ok {
		return false, nil
	}
	delete(r.resources, uri)
	return true, nil
}

// PromptRepository is an in-memory domain.PromptRepository.
type PromptRepository struct {
	mu      sync.RWMutex
	prompts map[string]*domain.Prompt
}

// NewPromptRepository creates an empty prompt repository.
func NewPromptRepository() *PromptRepository {
	return &PromptRepository{prompts: make(map[string]*domain.Prompt)}
}

// Save stores or replaces a prompt.
func (r *PromptRepository) Save(_ context.Context, prompt *domain.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[prompt.Name] = prompt
	return nil
}

// Get retrieves a prompt by name.
func (r *PromptRepository) Get(_ context.Context, name string) (*domain.Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prompt, ok := r.prompts[name]
	if !ok {
		return nil, &domain.PromptNotFoundError{Name: name}
	}
	return prompt, nil
}

// ListAll returns all stored prompts.
func (r *PromptRepository) ListAll(_ context.Context) ([]*domain.Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prompts := make([]*domain.Prompt, 0, len(r.prompts))
	for _, prompt := range r.prompts {
		prompts = append(prompts, prompt)
	}
	return prompts, nil
}

// Delete removes a prompt, reporting whether it existed.
func (r *PromptRepository) Delete(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[name]; !ok {
		return false, nil
	}
	delete(r.prompts, name)
	return true, nil
}
