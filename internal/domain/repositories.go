package domain

import "context"

// SessionRepository persists Session aggregates.
type SessionRepository interface {
	// Save stores or replaces a session.
	Save(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id SessionID) (*Session, error)

	// ListAll returns all stored sessions.
	ListAll(ctx context.Context) ([]*Session, error)

	// Delete removes a session, reporting whether it existed.
	Delete(ctx context.Context, id SessionID) (bool, error)
}

// ConversationRepository persists Conversation aggregates.
type ConversationRepository interface {
	// Save stores or replaces a conversation.
	Save(ctx context.Context, conversation *Conversation) error

	// Get retrieves a conversation by ID.
	Get(ctx context.Context, id ConversationID) (*Conversation, error)

	// ListAll returns all stored conversations.
	ListAll(ctx context.Context) ([]*Conversation, error)

	// Attach links a conversation to a session so ListBySession can
	// find it. Attaching an already-attached pair is a no-op.
	Attach(ctx context.Context, sessionID SessionID, conversationID ConversationID) error

	// ListBySession returns the conversations attached to a session.
	ListBySession(ctx context.Context, sessionID SessionID) ([]*Conversation, error)

	// Delete removes a conversation, reporting whether it existed.
	Delete(ctx context.Context, id ConversationID) (bool, error)
}

// ToolRepository persists Tool entities.
type ToolRepository interface {
	// Save stores or replaces a tool.
	Save(ctx context.Context, tool *Tool) error

	// Get retrieves a tool by name.
	Get(ctx context.Context, name string) (*Tool, error)

	// ListAll returns all stored tools.
	ListAll(ctx context.Context) ([]*Tool, error)

	// ListEnabled returns only enabled tools.
	ListEnabled(ctx context.Context) ([]*Tool, error)

	// ListByCategory returns the tools in a category.
	ListByCategory(ctx context.Context, category string) ([]*Tool, error)

	// Delete removes a tool, reporting whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
}

// ResourceRepository persists Resource entities.
type ResourceRepository interface {
	// Save stores or replaces a resource.
	Save(ctx context.Context, resource *Resource) error

	// Get retrieves a resource by URI.
	Get(ctx context.Context, uri string) (*Resource, error)

	// ListAll returns all stored resources.
	ListAll(ctx context.Context) ([]*Resource, error)

	// ListTemplates returns only template resources.
	ListTemplates(ctx context.Context) ([]*Resource, error)

	// Delete removes a resource, reporting whether it existed.
	Delete(ctx context.Context, uri string) (bool, error)
}

// PromptRepository persists Prompt entities.
type PromptRepository interface {
	// Save stores or replaces a prompt.
	Save(ctx context.Context, prompt *Prompt) error

	// Get retrieves a prompt by name.
	Get(ctx context.Context, name string) (*Prompt, error)

	// ListAll returns all stored prompts.
	ListAll(ctx context.Context) ([]*Prompt, error)

	// Delete removes a prompt, reporting whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
}
