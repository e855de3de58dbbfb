package domain

import (
	"sync"
	"time"
)

// SessionState is a session lifecycle state.
type SessionState string

// Session lifecycle states.
const (
	SessionCreated      SessionState = "created"
	SessionInitializing SessionState = "initializing"
	SessionReady        SessionState = "ready"
	SessionClosing      SessionState = "closing"
	SessionClosed       SessionState = "closed"
)

// ClientInfo identifies the connected client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo identifies this server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SessionCapabilities is the set of capabilities a session advertises.
type SessionCapabilities struct {
	Tools        bool
	Resources    bool
	Prompts      bool
	Logging      bool
	Sampling     bool
	Experimental map[string]any
}

// DefaultSessionCapabilities enables tools, resources, prompts and logging.
func DefaultSessionCapabilities() SessionCapabilities {
	return SessionCapabilities{
		Tools:     true,
		Resources: true,
		Prompts:   true,
		Logging:   true,
	}
}

// ToWire converts the capabilities to the initialize-response shape.
func (c SessionCapabilities) ToWire() map[string]any {
	caps := map[string]any{}
	if c.Tools {
		caps["tools"] = map[string]any{}
	}
	if c.Resources {
		caps["resources"] = map[string]any{"subscribe": true, "listChanged": true}
	}
	if c.Prompts {
		caps["prompts"] = map[string]any{"listChanged": true}
	}
	if c.Logging {
		caps["logging"] = map[string]any{}
	}
	if c.Sampling {
		caps["sampling"] = map[string]any{}
	}
	if len(c.Experimental) > 0 {
		caps["experimental"] = c.Experimental
	}
	return caps
}

// SessionCapabilitiesFromWire parses a capabilities map received from a client.
func SessionCapabilitiesFromWire(data map[string]any) SessionCapabilities {
	_, tools := data["tools"]
	_, resources := data["resources"]
	_, prompts := data["prompts"]
	_, logging := data["logging"]
	_, sampling := data["sampling"]
	caps := SessionCapabilities{
		Tools:     tools,
		Resources: resources,
		Prompts:   prompts,
		Logging:   logging,
		Sampling:  sampling,
	}
	if experimental, ok := data["experimental"].(map[string]any); ok {
		caps.Experimental = experimental
	}
	return caps
}

// InitializeResult is the payload of a successful initialize call.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

// Session is the aggregate root for one client connection: lifecycle state,
// negotiated metadata, and the three capability registries. All mutation goes
// through methods holding the session lock, so registries are safe for
// concurrent access from overlapping tool-call tasks.
type Session struct {
	ID              SessionID
	ProtocolVersion ProtocolVersion
	CreatedAt       time.Time

	mu            sync.Mutex
	state         SessionState
	clientInfo    *ClientInfo
	serverInfo    ServerInfo
	capabilities  SessionCapabilities
	logLevel      LogLevel
	tools         map[string]*Tool
	resources     map[string]*Resource
	resourceOrder []string
	prompts       map[string]*Prompt
	initializedAt time.Time
	closedAt      time.Time
	events        []DomainEvent
}

// NewSession creates a session in the created state and queues a
// SessionCreated event.
func NewSession(serverName, serverVersion string, capabilities SessionCapabilities) *Session {
	s := &Session{
		ID:              NewSessionID(),
		ProtocolVersion: LatestProtocolVersion,
		CreatedAt:       time.Now().UTC(),
		state:           SessionCreated,
		serverInfo:      ServerInfo{Name: serverName, Version: serverVersion},
		capabilities:    capabilities,
		logLevel:        LogInfo,
		tools:           make(map[string]*Tool),
		resources:       make(map[string]*Resource),
		prompts:         make(map[string]*Prompt),
	}
	s.events = append(s.events, SessionCreatedEvent{
		BaseEvent: newBaseEvent(),
		SessionID: s.ID.String(),
	})
	return s
}

// Initialize moves the session to ready and records the client info. It is
// only legal from the created or initializing states; any later call fails
// with a state error.
func (s *Session) Initialize(client ClientInfo, clientCapabilities map[string]any) (*InitializeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionCreated && s.state != SessionInitializing {
		return nil, &SessionStateError{Operation: "initialize", State: s.state}
	}

	s.state = SessionInitializing
	s.clientInfo = &client
	s.initializedAt = time.Now().UTC()
	s.state = SessionReady

	s.events = append(s.events, SessionInitializedEvent{
		BaseEvent:     newBaseEvent(),
		SessionID:     s.ID.String(),
		ClientName:    client.Name,
		ClientVersion: client.Version,
	})

	return &InitializeResult{
		ProtocolVersion: s.ProtocolVersion.String(),
		Capabilities:    s.capabilities.ToWire(),
		ServerInfo:      s.serverInfo,
	}, nil
}

// Close moves the session to closed. Closing an already-closed session is a
// no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionClosed {
		return
	}
	s.state = SessionClosing
	s.closedAt = time.Now().UTC()
	s.state = SessionClosed

	s.events = append(s.events, SessionClosedEvent{
		BaseEvent: newBaseEvent(),
		SessionID: s.ID.String(),
	})
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsReady reports whether the session accepts capability requests.
func (s *Session) IsReady() bool { return s.State() == SessionReady }

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool { return s.State() == SessionClosed }

// ClientInfo returns the client info recorded at initialization, or nil.
func (s *Session) ClientInfo() *ClientInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientInfo
}

// ServerInfo returns this server's identity.
func (s *Session) ServerInfo() ServerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverInfo
}

// Capabilities returns the advertised capabilities.
func (s *Session) Capabilities() SessionCapabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilities
}

// SetLogLevel updates the session log level.
func (s *Session) SetLogLevel(level LogLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLevel = level
}

// LogLevel returns the session log level.
func (s *Session) LogLevel() LogLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logLevel
}

// InitializedAt returns when the session was initialized, zero if never.
func (s *Session) InitializedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializedAt
}

// ClosedAt returns when the session was closed, zero if never.
func (s *Session) ClosedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closedAt
}

// RecordEvent queues a domain event on the session.
func (s *Session) RecordEvent(event DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events drains the event queue: the pending events are returned and the
// queue is cleared atomically, so each event is observed exactly once.
func (s *Session) Events() []DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// RegisterTool upserts a tool by name; the last registration wins.
func (s *Session) RegisterTool(tool *Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.Name.String()] = tool
}

// UnregisterTool removes a tool by name, reporting whether it existed.
func (s *Session) UnregisterTool(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tools[name]; !ok {
		return false
	}
	delete(s.tools, name)
	return true
}

// GetTool returns the tool registered under name, or nil.
func (s *Session) GetTool(name string) *Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools[name]
}

// ListTools returns a snapshot of all registered tools; the registry may be
// mutated concurrently while iterating the snapshot.
func (s *Session) ListTools() []*Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tools := make([]*Tool, 0, len(s.tools))
	for _, tool := range s.tools {
		tools = append(tools, tool)
	}
	return tools
}

// RegisterResource upserts a resource by URI; the last registration wins.
// Registration order is retained for template matching.
func (s *Session) RegisterResource(resource *Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uri := resource.URI.String()
	if _, exists := s.resources[uri]; !exists {
		s.resourceOrder = append(s.resourceOrder, uri)
	}
	s.resources[uri] = resource
}

// UnregisterResource removes a resource by URI, reporting whether it existed.
func (s *Session) UnregisterResource(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[uri]; !ok {
		return false
	}
	delete(s.resources, uri)
	for i, existing := range s.resourceOrder {
		if existing == uri {
			s.resourceOrder = append(s.resourceOrder[:i], s.resourceOrder[i+1:]...)
			break
		}
	}
	return true
}

// GetResource resolves a URI to a resource. Exact matches win; otherwise the
// first registered template whose literal prefix matches the URI is returned.
// When two templates share a prefix the earlier registration wins.
func (s *Session) GetResource(uri string) *Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resource, ok := s.resources[uri]; ok {
		return resource
	}
	for _, key := range s.resourceOrder {
		resource := s.resources[key]
		if resource != nil && resource.MatchesURI(uri) {
			return resource
		}
	}
	return nil
}

// ListResources returns a snapshot of all registered resources in
// registration order.
func (s *Session) ListResources() []*Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	resources := make([]*Resource, 0, len(s.resources))
	for _, key := range s.resourceOrder {
		if resource, ok := s.resources[key]; ok {
			resources = append(resources, resource)
		}
	}
	return resources
}

// RegisterPrompt upserts a prompt by name; the last registration wins.
func (s *Session) RegisterPrompt(prompt *Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[prompt.Name] = prompt
}

// UnregisterPrompt removes a prompt by name, reporting whether it existed.
func (s *Session) UnregisterPrompt(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[name]; !ok {
		return false
	}
	delete(s.prompts, name)
	return true
}

// GetPrompt returns the prompt registered under name, or nil.
func (s *Session) GetPrompt(name string) *Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts[name]
}

// ListPrompts returns a snapshot of all registered prompts.
func (s *Session) ListPrompts() []*Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	prompts := make([]*Prompt, 0, len(s.prompts))
	for _, prompt := range s.prompts {
		prompts = append(prompts, prompt)
	}
	return prompts
}

// Counts returns the number of registered tools, resources and prompts.
func (s *Session) Counts() (tools, resources, prompts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tools), len(s.resources), len(s.prompts)
}
