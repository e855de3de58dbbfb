// Package stdio implements the line-delimited JSON-RPC 2.0 transport
// and the protocol method dispatch.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/config"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/logging"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/telemetry"
	"github.com/telemetryflow/tfo-mcp/internal/usecases"
)

// errMethodNotFound is a routing sentinel: calls get METHOD_NOT_FOUND,
// notifications are dropped.
var errMethodNotFound = errors.New("method not found")

// request is the inbound JSON-RPC envelope. ID stays raw so that a
// missing id (notification) is distinguishable from id 0 or "".
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  map[string]any  `json:"params"`
}

// notification reports whether the envelope must never be answered.
func (r *request) notification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, []byte("null"))
}

type rpcError struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Data    any              `json:"data,omitempty"`
}

// successResponse and errorResponse are separate types so that a
// success always carries "result" (even when empty) and never "error",
// and vice versa. Error envelopes omit "id" when the request carried
// none; parse errors pass an explicit null instead, since no id could
// be recovered from the line.
type successResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

type errorResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Error   *rpcError       `json:"error"`
}

// Server is the protocol engine: it owns the read loop, the current
// session and the per-method handlers.
type Server struct {
	cfg      *config.Config
	sessions *usecases.SessionHandler
	sink     telemetry.Sink
	logger   *logging.Logger

	in  io.Reader
	out io.Writer

	outMu sync.Mutex // serializes response writes

	mu      sync.Mutex // guards session and invoker
	session *domain.Session
	invoker *usecases.ToolInvoker

	running atomic.Bool

	// onSession is called once when the process session is created,
	// before any request touches it. Registration of built-in
	// capabilities happens here.
	onSession func(*domain.Session, *usecases.ToolInvoker)
}

// Option configures a Server.
type Option func(*Server)

// WithIO overrides the transport streams. Defaults are os.Stdin and
// os.Stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithSessionHook sets the callback invoked when the session is created.
func WithSessionHook(fn func(*domain.Session, *usecases.ToolInvoker)) Option {
	return func(s *Server) {
		s.onSession = fn
	}
}

// NewServer creates a protocol engine.
func NewServer(cfg *config.Config, sessions *usecases.SessionHandler, sink telemetry.Sink, logger *logging.Logger, opts ...Option) *Server {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		sink:     sink,
		logger:   logger,
		in:       os.Stdin,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// capabilitiesFromConfig maps the config flags onto session
// capabilities.
func (s *Server) capabilitiesFromConfig() domain.SessionCapabilities {
	caps := domain.DefaultSessionCapabilities()
	caps.Tools = s.cfg.MCP.EnableTools
	caps.Resources = s.cfg.MCP.EnableResources
	caps.Prompts = s.cfg.MCP.EnablePrompts
	caps.Logging = s.cfg.MCP.EnableLogging
	caps.Sampling = s.cfg.MCP.EnableSampling
	return caps
}

// ensureSession creates the process session on first use.
func (s *Server) ensureSession(ctx context.Context) (*domain.Session, *usecases.ToolInvoker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return s.session, s.invoker, nil
	}
	session, err := s.sessions.Create(ctx, s.cfg.Server.Name, s.cfg.Server.Version, s.capabilitiesFromConfig())
	if err != nil {
		return nil, nil, err
	}
	invoker := usecases.NewToolInvoker(session, s.sink, s.logger)
	s.session = session
	s.invoker = invoker
	if s.onSession != nil {
		s.onSession(session, invoker)
	}
	return session, invoker, nil
}

// currentSession returns the session and invoker, or a validation error
// when the session does not exist or is not initialized yet.
func (s *Server) currentSession() (*domain.Session, *usecases.ToolInvoker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || !s.session.IsReady() {
		return nil, nil, &domain.ValidationError{Message: "session not initialized"}
	}
	return s.session, s.invoker, nil
}

// Session exposes the current session, mainly for tests and the CLI
// info command. May be nil before the first request.
func (s *Server) Session() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Run consumes stdin until EOF, shutdown or context cancellation. The
// current session, if any, is closed on the way out.
func (s *Server) Run(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)

	if _, _, err := s.ensureSession(ctx); err != nil {
		return err
	}

	s.logger.Info("server running", logging.Fields{
		"name":      s.cfg.Server.Name,
		"version":   s.cfg.Server.Version,
		"transport": s.cfg.Server.Transport,
	})

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(s.in)
		for {
			line, err := reader.ReadBytes('\n')
			if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
				}
				return
			}
		}
	}()

	defer s.closeSession(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if response := s.HandleLine(ctx, line); response != nil {
				s.write(response)
			}
			if !s.running.Load() {
				return nil
			}
		}
	}
}

func (s *Server) closeSession(ctx context.Context) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return
	}
	if err := s.sessions.Close(ctx, session); err != nil {
		s.logger.Error("closing session failed", logging.Fields{"error": err.Error()})
	}
}

// write emits one response line. Writes are serialized so concurrent
// HandleLine callers cannot interleave bytes.
func (s *Server) write(response []byte) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := s.out.Write(append(response, '\n')); err != nil {
		s.logger.Error("writing response failed", logging.Fields{"error": err.Error()})
	}
}

// HandleLine processes one raw inbound line and returns the serialized
// response, or nil when no response must be written. It is safe for
// concurrent use; responses from concurrent callers may complete in any
// order.
func (s *Server) HandleLine(ctx context.Context, line []byte) []byte {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	if len(line) > s.cfg.MCP.MaxMessageSize {
		s.logger.Warn("dropping oversized message", logging.Fields{
			"size":  len(line),
			"limit": s.cfg.MCP.MaxMessageSize,
		})
		return nil
	}

	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Debug("parse error", logging.Fields{"error": err.Error()})
		return marshalError(json.RawMessage("null"), domain.ParseError, "parse error: "+err.Error())
	}

	s.sink.RecordMessage(req.Method)

	if req.JSONRPC != "2.0" {
		return marshalError(req.ID, domain.InvalidRequest, fmt.Sprintf("invalid jsonrpc version: %q", req.JSONRPC))
	}

	result, err := s.dispatch(ctx, &req)

	if req.notification() {
		// Notifications are never answered, even on failure.
		if err != nil && !errors.Is(err, errMethodNotFound) {
			s.logger.Warn("notification handler failed", logging.Fields{
				"method": req.Method,
				"error":  err.Error(),
			})
		}
		return nil
	}

	if err != nil {
		return marshalDispatchError(req.ID, req.Method, err)
	}
	if result == nil {
		result = map[string]any{}
	}
	response, marshalErr := json.Marshal(successResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
	if marshalErr != nil {
		s.logger.Error("marshaling response failed", logging.Fields{
			"method": req.Method,
			"error":  marshalErr.Error(),
		})
		return marshalError(req.ID, domain.InternalError, "failed to serialize response")
	}
	return response
}

func marshalDispatchError(id json.RawMessage, method string, err error) []byte {
	switch {
	case errors.Is(err, errMethodNotFound):
		return marshalError(id, domain.MethodNotFound, "method not found: "+method)
	case domain.IsValidation(err):
		return marshalError(id, domain.InvalidParams, err.Error())
	default:
		return marshalError(id, domain.InternalError, err.Error())
	}
}

func marshalError(id json.RawMessage, code domain.ErrorCode, message string) []byte {
	response, err := json.Marshal(errorResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
	if err != nil {
		// Static fallback; only reachable if message itself breaks
		// encoding, which json.Marshal on a string never does.
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal error"}}`)
	}
	return response
}

// dispatch routes one request to its handler.
func (s *Server) dispatch(ctx context.Context, req *request) (any, error) {
	switch req.Method {
	case domain.MethodInitialize:
		return s.handleInitialize(ctx, req.Params)
	case domain.MethodInitialized:
		return nil, nil
	case domain.MethodPing:
		return map[string]any{}, nil
	case domain.MethodToolsList:
		return s.handleToolsList()
	case domain.MethodToolsCall:
		return s.handleToolsCall(ctx, req.Params)
	case domain.MethodResourcesList:
		return s.handleResourcesList()
	case domain.MethodResourcesTemplates:
		return s.handleResourcesTemplatesList()
	case domain.MethodResourcesRead:
		return s.handleResourcesRead(ctx, req.Params)
	case domain.MethodPromptsList:
		return s.handlePromptsList()
	case domain.MethodPromptsGet:
		return s.handlePromptsGet(ctx, req.Params)
	case domain.MethodLoggingSetLevel:
		return s.handleLoggingSetLevel(req.Params)
	case domain.MethodShutdown:
		s.running.Store(false)
		return map[string]any{}, nil
	default:
		return nil, errMethodNotFound
	}
}

type initializeParams struct {
	ProtocolVersion string `mapstructure:"protocolVersion"`
	ClientInfo      struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
	} `mapstructure:"clientInfo"`
	Capabilities map[string]any `mapstructure:"capabilities"`
}

func (s *Server) handleInitialize(ctx context.Context, params map[string]any) (any, error) {
	var p initializeParams
	if err := mapstructure.Decode(params, &p); err != nil {
		return nil, &domain.ValidationError{Message: "invalid initialize params: " + err.Error()}
	}

	session, _, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	client := domain.ClientInfo{Name: p.ClientInfo.Name, Version: p.ClientInfo.Version}
	result, err := s.sessions.Initialize(ctx, session, client, p.Capabilities)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) handleToolsList() (any, error) {
	session, _, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	tools := session.ListTools()
	wire := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		wire = append(wire, tool.ToWire())
	}
	return map[string]any{"tools": wire}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params map[string]any) (any, error) {
	_, invoker, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return nil, &domain.ValidationError{Message: "missing required parameter: name"}
	}
	args, _ := params["arguments"].(map[string]any)
	return invoker.Invoke(ctx, name, args), nil
}

func (s *Server) handleResourcesList() (any, error) {
	session, _, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	wire := make([]map[string]any, 0)
	for _, resource := range session.ListResources() {
		if resource.IsTemplate {
			continue
		}
		wire = append(wire, resource.ToWire())
	}
	return map[string]any{"resources": wire}, nil
}

func (s *Server) handleResourcesTemplatesList() (any, error) {
	session, _, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	wire := make([]map[string]any, 0)
	for _, resource := range session.ListResources() {
		if !resource.IsTemplate {
			continue
		}
		wire = append(wire, resource.ToTemplateWire())
	}
	return map[string]any{"resourceTemplates": wire}, nil
}

func (s *Server) handleResourcesRead(ctx context.Context, params map[string]any) (any, error) {
	session, _, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	uri, ok := params["uri"].(string)
	if !ok || uri == "" {
		return nil, &domain.ValidationError{Message: "missing required parameter: uri"}
	}
	start := time.Now()
	resource := session.GetResource(uri)
	if resource == nil {
		s.sink.RecordResourceRead(uri, time.Since(start), false)
		return nil, &domain.ResourceNotFoundError{URI: uri}
	}
	content, err := resource.Read(ctx, uri, params)
	if err != nil {
		s.sink.RecordResourceRead(uri, time.Since(start), false)
		return nil, err
	}
	s.sink.RecordResourceRead(uri, time.Since(start), true)
	return map[string]any{"contents": []map[string]any{content.ToWire()}}, nil
}

func (s *Server) handlePromptsList() (any, error) {
	session, _, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	wire := make([]map[string]any, 0)
	for _, prompt := range session.ListPrompts() {
		wire = append(wire, prompt.ToWire())
	}
	return map[string]any{"prompts": wire}, nil
}

func (s *Server) handlePromptsGet(ctx context.Context, params map[string]any) (any, error) {
	session, _, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return nil, &domain.ValidationError{Message: "missing required parameter: name"}
	}
	prompt := session.GetPrompt(name)
	if prompt == nil {
		s.sink.RecordPromptGet(name, false)
		return nil, &domain.PromptNotFoundError{Name: name}
	}

	args := make(map[string]string)
	if raw, ok := params["arguments"].(map[string]any); ok {
		for k, v := range raw {
			args[k] = fmt.Sprintf("%v", v)
		}
	}

	messages, err := prompt.Messages(ctx, args)
	if err != nil {
		s.sink.RecordPromptGet(name, false)
		return nil, err
	}
	s.sink.RecordPromptGet(name, true)

	wire := make([]map[string]any, 0, len(messages))
	for _, message := range messages {
		wire = append(wire, message.ToWire())
	}
	return map[string]any{"messages": wire}, nil
}

func (s *Server) handleLoggingSetLevel(params map[string]any) (any, error) {
	session, _, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	level, _ := params["level"].(string)
	session.SetLogLevel(domain.LogLevelFromString(level))
	return map[string]any{}, nil
}
