// Package usecases coordinates domain objects into the operations the
// protocol layer exposes.
package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/logging"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/telemetry"
)

// Error kinds reported to the telemetry sink for failed tool calls.
const (
	errKindNotFound  = "not_found"
	errKindDisabled  = "disabled"
	errKindTimeout   = "timeout"
	errKindExecution = "execution_error"
)

// ToolInvoker executes tools registered on a session. Every failure mode
// is folded into a tool result with IsError set; Invoke never returns a
// protocol-level error for a tool that misbehaves.
type ToolInvoker struct {
	session *domain.Session
	sink    telemetry.Sink
	logger  *logging.Logger
}

// NewToolInvoker creates an invoker bound to one session.
func NewToolInvoker(session *domain.Session, sink telemetry.Sink, logger *logging.Logger) *ToolInvoker {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &ToolInvoker{session: session, sink: sink, logger: logger}
}

// Register validates and registers a tool on the session, recording a
// registration event.
func (inv *ToolInvoker) Register(tool *domain.Tool) error {
	if tool == nil {
		return &domain.ValidationError{Message: "tool must not be nil"}
	}
	inv.session.RegisterTool(tool)
	inv.session.RecordEvent(domain.NewToolRegisteredEvent(inv.session.ID, tool.Name.String(), tool.Category))
	inv.sink.RecordSessionEvent("tool.registered")
	inv.logger.Debug("tool registered", logging.Fields{
		"tool":     tool.Name.String(),
		"category": tool.Category,
	})
	return nil
}

// Invoke executes the named tool with args. Lookup failures, disabled
// tools, timeouts, handler errors and handler panics all produce an
// error result, never a returned error.
func (inv *ToolInvoker) Invoke(ctx context.Context, name string, args map[string]any) *domain.ToolResult {
	start := time.Now()

	tool := inv.session.GetTool(name)
	if tool == nil {
		inv.record(name, start, false, errKindNotFound)
		return domain.ErrorResult(fmt.Sprintf("tool not found: %s", name))
	}
	if !tool.Enabled {
		inv.record(name, start, false, errKindDisabled)
		return domain.ErrorResult(fmt.Sprintf("tool %q is disabled", name))
	}

	timeout := tool.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultToolTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result *domain.ToolResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		result, err := tool.Execute(execCtx, args)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-execCtx.Done():
		inv.record(name, start, false, errKindTimeout)
		inv.logger.Warn("tool execution timed out", logging.Fields{
			"tool":    name,
			"timeout": timeout.String(),
		})
		return domain.ErrorResult(fmt.Sprintf("tool %q timed out after %s", name, timeout))
	case out := <-done:
		if out.err != nil {
			inv.record(name, start, false, errKindExecution)
			inv.logger.Error("tool execution failed", logging.Fields{
				"tool":  name,
				"error": out.err.Error(),
			})
			return domain.ErrorResult(fmt.Sprintf("tool execution failed: %s", out.err))
		}
		result := out.result
		if result == nil {
			result = domain.TextResult("")
		}
		if result.IsError {
			inv.record(name, start, false, errKindExecution)
		} else {
			inv.record(name, start, true, "")
		}
		return result
	}
}

// record emits the telemetry metric and the ToolExecutedEvent. Sink
// panics must not break the invocation path.
func (inv *ToolInvoker) record(name string, start time.Time, success bool, errorKind string) {
	duration := time.Since(start)

	func() {
		defer func() { _ = recover() }()
		inv.sink.RecordToolCall(name, duration, success, errorKind)
	}()

	inv.session.RecordEvent(domain.NewToolExecutedEvent(inv.session.ID, name, success, duration, errorKind))
}
