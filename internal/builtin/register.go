package builtin

import (
	"go.uber.org/multierr"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/config"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/logging"
	"github.com/telemetryflow/tfo-mcp/internal/usecases"
)

// RegisterAll installs the built-in tools, resources and prompts on a
// session, respecting the capability flags in cfg. chat may be nil; the
// claude_conversation tool is only registered when it is not. A failing
// registration does not stop the remaining ones; all failures are
// aggregated into the returned error.
func RegisterAll(session *domain.Session, invoker *usecases.ToolInvoker, cfg *config.Config, chat domain.ChatService, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}

	var errs error

	if cfg.MCP.EnableTools {
		defs := toolDefs()
		if chat != nil {
			defs = append(defs, claudeToolDef(chat))
		}
		for _, def := range defs {
			opts := append([]domain.ToolOption{
				domain.WithToolCategory(def.category),
				domain.WithToolTags(def.tags...),
			}, def.opts...)
			tool, err := domain.NewTool(def.name, def.description, def.schema, def.handler, opts...)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			errs = multierr.Append(errs, invoker.Register(tool))
		}
	}

	if cfg.MCP.EnableResources {
		resources := []struct {
			uri         string
			name        string
			description string
			mimeType    domain.MimeType
			reader      domain.ResourceReader
			template    bool
		}{
			{"config://server", "Server Configuration", "Current server configuration", domain.MimeApplicationJSON, configReader(cfg), false},
			{"status://health", "Health Status", "Server health status", domain.MimeApplicationJSON, healthReader(session), false},
			{"file:///{path}", "File", "Read a file from the filesystem", domain.MimeTextPlain, fileReader, true},
		}
		for _, def := range resources {
			var resource *domain.Resource
			var err error
			if def.template {
				resource, err = domain.NewTemplateResource(def.uri, def.name, def.description, def.mimeType, def.reader)
			} else {
				resource, err = domain.NewResource(def.uri, def.name, def.description, def.mimeType, def.reader)
			}
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			session.RegisterResource(resource)
		}
	}

	if cfg.MCP.EnablePrompts {
		for _, prompt := range builtinPrompts() {
			session.RegisterPrompt(prompt)
		}
	}

	tools, resources, prompts := session.Counts()
	logger.Info("built-in capabilities registered", logging.Fields{
		"tools":     tools,
		"resources": resources,
		"prompts":   prompts,
	})
	return errs
}

// Names returns the built-in capability names for the CLI info command.
func Names(withChat bool) (tools, resources, prompts []string) {
	for _, def := range toolDefs() {
		tools = append(tools, def.name)
	}
	if withChat {
		tools = append(tools, "claude_conversation")
	}
	resources = []string{"config://server", "status://health", "file:///{path}"}
	for _, prompt := range builtinPrompts() {
		prompts = append(prompts, prompt.Name)
	}
	return tools, resources, prompts
}
