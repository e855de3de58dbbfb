package builtin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/config"
)

// configReader exposes a trimmed view of the server configuration as
// JSON. Secrets (the API key) are never included.
func configReader(cfg *config.Config) domain.ResourceReader {
	return func(_ context.Context, uri string, _ map[string]any) (*domain.ResourceContent, error) {
		view := map[string]any{
			"server": map[string]any{
				"name":      cfg.Server.Name,
				"version":   cfg.Server.Version,
				"transport": cfg.Server.Transport,
			},
			"mcp": map[string]any{
				"protocolVersion": cfg.MCP.ProtocolVersion,
				"enableTools":     cfg.MCP.EnableTools,
				"enableResources": cfg.MCP.EnableResources,
				"enablePrompts":   cfg.MCP.EnablePrompts,
			},
		}
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, err
		}
		return &domain.ResourceContent{
			URI:      uri,
			MimeType: domain.MimeApplicationJSON,
			Text:     string(data),
		}, nil
	}
}

// healthReader reports session health and registry sizes.
func healthReader(session *domain.Session) domain.ResourceReader {
	return func(_ context.Context, uri string, _ map[string]any) (*domain.ResourceContent, error) {
		status := "not_ready"
		if session.IsReady() {
			status = "healthy"
		}
		tools, resources, prompts := session.Counts()
		view := map[string]any{
			"status": status,
			"session": map[string]any{
				"id":            session.ID.String(),
				"state":         string(session.State()),
				"toolCount":     tools,
				"resourceCount": resources,
				"promptCount":   prompts,
			},
		}
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, err
		}
		return &domain.ResourceContent{
			URI:      uri,
			MimeType: domain.MimeApplicationJSON,
			Text:     string(data),
		}, nil
	}
}

// fileReader serves file:///{path} template reads. Errors are reported
// in the content body, matching the tolerant behavior of the file tool.
func fileReader(_ context.Context, uri string, params map[string]any) (*domain.ResourceContent, error) {
	var path string
	if strings.HasPrefix(uri, "file:///") {
		path = uri[len("file:///"):]
	} else if p, ok := params["path"].(string); ok {
		path = p
	}

	if path == "" {
		return &domain.ResourceContent{
			URI:      uri,
			MimeType: domain.MimeTextPlain,
			Text:     "Error: No file path specified",
		}, nil
	}
	if !filepath.IsAbs(path) {
		path = "/" + path
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return &domain.ResourceContent{
			URI:      uri,
			MimeType: domain.MimeTextPlain,
			Text:     "Error reading file: " + err.Error(),
		}, nil
	}

	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		return &domain.ResourceContent{
			URI:      uri,
			MimeType: domain.MimeTextPlain,
			Text:     "Error: File not found: " + path,
		}, nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return &domain.ResourceContent{
			URI:      uri,
			MimeType: domain.MimeTextPlain,
			Text:     "Error reading file: " + err.Error(),
		}, nil
	}

	if !utf8.Valid(data) {
		return &domain.ResourceContent{
			URI:      uri,
			MimeType: domain.MimeOctetStream,
			Blob:     data,
		}, nil
	}

	ext := strings.TrimPrefix(filepath.Ext(resolved), ".")
	return &domain.ResourceContent{
		URI:      uri,
		MimeType: domain.MimeTypeFromExtension(ext),
		Text:     string(data),
	}, nil
}
