package builtin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/config"
)

func TestConfigReader(t *testing.T) {
	cfg := config.Default()
	cfg.Claude.APIKey = "sk-secret"

	content, err := configReader(cfg)(context.Background(), "config://server", nil)
	require.NoError(t, err)
	assert.Equal(t, "config://server", content.URI)
	assert.Equal(t, domain.MimeApplicationJSON, content.MimeType)

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(content.Text), &view))
	server := view["server"].(map[string]any)
	assert.Equal(t, "tfo-mcp", server["name"])
	mcp := view["mcp"].(map[string]any)
	assert.Equal(t, true, mcp["enableTools"])

	// The API key must never leak into the resource body.
	assert.NotContains(t, content.Text, "sk-secret")
}

func TestHealthReader(t *testing.T) {
	session := domain.NewSession("srv", "1.0", domain.DefaultSessionCapabilities())

	content, err := healthReader(session)(context.Background(), "status://health", nil)
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(content.Text), &view))
	assert.Equal(t, "not_ready", view["status"])

	_, err = session.Initialize(domain.ClientInfo{Name: "c"}, nil)
	require.NoError(t, err)

	content, err = healthReader(session)(context.Background(), "status://health", nil)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(content.Text), &view))
	assert.Equal(t, "healthy", view["status"])

	sessionView := view["session"].(map[string]any)
	assert.Equal(t, session.ID.String(), sessionView["id"])
	assert.Equal(t, "ready", sessionView["state"])
}

func TestFileReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title"), 0o644))

	t.Run("reads via uri", func(t *testing.T) {
		uri := "file://" + path
		content, err := fileReader(context.Background(), uri, nil)
		require.NoError(t, err)
		assert.Equal(t, uri, content.URI)
		assert.Equal(t, "# Title", content.Text)
		assert.Equal(t, domain.MimeTextMarkdown, content.MimeType)
	})

	t.Run("missing file reports in body", func(t *testing.T) {
		content, err := fileReader(context.Background(), "file:///"+filepath.Join(dir, "gone.md"), nil)
		require.NoError(t, err)
		assert.Contains(t, content.Text, "File not found")
	})

	t.Run("no path reports in body", func(t *testing.T) {
		content, err := fileReader(context.Background(), "file://", nil)
		require.NoError(t, err)
		assert.Contains(t, content.Text, "No file path specified")
	})

	t.Run("binary file becomes a blob", func(t *testing.T) {
		binPath := filepath.Join(dir, "blob.bin")
		require.NoError(t, os.WriteFile(binPath, []byte{0xff, 0xfe, 0x00}, 0o644))

		content, err := fileReader(context.Background(), "file://"+binPath, nil)
		require.NoError(t, err)
		assert.Empty(t, content.Text)
		assert.Equal(t, []byte{0xff, 0xfe, 0x00}, content.Blob)
		assert.Equal(t, domain.MimeOctetStream, content.MimeType)
	})
}
