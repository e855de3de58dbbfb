package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "whisper"
	logger, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewDevelopment(t *testing.T) {
	logger, err := NewDevelopment()
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	cfg := Config{
		Level:         InfoLevel,
		Format:        "json",
		OutputPaths:   []string{path},
		InitialFields: Fields{"service": "tfo-mcp"},
	}
	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Info("server running", Fields{"transport": "stdio"})
	logger.Debug("must be filtered out")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "server running", entry["message"])
	assert.Equal(t, "stdio", entry["transport"])
	assert.Equal(t, "tfo-mcp", entry["service"])
}

func TestLogger_With(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	logger, err := New(Config{Level: InfoLevel, Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	scoped := logger.With(Fields{"session_id": "abc"})
	scoped.Warn("slow tool")
	require.NoError(t, scoped.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "abc", entry["session_id"])
	assert.Equal(t, "warn", entry["level"])

	// Empty field sets reuse the same logger.
	assert.Same(t, logger, logger.With(nil))
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info("discarded")
	logger.Errorf("also %s", "discarded")
	assert.NoError(t, logger.Sync())
}
