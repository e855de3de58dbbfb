// Package config loads server configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/telemetryflow/tfo-mcp/internal/domain"
)

// DefaultMaxMessageSize is the largest inbound message the server accepts.
const DefaultMaxMessageSize = 10 * 1024 * 1024

// Duration wraps time.Duration so YAML values like "30s" parse. Bare
// integers are treated as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler. The integer branch must be
// checked by tag: decoding an int scalar into a string succeeds in
// yaml.v3, so a string-first attempt would swallow bare integers.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("invalid duration: %s", value.Value)
		}
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration: %s", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ServerConfig holds server identity settings.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Transport string `yaml:"transport"`
	Debug     bool   `yaml:"debug"`
}

// ClaudeConfig holds settings for the Anthropic API client.
type ClaudeConfig struct {
	APIKey       string   `yaml:"api_key"`
	DefaultModel string   `yaml:"default_model"`
	MaxTokens    int      `yaml:"max_tokens"`
	Temperature  float64  `yaml:"temperature"`
	Timeout      Duration `yaml:"timeout"`
	MaxRetries   int      `yaml:"max_retries"`
	BaseURL      string   `yaml:"base_url"`
}

// MCPConfig holds protocol-level settings.
type MCPConfig struct {
	ProtocolVersion string   `yaml:"protocol_version"`
	EnableTools     bool     `yaml:"enable_tools"`
	EnableResources bool     `yaml:"enable_resources"`
	EnablePrompts   bool     `yaml:"enable_prompts"`
	EnableLogging   bool     `yaml:"enable_logging"`
	EnableSampling  bool     `yaml:"enable_sampling"`
	ToolTimeout     Duration `yaml:"tool_timeout"`
	MaxMessageSize  int      `yaml:"max_message_size"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TelemetryConfig holds metrics settings.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Claude    ClaudeConfig    `yaml:"claude"`
	MCP       MCPConfig       `yaml:"mcp"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "tfo-mcp",
			Version:   "1.0.0",
			Transport: "stdio",
		},
		Claude: ClaudeConfig{
			DefaultModel: domain.DefaultModel().String(),
			MaxTokens:    4096,
			Temperature:  1.0,
			Timeout:      Duration(60 * time.Second),
			MaxRetries:   3,
			BaseURL:      "https://api.anthropic.com",
		},
		MCP: MCPConfig{
			ProtocolVersion: domain.LatestProtocolVersion,
			EnableTools:     true,
			EnableResources: true,
			EnablePrompts:   true,
			EnableLogging:   true,
			EnableSampling:  false,
			ToolTimeout:     Duration(domain.DefaultToolTimeout),
			MaxMessageSize:  DefaultMaxMessageSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "tfo-mcp",
			MetricsAddr: ":9464",
		},
	}
}

// searchPaths lists the locations Load probes when no explicit path is
// given, in priority order.
func searchPaths() []string {
	paths := []string{
		"tfo-mcp.yaml",
		filepath.Join("configs", "tfo-mcp.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tfo-mcp", "config.yaml"))
	}
	paths = append(paths, "/etc/tfo-mcp/config.yaml")
	return paths
}

// Load reads configuration from path. When path is empty the default
// search locations are probed and the first existing file wins; if none
// exists the defaults are used. Environment variables override file
// values last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range searchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays TFO_MCP_* environment variables onto cfg.
// ANTHROPIC_API_KEY is honored as a fallback for the Claude key.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TFO_MCP_SERVER_NAME"); v != "" {
		cfg.Server.Name = v
	}
	if v := os.Getenv("TFO_MCP_DEBUG"); v != "" {
		cfg.Server.Debug = parseBool(v)
	}
	if v := os.Getenv("TFO_MCP_API_KEY"); v != "" {
		cfg.Claude.APIKey = v
	} else if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Claude.APIKey == "" {
		cfg.Claude.APIKey = v
	}
	if v := os.Getenv("TFO_MCP_DEFAULT_MODEL"); v != "" {
		cfg.Claude.DefaultModel = v
	}
	if v := os.Getenv("TFO_MCP_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Claude.MaxTokens = n
		}
	}
	if v := os.Getenv("TFO_MCP_BASE_URL"); v != "" {
		cfg.Claude.BaseURL = v
	}
	if v := os.Getenv("TFO_MCP_TOOL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MCP.ToolTimeout = Duration(d)
		}
	}
	if v := os.Getenv("TFO_MCP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TFO_MCP_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TFO_MCP_TELEMETRY_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("TFO_MCP_METRICS_ADDR"); v != "" {
		cfg.Telemetry.MetricsAddr = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name must not be empty")
	}
	if c.Server.Transport != "stdio" {
		return fmt.Errorf("unsupported transport: %s", c.Server.Transport)
	}
	if c.MCP.MaxMessageSize <= 0 {
		return fmt.Errorf("mcp.max_message_size must be positive")
	}
	if c.MCP.ToolTimeout <= 0 {
		return fmt.Errorf("mcp.tool_timeout must be positive")
	}
	if c.Claude.MaxTokens <= 0 {
		return fmt.Errorf("claude.max_tokens must be positive")
	}
	if c.Claude.Temperature < 0 || c.Claude.Temperature > 2 {
		return fmt.Errorf("claude.temperature must be between 0 and 2")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}
	return nil
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
