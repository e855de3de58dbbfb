package domain

// MCP protocol methods.
const (
	MethodInitialize            = "initialize"
	MethodInitialized           = "notifications/initialized"
	MethodPing                  = "ping"
	MethodShutdown              = "shutdown"
	MethodToolsList             = "tools/list"
	MethodToolsCall             = "tools/call"
	MethodResourcesList         = "resources/list"
	MethodResourcesRead         = "resources/read"
	MethodResourcesTemplates    = "resources/templates/list"
	MethodPromptsList           = "prompts/list"
	MethodPromptsGet            = "prompts/get"
	MethodLoggingSetLevel       = "logging/setLevel"
	MethodNotificationCancelled = "notifications/cancelled"
	MethodNotificationProgress  = "notifications/progress"
	MethodNotificationMessage   = "notifications/message"
)

// ErrorCode is a JSON-RPC or MCP error code.
type ErrorCode int

// Standard JSON-RPC 2.0 error codes plus the MCP-specific range.
const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603

	ToolNotFoundCode        ErrorCode = -32001
	ResourceNotFoundCode    ErrorCode = -32002
	PromptNotFoundCode      ErrorCode = -32003
	ToolExecutionErrorCode  ErrorCode = -32004
	ResourceReadErrorCode   ErrorCode = -32005
	PromptErrorCode         ErrorCode = -32006
	RateLimitedCode         ErrorCode = -32007
	SessionNotInitialized   ErrorCode = -32008
	SessionAlreadyInitCode  ErrorCode = -32009
	UnsupportedProtocolCode ErrorCode = -32010
)

// LogLevel is an RFC 5424 log severity used by logging/setLevel.
type LogLevel string

// Supported log levels.
const (
	LogDebug     LogLevel = "debug"
	LogInfo      LogLevel = "info"
	LogNotice    LogLevel = "notice"
	LogWarning   LogLevel = "warning"
	LogError     LogLevel = "error"
	LogCritical  LogLevel = "critical"
	LogAlert     LogLevel = "alert"
	LogEmergency LogLevel = "emergency"
)

var logLevels = map[string]LogLevel{
	"debug":     LogDebug,
	"info":      LogInfo,
	"notice":    LogNotice,
	"warning":   LogWarning,
	"error":     LogError,
	"critical":  LogCritical,
	"alert":     LogAlert,
	"emergency": LogEmergency,
}

// LogLevelFromString parses a log level, falling back to info for
// unrecognized values.
func LogLevelFromString(value string) LogLevel {
	if level, ok := logLevels[value]; ok {
		return level
	}
	return LogInfo
}

// LatestProtocolVersion is the most recent protocol revision this server
// speaks.
const LatestProtocolVersion = "2024-11-05"

// ProtocolVersion is an MCP protocol revision identifier.
type ProtocolVersion string

var supportedProtocolVersions = map[ProtocolVersion]bool{
	LatestProtocolVersion: true,
}

// NewProtocolVersion creates a ProtocolVersion from a string value.
func NewProtocolVersion(value string) (ProtocolVersion, error) {
	if value == "" {
		return "", NewValidationError("protocol version cannot be empty")
	}
	return ProtocolVersion(value), nil
}

// IsSupported reports whether this revision is one the server implements.
func (v ProtocolVersion) IsSupported() bool {
	return supportedProtocolVersions[v]
}

// String returns the string value of the version.
func (v ProtocolVersion) String() string { return string(v) }
