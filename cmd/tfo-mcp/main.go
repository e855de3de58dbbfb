// Command tfo-mcp runs the TelemetryFlow MCP server over stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/telemetryflow/tfo-mcp/internal/builtin"
	"github.com/telemetryflow/tfo-mcp/internal/domain"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/anthropic"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/config"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/logging"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/persistence"
	"github.com/telemetryflow/tfo-mcp/internal/infrastructure/telemetry"
	"github.com/telemetryflow/tfo-mcp/internal/interfaces/stdio"
	"github.com/telemetryflow/tfo-mcp/internal/usecases"
)

const usage = `tfo-mcp - TelemetryFlow MCP server

Usage:
  tfo-mcp serve [--config PATH] [--debug]   Run the server on stdio
  tfo-mcp validate [--config PATH]          Load and echo the configuration
  tfo-mcp info                              List built-in capabilities
  tfo-mcp init-config [PATH]                Write a default config file
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	command := args[0]
	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to configuration file")
	debug := flags.Bool("debug", false, "enable debug logging")
	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch command {
	case "serve":
		return cmdServe(*configPath, *debug)
	case "validate":
		return cmdValidate(*configPath)
	case "info":
		return cmdInfo()
	case "init-config":
		return cmdInitConfig(flags.Args())
	case "help", "--help", "-h":
		fmt.Fprint(os.Stderr, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", command, usage)
		return 1
	}
}

func buildLogger(cfg *config.Config, debug bool) (*logging.Logger, error) {
	logCfg := logging.Config{
		Level:       logging.LogLevel(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	}
	if cfg.Logging.Output != "" {
		logCfg.OutputPaths = []string{cfg.Logging.Output}
	}
	if debug || cfg.Server.Debug {
		logCfg.Level = logging.DebugLevel
		logCfg.Development = true
	}
	return logging.New(logCfg)
}

func cmdServe(configPath string, debug bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 1
	}

	logger, err := buildLogger(cfg, debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	var sink telemetry.Sink = telemetry.NopSink{}
	var promSink *telemetry.PrometheusSink
	if cfg.Telemetry.Enabled {
		promSink = telemetry.NewPrometheusSink(cfg.Telemetry.ServiceName)
		sink = promSink
	}

	var chat domain.ChatService
	if cfg.Claude.APIKey != "" {
		client, err := anthropic.NewClient(anthropic.Options{
			APIKey:     cfg.Claude.APIKey,
			BaseURL:    cfg.Claude.BaseURL,
			Timeout:    cfg.Claude.Timeout.Std(),
			MaxRetries: cfg.Claude.MaxRetries,
		}, logger)
		if err != nil {
			logger.Warn("claude client unavailable", logging.Fields{"error": err.Error()})
		} else {
			chat = client
		}
	} else {
		logger.Info("no api key configured, claude_conversation tool disabled")
	}

	sessions := usecases.NewSessionHandler(persistence.NewSessionRepository(), sink, logger)

	server := stdio.NewServer(cfg, sessions, sink, logger,
		stdio.WithSessionHook(func(session *domain.Session, invoker *usecases.ToolInvoker) {
			if err := builtin.RegisterAll(session, invoker, cfg, chat, logger); err != nil {
				logger.Error("registering built-ins failed", logging.Fields{"error": err.Error()})
			}
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	var metricsServer *http.Server
	if promSink != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promSink.Handler())
		metricsServer = &http.Server{Addr: cfg.Telemetry.MetricsAddr, Handler: mux}
		group.Go(func() error {
			logger.Info("metrics server listening", logging.Fields{"addr": cfg.Telemetry.MetricsAddr})
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	group.Go(func() error {
		defer stop()
		return server.Run(ctx)
	})

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited with error", logging.Fields{"error": err.Error()})
		return 1
	}
	logger.Info("server stopped")
	return 0
}

func cmdValidate(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 1
	}
	redacted := *cfg
	if redacted.Claude.APIKey != "" {
		redacted.Claude.APIKey = "***"
	}
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal error:", err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}

func cmdInfo() int {
	tools, resources, prompts := builtin.Names(true)
	fmt.Println("Built-in tools:")
	for _, name := range tools {
		fmt.Println("  -", name)
	}
	fmt.Println("Built-in resources:")
	for _, uri := range resources {
		fmt.Println("  -", uri)
	}
	fmt.Println("Built-in prompts:")
	for _, name := range prompts {
		fmt.Println("  -", name)
	}
	return 0
}

func cmdInitConfig(args []string) int {
	path := "tfo-mcp.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteDefault(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("wrote", path)
	return 0
}
