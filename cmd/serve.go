package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/instrumentation"
	"github.com/teemow/tasknotes/internal/logging"
	"github.com/teemow/tasknotes/internal/resources"
	"github.com/teemow/tasknotes/internal/server"
	"github.com/teemow/tasknotes/internal/tools/notes_tools"
)

// Supported MCP transports.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// LogFileConfig configures the rotating log file.
type LogFileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type serveOptions struct {
	transport        string
	httpAddr         string
	disableStreaming bool
	metrics          MetricsConfig
	logFile          LogFileConfig
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP (Model Context Protocol) server to provide note scanning
tools for AI assistants.

Supports two transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp, with /healthz and /readyz

The Evernote session is opened on the first tool call, so the server starts
even when AUTH_TOKEN is not set yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyMetricsEnv(&opts.metrics, cmd.Flags().Changed)
			return runServe(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
	cmd.Flags().StringVar(&opts.logFile.Path, "log-file", "", "Write logs to this file with rotation instead of stderr")
	cmd.Flags().IntVar(&opts.logFile.MaxSizeMB, "log-max-size", 10, "Maximum size in megabytes of the log file before it is rotated")
	cmd.Flags().IntVar(&opts.logFile.MaxBackups, "log-max-backups", 3, "Maximum number of rotated log files to keep")
	cmd.Flags().IntVar(&opts.logFile.MaxAgeDays, "log-max-age", 28, "Maximum number of days to keep rotated log files")

	return cmd
}

// applyMetricsEnv fills metrics settings from METRICS_ENABLED and
// METRICS_ADDR when the flags were left at their defaults.
func applyMetricsEnv(cfg *MetricsConfig, flagsChanged func(string) bool) {
	if !flagsChanged("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			cfg.Enabled = strings.EqualFold(v, "true") || v == "1"
		}
	}
	if !flagsChanged("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			cfg.Addr = addr
		}
	}
}

// logWriter returns the writer for server logs and a close function.
func logWriter(cfg LogFileConfig, fallback io.Writer) (io.Writer, func() error) {
	if cfg.Path == "" {
		return fallback, func() error { return nil }
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	return lj, lj.Close
}

func runServe(parent context.Context, a *app, opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return usageErrorf("unsupported transport type: %s (supported: %s, %s)", opts.transport, transportStdio, transportStreamableHTTP)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	w, closeLog := logWriter(opts.logFile, a.stderr)
	defer func() { _ = closeLog() }()
	logger := a.newLogger(w)
	slog.SetDefault(logger)

	if _, err := cfg.ResolveToken(); err != nil {
		logger.Warn("developer token is not configured; tools will fail until AUTH_TOKEN is set",
			"url", config.DeveloperTokenURL)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.EvernoteServiceURL = evernote.ServiceURL(cfg.Service)
	instrConfig.Transport = opts.transport

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	serverContext := server.NewServerContext(shutdownCtx, cfg,
		server.WithStoreFactory(a.storeFactory),
		server.WithLogger(logging.NewSlogAdapter(logger)),
	)
	serverContext.SetMetrics(provider.Metrics())
	serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))

	var metricsServer *server.MetricsServer
	defer func() {
		// The parent context may already be cancelled here.
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		var errs []error
		if metricsServer != nil {
			errs = append(errs, metricsServer.Shutdown(ctx))
		}
		errs = append(errs, serverContext.Shutdown(), provider.Shutdown(ctx))
		if err := errors.Join(errs...); err != nil {
			logger.Error("error during shutdown", logging.Err(err))
		}
	}()

	// The metrics port is not opened for stdio, where the server is a
	// short-lived child process of the client.
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.Enabled() && provider.PrometheusExporter() != nil {
		metricsServer, err = startMetricsServer(provider, opts.metrics.Addr)
		if err != nil {
			return err
		}
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	}

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch opts.transport {
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts, logger)
	default:
		return runStdioServer(shutdownCtx, mcpSrv)
	}
}

func startMetricsServer(provider *instrumentation.Provider, addr string) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("tasknotes", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Notes",
			register: func() error {
				return notes_tools.RegisterNotesTools(mcpSrv, sc)
			},
		},
		{
			name: "Scan Resources",
			register: func() error {
				return resources.RegisterScanResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions, logger *slog.Logger) error {
	httpServer := server.NewHTTPServer(mcpSrv, sc, opts.httpAddr, opts.disableStreaming)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	logger.Info("MCP server listening",
		"transport", transportStreamableHTTP,
		"addr", opts.httpAddr,
		"endpoint", server.DefaultMCPEndpoint)

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil
	}
}
