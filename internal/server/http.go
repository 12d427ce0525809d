package server

import (
	"context"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tasknotes/internal/instrumentation"
)

// DefaultMCPEndpoint is the path the streamable HTTP transport is served on.
const DefaultMCPEndpoint = "/mcp"

// HTTPServer serves an MCP server over streamable HTTP next to the health
// endpoints.
type HTTPServer struct {
	httpServer *http.Server
	health     *HealthChecker
}

// NewHTTPServer creates the HTTP server for mcpSrv. Requests are recorded
// through the server context's metrics.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, addr string, disableStreaming bool) *HTTPServer {
	var streamable *mcpserver.StreamableHTTPServer
	if disableStreaming {
		streamable = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath(DefaultMCPEndpoint),
			mcpserver.WithDisableStreaming(true),
		)
	} else {
		streamable = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath(DefaultMCPEndpoint),
		)
	}

	health := NewHealthChecker(sc)
	mux := http.NewServeMux()
	mux.Handle(DefaultMCPEndpoint, streamable)
	health.RegisterHealthEndpoints(mux)

	return &HTTPServer{
		health: health,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           InstrumentHTTP(sc.Metrics(), mux),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Health returns the health checker backing /healthz and /readyz.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Addr returns the address the server listens on.
func (s *HTTPServer) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the instrumented request multiplexer.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving requests until Shutdown.
func (s *HTTPServer) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains open connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// InstrumentHTTP records method, path, status and latency of each request.
// With nil metrics next is returned unchanged.
func InstrumentHTTP(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent event streams working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
