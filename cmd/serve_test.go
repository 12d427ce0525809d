package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/server"
)

func TestApplyMetricsEnv(t *testing.T) {
	tests := []struct {
		name        string
		enabled     string
		addr        string
		changed     map[string]bool
		wantEnabled bool
		wantAddr    string
	}{
		{name: "defaults", wantEnabled: true, wantAddr: ":9090"},
		{name: "env disables", enabled: "false", wantEnabled: false, wantAddr: ":9090"},
		{name: "env addr", addr: ":9100", wantEnabled: true, wantAddr: ":9100"},
		{
			name:        "flags win",
			enabled:     "false",
			addr:        ":9100",
			changed:     map[string]bool{"metrics-enabled": true, "metrics-addr": true},
			wantEnabled: true,
			wantAddr:    ":9090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("METRICS_ENABLED", tt.enabled)
			t.Setenv("METRICS_ADDR", tt.addr)

			cfg := MetricsConfig{Enabled: true, Addr: ":9090"}
			applyMetricsEnv(&cfg, func(name string) bool { return tt.changed[name] })

			assert.Equal(t, tt.wantEnabled, cfg.Enabled)
			assert.Equal(t, tt.wantAddr, cfg.Addr)
		})
	}
}

func TestLogWriter(t *testing.T) {
	var fallback bytes.Buffer
	w, closeFn := logWriter(LogFileConfig{}, &fallback)
	assert.Same(t, &fallback, w)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "tasknotes.log")
	w, closeFn = logWriter(LogFileConfig{Path: path, MaxSizeMB: 1}, &fallback)
	_, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	assert.FileExists(t, path)
}

func TestRegisterAllTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), config.Config{})
	t.Cleanup(func() { _ = sc.Shutdown() })

	mcpSrv := mcpserver.NewMCPServer("tasknotes", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, registerAllTools(mcpSrv, sc))

	tools := mcpSrv.ListTools()
	require.Len(t, tools, 3)

	countTasks, ok := tools["notes_count_tasks"]
	require.True(t, ok)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"monthsBack": float64(0)}
	result, err := countTasks.Handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.False(t, sc.HasSession())
}

func TestServe_UnsupportedTransport(t *testing.T) {
	isolateEnv(t)

	res := runWithStore(t, sampleStore(), "serve", "--transport", "sse")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "unsupported transport type: sse")
}
