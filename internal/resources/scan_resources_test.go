package resources

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/server"
)

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func decode(t *testing.T, contents []mcp.ResourceContents, v interface{}) {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	text, ok := contents[0].(*mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected *mcp.TextResourceContents, got %T", contents[0])
	}
	if err := json.Unmarshal([]byte(text.Text), v); err != nil {
		t.Fatalf("failed to decode %q: %v", text.Text, err)
	}
}

func TestRegisterScanResources(t *testing.T) {
	sc := server.NewServerContext(context.Background(), config.Config{})
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("tasknotes", "test", mcpserver.WithResourceCapabilities(false, false))
	if err := RegisterScanResources(s, sc); err != nil {
		t.Fatalf("RegisterScanResources() error = %v", err)
	}
}

func TestHandleConfig(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantToken bool
	}{
		{name: "placeholder token", token: config.PlaceholderToken, wantToken: false},
		{name: "real token", token: "S=s1:U=abc", wantToken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := server.NewServerContext(context.Background(), config.Config{
				Token:       tt.token,
				Service:     "sandbox",
				TitleFilter: "Дела",
				PageSize:    500,
				ClientName:  "tasknotes (Go)",
			})
			defer sc.Shutdown()

			contents, err := handleConfig(readRequest(ConfigURI), sc)
			if err != nil {
				t.Fatalf("handleConfig() error = %v", err)
			}

			var got ScanConfig
			decode(t, contents, &got)
			if got.ServiceURL != evernote.SandboxHost {
				t.Errorf("ServiceURL = %q, want %q", got.ServiceURL, evernote.SandboxHost)
			}
			if got.TitleFilter != "Дела" || got.PageSize != 500 {
				t.Errorf("got %+v", got)
			}
			if got.TokenConfigured != tt.wantToken {
				t.Errorf("TokenConfigured = %v, want %v", got.TokenConfigured, tt.wantToken)
			}
			if got.TaskPattern == "" {
				t.Error("TaskPattern is empty")
			}

			text := contents[0].(*mcp.TextResourceContents).Text
			if tt.wantToken && strings.Contains(text, tt.token) {
				t.Error("config resource leaks the token")
			}
		})
	}
}

func TestHandleSession(t *testing.T) {
	sc := server.NewServerContext(context.Background(), config.Config{})

	contents, err := handleSession(readRequest(SessionURI), sc)
	if err != nil {
		t.Fatalf("handleSession() error = %v", err)
	}
	var got SessionState
	decode(t, contents, &got)
	if got.Connected || got.Shutdown {
		t.Errorf("got %+v, want disconnected and running", got)
	}

	_ = sc.Shutdown()
	contents, err = handleSession(readRequest(SessionURI), sc)
	if err != nil {
		t.Fatalf("handleSession() error = %v", err)
	}
	decode(t, contents, &got)
	if !got.Shutdown {
		t.Error("Shutdown = false after Shutdown()")
	}
}
