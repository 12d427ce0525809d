package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/scan"
	"github.com/teemow/tasknotes/internal/server"
)

// Resource URIs.
const (
	ConfigURI  = "tasknotes://config"
	SessionURI = "tasknotes://session"
)

// ScanConfig is the content of the config resource. The token is never included.
type ScanConfig struct {
	Service         string `json:"service"`
	ServiceURL      string `json:"serviceUrl"`
	TitleFilter     string `json:"titleFilter"`
	PageSize        int    `json:"pageSize"`
	ClientName      string `json:"clientName"`
	TaskPattern     string `json:"taskPattern"`
	TokenConfigured bool   `json:"tokenConfigured"`
}

// SessionState is the content of the session resource.
type SessionState struct {
	Connected bool `json:"connected"`
	Shutdown  bool `json:"shutdown"`
}

// RegisterScanResources registers read-only resources describing the
// server's scan settings and session state
func RegisterScanResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	configResource := mcp.NewResource(
		ConfigURI,
		"Scan Configuration",
		mcp.WithResourceDescription("Title filter, page size and Evernote service used by the note tools"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleConfig(request, sc)
	})

	sessionResource := mcp.NewResource(
		SessionURI,
		"Evernote Session",
		mcp.WithResourceDescription("Whether the Evernote session has been opened"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(sessionResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSession(request, sc)
	})

	return nil
}

func handleConfig(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	_, tokenErr := cfg.ResolveToken()

	return jsonContents(request.Params.URI, ScanConfig{
		Service:         cfg.Service,
		ServiceURL:      evernote.ServiceURL(cfg.Service),
		TitleFilter:     cfg.TitleFilter,
		PageSize:        cfg.PageSize,
		ClientName:      cfg.ClientName,
		TaskPattern:     scan.TaskPattern(),
		TokenConfigured: tokenErr == nil,
	})
}

func handleSession(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	return jsonContents(request.Params.URI, SessionState{
		Connected: sc.HasSession(),
		Shutdown:  sc.IsShutdown(),
	})
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
