package notes_tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/instrumentation"
	"github.com/teemow/tasknotes/internal/scan"
	"github.com/teemow/tasknotes/internal/server"
)

type fakeStore struct {
	notes     map[string]*evernote.Note
	order     []string
	total     int32
	searchErr error
	getErr    error

	filters  []evernote.NoteFilter
	maxNotes []int
}

func (f *fakeStore) FindNotes(_ context.Context, filter evernote.NoteFilter, offset, maxNotes int) (*evernote.NoteList, error) {
	f.filters = append(f.filters, filter)
	f.maxNotes = append(f.maxNotes, maxNotes)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	list := &evernote.NoteList{StartIndex: int32(offset), TotalNotes: f.total}
	for i := offset; i < len(f.order) && len(list.Notes) < maxNotes; i++ {
		n := f.notes[f.order[i]]
		list.Notes = append(list.Notes, &evernote.Note{GUID: n.GUID, Title: n.Title, Created: n.Created, Updated: n.Updated})
	}
	return list, nil
}

func (f *fakeStore) GetNote(_ context.Context, guid string, _ evernote.GetNoteOptions) (*evernote.Note, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	n, ok := f.notes[guid]
	if !ok {
		return nil, &evernote.Error{Kind: evernote.KindNotFound, Parameter: "Note.guid"}
	}
	return n, nil
}

func newFakeStore() *fakeStore {
	created := time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	return &fakeStore{
		total: 2,
		order: []string{"g1", "g2"},
		notes: map[string]*evernote.Note{
			"g1": {GUID: "g1", Title: "Дела 1", Created: created, Content: "<div>1. buy milk\n<div>2. call bank\n"},
			"g2": {GUID: "g2", Title: "Дела 2", Created: created, Content: "<div>no tasks here</div>\n"},
		},
	}
}

func newTestServer(t *testing.T, store scan.NoteStore) (*mcpserver.MCPServer, *server.ServerContext) {
	t.Helper()
	factory := func(context.Context, config.Config, *instrumentation.Metrics) (scan.NoteStore, error) {
		return store, nil
	}
	sc := server.NewServerContext(context.Background(),
		config.Config{TitleFilter: config.DefaultTitleFilter, PageSize: config.DefaultPageSize},
		server.WithStoreFactory(factory))
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("tasknotes", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterNotesTools(s, sc))
	return s, sc
}

func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return tc.Text
}

func TestRegisterNotesTools(t *testing.T) {
	s, _ := newTestServer(t, newFakeStore())

	tools := s.ListTools()
	for _, name := range []string{"notes_count_tasks", "notes_search", "notes_get_tasks"} {
		assert.Contains(t, tools, name)
	}
}

func TestCountTasks(t *testing.T) {
	store := newFakeStore()
	s, sc := newTestServer(t, store)

	result := callTool(t, s, "notes_count_tasks", map[string]interface{}{
		"monthsBack":   float64(1),
		"includeTasks": true,
	})
	require.False(t, result.IsError, resultText(t, result))

	var got scan.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, 2, got.TotalNotes)
	assert.Equal(t, 2, got.Fetched)
	assert.Equal(t, 2, got.Tasks)
	assert.False(t, got.Truncated)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, []string{"buy milk", "call bank"}, got.Notes[0].Tasks)

	require.Len(t, store.filters, 1)
	assert.Contains(t, store.filters[0].Words, "intitle:"+config.DefaultTitleFilter)
	assert.True(t, sc.HasSession())
}

func TestCountTasks_TitleFilterAndTags(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestServer(t, store)

	result := callTool(t, s, "notes_count_tasks", map[string]interface{}{
		"monthsBack":  float64(0),
		"titleFilter": "Todo",
		"tags":        "work,home",
	})
	require.False(t, result.IsError, resultText(t, result))

	require.Len(t, store.filters, 1)
	assert.Contains(t, store.filters[0].Words, "intitle:Todo")
	assert.Contains(t, store.filters[0].Words, "tag:work tag:home")
}

func TestCountTasks_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{name: "missing monthsBack", args: map[string]interface{}{}},
		{name: "fractional monthsBack", args: map[string]interface{}{"monthsBack": 1.5}},
		{name: "text monthsBack", args: map[string]interface{}{"monthsBack": "last"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			s, _ := newTestServer(t, store)

			result := callTool(t, s, "notes_count_tasks", tt.args)
			assert.True(t, result.IsError)
			assert.Empty(t, store.filters, "no search expected")
		})
	}
}

func TestCountTasks_AuthError(t *testing.T) {
	store := newFakeStore()
	store.searchErr = &evernote.Error{Kind: evernote.KindAuthorization, Code: evernote.CodeAuthExpired}
	s, _ := newTestServer(t, store)

	result := callTool(t, s, "notes_count_tasks", map[string]interface{}{"monthsBack": float64(1)})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "AUTH_EXPIRED")
}

func TestCountTasks_PlaceholderToken(t *testing.T) {
	sc := server.NewServerContext(context.Background(), config.Config{Token: config.PlaceholderToken})
	t.Cleanup(func() { _ = sc.Shutdown() })
	s := mcpserver.NewMCPServer("tasknotes", "test")
	require.NoError(t, RegisterNotesTools(s, sc))

	result := callTool(t, s, "notes_count_tasks", map[string]interface{}{"monthsBack": float64(1)})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "developer token is not configured")
	assert.False(t, sc.HasSession())
}

func TestSearch(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestServer(t, store)

	result := callTool(t, s, "notes_search", map[string]interface{}{"query": "intitle:Дела"})
	require.False(t, result.IsError, resultText(t, result))

	var got SearchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, "intitle:Дела", got.Query)
	assert.Equal(t, 2, got.TotalNotes)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, "g1", got.Notes[0].GUID)
	assert.Equal(t, []int{DefaultSearchLimit}, store.maxNotes)
	assert.Equal(t, evernote.SortUpdated, store.filters[0].Order)
}

func TestSearch_Limits(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr bool
	}{
		{name: "missing query", args: map[string]interface{}{}, wantErr: true},
		{name: "zero", args: map[string]interface{}{"query": "x", "maxNotes": float64(0)}, wantErr: true},
		{name: "too many", args: map[string]interface{}{"query": "x", "maxNotes": float64(MaxSearchLimit + 1)}, wantErr: true},
		{name: "one", args: map[string]interface{}{"query": "x", "maxNotes": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, newFakeStore())
			result := callTool(t, s, "notes_search", tt.args)
			assert.Equal(t, tt.wantErr, result.IsError, resultText(t, result))
		})
	}
}

func TestGetTasks(t *testing.T) {
	s, _ := newTestServer(t, newFakeStore())

	result := callTool(t, s, "notes_get_tasks", map[string]interface{}{"guid": "g1"})
	require.False(t, result.IsError, resultText(t, result))

	var got NoteTasksResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, NoteTasksResult{GUID: "g1", Title: "Дела 1", Count: 2, Tasks: []string{"buy milk", "call bank"}}, got)
}

func TestGetTasks_NoTasks(t *testing.T) {
	s, _ := newTestServer(t, newFakeStore())

	result := callTool(t, s, "notes_get_tasks", map[string]interface{}{"guid": "g2"})
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"tasks": []`)
}

func TestGetTasks_NotFound(t *testing.T) {
	s, _ := newTestServer(t, newFakeStore())

	result := callTool(t, s, "notes_get_tasks", map[string]interface{}{"guid": "missing"})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")
}
