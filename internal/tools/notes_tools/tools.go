package notes_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/scan"
	"github.com/teemow/tasknotes/internal/server"
	"github.com/teemow/tasknotes/internal/tools/common"
)

// DefaultSearchLimit is the number of notes notes_search returns by default.
const DefaultSearchLimit = 50

// MaxSearchLimit caps maxNotes for notes_search.
const MaxSearchLimit = 250

// NoteSummary is one search hit returned by notes_search.
type NoteSummary struct {
	GUID    string    `json:"guid"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// SearchResult is the payload of notes_search.
type SearchResult struct {
	Query      string        `json:"query"`
	TotalNotes int           `json:"totalNotes"`
	Notes      []NoteSummary `json:"notes"`
}

// NoteTasksResult is the payload of notes_get_tasks.
type NoteTasksResult struct {
	GUID  string   `json:"guid"`
	Title string   `json:"title"`
	Count int      `json:"count"`
	Tasks []string `json:"tasks"`
}

// RegisterNotesTools registers the note scanning tools with the MCP server
func RegisterNotesTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	countTasksTool := mcp.NewTool("notes_count_tasks",
		mcp.WithDescription("Count numbered task lines in the notes created during one calendar month. "+
			"Notes are matched by title and scanned one at a time; the result lists the task count per note."),
		mcp.WithNumber("monthsBack",
			mcp.Required(),
			mcp.Description("How many months before the current month to scan (0 = current month)"),
		),
		mcp.WithString("titleFilter",
			mcp.Description("Text the note title must contain (default: the configured title filter)"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags the notes must carry"),
		),
		mcp.WithBoolean("allPages",
			mcp.Description("Scan every matching note instead of only the first page (default: false)"),
		),
		mcp.WithBoolean("includeTasks",
			mcp.Description("Include the text of each task in the result (default: false)"),
		),
	)
	s.AddTool(countTasksTool, common.InstrumentedToolHandler("notes_count_tasks", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCountTasks(ctx, request, sc)
	}))

	searchTool := mcp.NewTool("notes_search",
		mcp.WithDescription("Search notes with the Evernote search grammar, e.g. 'intitle:Tasks created:month-1'"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query in Evernote search grammar"),
		),
		mcp.WithNumber("maxNotes",
			mcp.Description(fmt.Sprintf("Maximum number of notes to return (default: %d, max: %d)", DefaultSearchLimit, MaxSearchLimit)),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("notes_search", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(ctx, request, sc)
	}))

	getTasksTool := mcp.NewTool("notes_get_tasks",
		mcp.WithDescription("Fetch one note and list the numbered task lines in it"),
		mcp.WithString("guid",
			mcp.Required(),
			mcp.Description("GUID of the note"),
		),
	)
	s.AddTool(getTasksTool, common.InstrumentedToolHandler("notes_get_tasks", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetTasks(ctx, request, sc)
	}))

	return nil
}

func handleCountTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if _, ok := args["monthsBack"]; !ok {
		return mcp.NewToolResultError("monthsBack is required"), nil
	}
	monthsBack, err := common.GetIntArg(args, "monthsBack", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := sc.Config()
	opts := cfg.ScanOptions()
	opts.TitleFilter = common.GetStringArg(args, "titleFilter", opts.TitleFilter)
	opts.Tags = common.GetStringSliceArg(args, "tags")
	opts.AllPages = common.GetBoolArg(args, "allPages", false)
	opts.KeepTasks = common.GetBoolArg(args, "includeTasks", false)

	scanner, err := sc.NewScanner(ctx, opts)
	if err != nil {
		return common.ErrorResult(ctx, "Failed to open Evernote session", err), nil
	}
	common.SetQuery(ctx, scanner.Query(monthsBack).String())

	result, err := scanner.Run(ctx, monthsBack, nil)
	if err != nil {
		return common.ErrorResult(ctx, "Failed to count tasks", err), nil
	}
	common.SetRunID(ctx, result.RunID)

	return jsonResult(result)
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, err := common.RequireStringArg(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxNotes, err := common.GetIntArg(args, "maxNotes", DefaultSearchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if maxNotes <= 0 || maxNotes > MaxSearchLimit {
		return mcp.NewToolResultError(fmt.Sprintf("maxNotes must be between 1 and %d", MaxSearchLimit)), nil
	}
	common.SetQuery(ctx, query)

	store, err := sc.NoteStore(ctx)
	if err != nil {
		return common.ErrorResult(ctx, "Failed to open Evernote session", err), nil
	}

	list, err := store.FindNotes(ctx, evernote.NoteFilter{
		Order:     evernote.SortUpdated,
		Ascending: false,
		Words:     query,
	}, 0, maxNotes)
	if err != nil {
		return common.ErrorResult(ctx, "Failed to search notes", err), nil
	}

	result := SearchResult{
		Query: query,
		Notes: []NoteSummary{},
	}
	if list != nil {
		result.TotalNotes = int(list.TotalNotes)
		for _, n := range list.Notes {
			result.Notes = append(result.Notes, NoteSummary{
				GUID:    n.GUID,
				Title:   n.Title,
				Created: n.Created,
				Updated: n.Updated,
			})
		}
	}

	return jsonResult(result)
}

func handleGetTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	guid, err := common.RequireStringArg(request.GetArguments(), "guid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	store, err := sc.NoteStore(ctx)
	if err != nil {
		return common.ErrorResult(ctx, "Failed to open Evernote session", err), nil
	}

	note, err := store.GetNote(ctx, guid, evernote.ScanNoteOptions)
	if err != nil {
		return common.ErrorResult(ctx, "Failed to get note", err), nil
	}

	tasks := scan.FindTasks(note.Content)
	if tasks == nil {
		tasks = []string{}
	}
	return jsonResult(NoteTasksResult{
		GUID:  note.GUID,
		Title: note.Title,
		Count: len(tasks),
		Tasks: tasks,
	})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
