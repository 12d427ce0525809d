package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/resources"
	"github.com/teemow/tasknotes/internal/server"
)

func newGenerateDocsCmd(a *app) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Print a markdown reference of the MCP tools and resources served by
"tasknotes serve". The reference is built from the registered tool
definitions, so it always matches what clients see.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(a, cmd.OutOrStdout(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(a *app, w io.Writer, outputFile string) error {
	// No credentials are needed; the session is never opened.
	sc := server.NewServerContext(context.Background(), config.Config{})
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, sc); err != nil {
		return err
	}

	tools := make([]mcp.Tool, 0)
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	markdown := toolsMarkdown(tools)

	if outputFile == "" {
		_, err := io.WriteString(w, markdown)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(a.stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

// toolsMarkdown renders tools, already sorted by name, and the resources.
func toolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools and resources served by `tasknotes serve`. Generated from the tool definitions.\n\n")

	sb.WriteString("## Authentication\n\n")
	sb.WriteString("All tools share one Evernote session, opened on the first tool call with the developer token from `AUTH_TOKEN`. ")
	sb.WriteString("Until the token is configured every tool returns an error result.\n\n")

	sb.WriteString("## Notes Tools\n\n")
	for _, tool := range tools {
		sb.WriteString(toolMarkdown(tool))
	}

	sb.WriteString("## Resources\n\n")
	fmt.Fprintf(&sb, "- `%s`: scan configuration (service, title filter, page size, task pattern). The token is never included.\n", resources.ConfigURI)
	fmt.Fprintf(&sb, "- `%s`: whether the Evernote session is open.\n", resources.SessionURI)

	return sb.String()
}

// toolMarkdown renders one tool with an argument table.
func toolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		sb.WriteString(tool.Description + "\n\n")
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		typ, _ := prop["type"].(string)
		if typ == "" {
			typ = "any"
		}
		desc, _ := prop["description"].(string)
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", name, typ, required, strings.ReplaceAll(desc, "|", `\|`))
	}
	sb.WriteString("\n")

	return sb.String()
}
