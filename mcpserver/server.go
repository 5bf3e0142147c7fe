// Package mcpserver exposes schema resolution to LLM prompt builders over
// the Model Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/resolution"
	"github.com/teranos/schemalens/snapshot"
	"github.com/teranos/schemalens/version"
)

// Options configures the MCP server
type Options struct {
	Name          string // advertised server name
	DefaultIntent string
	MaxTables     int
}

// MCPServer wraps the resolution facade as MCP tools
type MCPServer struct {
	holder *snapshot.Holder
	facade *resolution.Facade
	opts   Options
	server *mcpsrv.MCPServer
	logger *zap.SugaredLogger
}

// New creates an MCP server reading snapshots from holder
func New(holder *snapshot.Holder, opts Options, log *zap.SugaredLogger) *MCPServer {
	log = logger.OrNop(log).Named("mcp")
	if opts.Name == "" {
		opts.Name = "schemalens"
	}
	s := &MCPServer{
		holder: holder,
		facade: resolution.NewFacade(holder, resolution.Options{MaxTables: opts.MaxTables}, log),
		opts:   opts,
		logger: log,
	}
	s.server = mcpsrv.NewMCPServer(
		opts.Name,
		version.Get().Version,
		mcpsrv.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// registerTools registers all MCP tools
func (s *MCPServer) registerTools() {
	resolveTool := mcp.NewTool("resolve_schema",
		mcp.WithDescription("Resolve what fields mean under an analytical intent and plan the joins connecting their tables"),
		mcp.WithString("intent",
			mcp.Description("Intent name (see list_intents); defaults to the configured default intent"),
		),
		mcp.WithString("tables",
			mcp.Required(),
			mcp.Description("Comma-separated table names to join"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated table.field references to resolve"),
		),
	)
	s.server.AddTool(resolveTool, s.handleResolve)

	pathTool := mcp.NewTool("join_path",
		mcp.WithDescription("Plan the cheapest join connecting a set of tables"),
		mcp.WithString("tables",
			mcp.Required(),
			mcp.Description("Comma-separated table names; two names give the exact shortest path"),
		),
	)
	s.server.AddTool(pathTool, s.handleJoinPath)

	intentsTool := mcp.NewTool("list_intents",
		mcp.WithDescription("List the analytical intents and the perspectives each activates"),
	)
	s.server.AddTool(intentsTool, s.handleListIntents)
}

// handleResolve handles resolve_schema tool calls
func (s *MCPServer) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := request.RequireString("tables")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := concept.ParseFieldRefs(request.GetString("fields", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	intentName := request.GetString("intent", s.opts.DefaultIntent)
	if intentName == "" {
		return mcp.NewToolResultError("intent is required (no default intent configured)"), nil
	}

	res, err := s.facade.Resolve(ctx, resolution.Query{
		Intent: intentName,
		Tables: splitList(tables),
		Fields: fields,
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

// handleJoinPath handles join_path tool calls
func (s *MCPServer) handleJoinPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := request.RequireString("tables")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap := s.holder.Current()
	if snap == nil {
		return toolError(resolution.NoSnapshotError()), nil
	}

	plan, err := snap.Joins.Plan(splitList(tables))
	if err != nil {
		return toolError(err), nil
	}
	if len(plan.Edges) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No joins needed: %s", strings.Join(plan.Tables, ", "))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Join plan (total cost %d):\n", plan.TotalCost)
	for i, e := range plan.Edges {
		fmt.Fprintf(&b, "%d. %s JOIN %s ON %s (cost %d)\n", i+1, e.FromTable, e.ToTable, e.JoinColumn, e.Cost)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleListIntents handles list_intents tool calls
func (s *MCPServer) handleListIntents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.holder.Current()
	if snap == nil {
		return toolError(resolution.NoSnapshotError()), nil
	}

	var b strings.Builder
	all := snap.Intents.All()
	fmt.Fprintf(&b, "%d intent(s):\n", len(all))
	for _, in := range all {
		fmt.Fprintf(&b, "- %s", in.Name)
		if in.Category != "" {
			fmt.Fprintf(&b, " [%s]", in.Category)
		}
		if in.Description != "" {
			fmt.Fprintf(&b, ": %s", in.Description)
		}
		b.WriteString("\n")
		var names []string
		for _, pid := range snap.Intents.ActivePerspectives(in.ID) {
			if p, ok := snap.Perspectives.Lookup(pid); ok {
				names = append(names, p.Name)
			}
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, "  perspectives: %s\n", strings.Join(names, ", "))
		}
		if in.ExampleQuestion != "" {
			fmt.Fprintf(&b, "  example: %s\n", in.ExampleQuestion)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// toolError renders engine errors with their kind, identifiers and hint
func toolError(err error) *mcp.CallToolResult {
	if le, ok := lenserr.As(err); ok {
		msg := le.Error()
		if c := le.ContextString(); c != "" {
			msg += " (" + c + ")"
		}
		if h := le.Hint(); h != "" {
			msg += "\nhint: " + h
		}
		return mcp.NewToolResultError(msg)
	}
	msg := err.Error()
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		msg += "\nhint: " + hints[0]
	}
	return mcp.NewToolResultError(msg)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode tool result")
	}
	return mcp.NewToolResultText(string(data)), nil
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Serve starts the MCP server using stdio transport
func (s *MCPServer) Serve() error {
	s.logger.Infow("Serving MCP over stdio", "name", s.opts.Name)
	return mcpsrv.ServeStdio(s.server)
}
