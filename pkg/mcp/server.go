// Package mcp exposes the engine to LLM agents over the Model Context
// Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duynguyendang/implica/pkg/service"
)

// MCPServer wraps the graph service to expose it via MCP.
type MCPServer struct {
	svc *service.GraphService
}

// Run starts the MCP server on Stdio.
func Run(ctx context.Context, svc *service.GraphService) error {
	s := server.NewMCPServer(
		"implica",
		"0.1.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	ms := &MCPServer{svc: svc}

	// Resource: graph summary
	s.AddResource(
		mcp.NewResource(
			"implica://graphs",
			"Graphs",
			mcp.WithResourceDescription("Summary of all managed graphs"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleGraphsResource,
	)

	// Tool: run a query statement
	s.AddTool(
		mcp.NewTool(
			"implica_query",
			mcp.WithDescription("Run a query statement against a graph. Statements chain clauses: "+
				"match <pattern>, create <pattern>, set <var> {props} [merge], remove <var>..., "+
				"order by [desc] <var.key>..., limit <n>, skip <n>, and end with return <var>... or count."),
			mcp.WithString("statement", mcp.Required(), mcp.Description("The statement to run")),
			mcp.WithString("graph", mcp.Description("Graph name (default \"default\")")),
		),
		ms.handleQuery,
	)

	// Tool: export as D3 JSON
	s.AddTool(
		mcp.NewTool(
			"implica_export",
			mcp.WithDescription("Export a graph as D3 force-graph JSON (nodes and links)."),
			mcp.WithString("graph", mcp.Description("Graph name (default \"default\")")),
		),
		ms.handleExport,
	)

	slog.Info("starting MCP server on stdio")
	return server.ServeStdio(s)
}

func (ms *MCPServer) handleGraphsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.MarshalIndent(ms.svc.ListGraphs(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph list: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (ms *MCPServer) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	statement, _ := args["statement"].(string)
	if statement == "" {
		return mcp.NewToolResultError("statement argument required"), nil
	}
	graphName, _ := args["graph"].(string)

	result, err := ms.svc.ExecuteStatement(graphName, statement)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal result"), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (ms *MCPServer) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphName, _ := request.GetArguments()["graph"].(string)

	d3, err := ms.svc.Export(graphName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(d3, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal graph"), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
