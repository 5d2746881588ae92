// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/zeyadhassan/codepulse/core"
	"github.com/zeyadhassan/codepulse/core/metrics"
	"github.com/zeyadhassan/codepulse/internal/contract"
)

// NewMCPServer initializes and configures the codepulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, collector *metrics.Collector) *server.MCPServer {
	s := server.NewMCPServer(
		"codepulse Health Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:   baseCfg,
		collector: collector,
		analyzer:  core.NewCodeAnalyzer(core.OptionsFromConfig(baseCfg)),
	}

	// --- 1. Tool: analyze_file ---
	s.AddTool(mcp.NewTool("analyze_file",
		mcp.WithDescription("Analyze one source file for complexity, duplication and style issues and compute its health score."),
		mcp.WithString("path", mcp.Description("File path, absolute or relative to the workspace."), mcp.Required()),
		mcp.WithBoolean("record", mcp.Description("Record the result into the project metrics. Defaults to the auto-record setting.")),
	), h.handleAnalyzeFile)

	// --- 2. Tool: suggest_fixes ---
	s.AddTool(mcp.NewTool("suggest_fixes",
		mcp.WithDescription("Analyze one source file and return fix suggestions, including line edits where one is known."),
		mcp.WithString("path", mcp.Description("File path, absolute or relative to the workspace."), mcp.Required()),
	), h.handleSuggestFixes)

	// --- 3. Tool: get_project_metrics ---
	s.AddTool(mcp.NewTool("get_project_metrics",
		mcp.WithDescription("Return the recorded project health aggregate with tracked files ranked from least to most healthy."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned.")),
	), h.handleGetProjectMetrics)

	// --- 4. Tool: get_history ---
	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("Return the daily project health history, oldest first."),
	), h.handleGetHistory)

	// --- 5. Tool: get_file_metrics ---
	s.AddTool(mcp.NewTool("get_file_metrics",
		mcp.WithDescription("Return the recorded metrics of one file, or of all tracked files when no path is given."),
		mcp.WithString("path", mcp.Description("File path, absolute or relative to the workspace.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned when listing.")),
	), h.handleGetFileMetrics)

	return s
}

// StartMCPServer starts the codepulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, collector *metrics.Collector) error {
	s := NewMCPServer(baseCfg, collector)
	return server.ServeStdio(s)
}
