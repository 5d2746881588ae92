package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/zeyadhassan/codepulse/core"
	"github.com/zeyadhassan/codepulse/core/metrics"
	"github.com/zeyadhassan/codepulse/core/suggest"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg   *contract.Config
	collector *metrics.Collector
	analyzer  *core.CodeAnalyzer
}

// analyzeFileOutput is the JSON payload of analyze_file.
type analyzeFileOutput struct {
	Path     string                `json:"path"`
	Language schema.Language       `json:"language"`
	Label    schema.HealthBand     `json:"label"`
	Recorded bool                  `json:"recorded"`
	Result   schema.AnalysisResult `json:"result"`
}

// resolvePath anchors relative paths at the workspace.
func (h *toolHandler) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || h.baseCfg.WorkspacePath == "" {
		return p
	}
	return filepath.Join(h.baseCfg.WorkspacePath, p)
}

func (h *toolHandler) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := h.resolvePath(request.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	record := request.GetBool("record", h.baseCfg.AutoRecord)

	fa := core.AnalyzeFile(core.WithSuppressProgress(ctx), h.analyzer, path)
	if fa.Err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", fa.Err)), nil
	}

	recorded := false
	if record && h.collector != nil && !fa.Result.IsEmpty() {
		h.collector.RecordMetrics(path, fa.Result)
		recorded = true
	}

	return jsonResult(analyzeFileOutput{
		Path:     fa.Path,
		Language: fa.Language,
		Label:    schema.GetHealthBand(fa.Result.OverallHealth),
		Recorded: recorded,
		Result:   fa.Result,
	})
}

func (h *toolHandler) handleSuggestFixes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := h.resolvePath(request.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", path, err)), nil
	}
	text := string(data)
	result := h.analyzer.Analyze(ctx, text, path, core.DetectLanguage(path, data))

	return jsonResult(suggest.Suggest(text, result))
}

func (h *toolHandler) handleGetProjectMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.collector == nil {
		return mcp.NewToolResultError("metrics store is not available"), nil
	}
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}

	p := h.collector.GetProjectMetrics()
	return jsonResult(struct {
		schema.ProjectMetrics
		Label schema.HealthBand            `json:"label"`
		Files []schema.EnrichedFileMetrics `json:"file_metrics"`
	}{
		ProjectMetrics: p,
		Label:          schema.GetHealthBand(p.OverallHealth),
		Files:          schema.EnrichFiles(p.Files, limit),
	})
}

func (h *toolHandler) handleGetHistory(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.collector == nil {
		return mcp.NewToolResultError("metrics store is not available"), nil
	}
	return jsonResult(h.collector.GetHistoricalMetrics())
}

func (h *toolHandler) handleGetFileMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.collector == nil {
		return mcp.NewToolResultError("metrics store is not available"), nil
	}

	if p := request.GetString("path", ""); p != "" {
		fm, ok := h.collector.GetFileMetrics(h.resolvePath(p))
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no metrics recorded for %s", p)), nil
		}
		return jsonResult(fm)
	}

	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}
	return jsonResult(schema.EnrichFiles(h.collector.GetProjectMetrics().Files, limit))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
