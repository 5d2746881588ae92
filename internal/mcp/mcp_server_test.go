package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeyadhassan/codepulse/core/metrics"
	"github.com/zeyadhassan/codepulse/internal/contract"
	mcp_internal "github.com/zeyadhassan/codepulse/internal/mcp"
	"github.com/zeyadhassan/codepulse/schema"
)

const sampleJS = `function check(a, b) {
  if (a && b) {
    return 1;
  }
  for (let i = 0; i < a; i++) {
    if (i > b) {
      return i;
    }
  }
  return 0;
}
`

func setup(t *testing.T) (string, *contract.Config, *metrics.Collector) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte(sampleJS), 0o644))

	cfg := &contract.Config{
		WorkspacePath:       root,
		ComplexityThreshold: contract.DefaultComplexityThreshold,
		DuplicationMinLines: contract.DefaultDuplicationMinLines,
		ResultLimit:         contract.DefaultResultLimit,
		AutoRecord:          true,
	}
	return root, cfg, metrics.NewCollector(nil, root)
}

func call(t *testing.T, cfg *contract.Config, c *metrics.Collector, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, c)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestAnalyzeFile(t *testing.T) {
	_, cfg, c := setup(t)

	res := call(t, cfg, c, "analyze_file", map[string]any{"path": "app.js"})
	require.False(t, res.IsError, text(res))

	var out struct {
		Language schema.Language       `json:"language"`
		Recorded bool                  `json:"recorded"`
		Result   schema.AnalysisResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
	assert.Equal(t, schema.JavaScript, out.Language)
	assert.True(t, out.Recorded)
	assert.Equal(t, 12, out.Result.Metrics.TotalLines)

	fm, ok := c.GetFileMetrics("app.js")
	require.True(t, ok)
	assert.Equal(t, out.Result.OverallHealth, fm.HealthScore)
}

func TestAnalyzeFile_NoRecord(t *testing.T) {
	_, cfg, c := setup(t)

	res := call(t, cfg, c, "analyze_file", map[string]any{"path": "app.js", "record": false})
	require.False(t, res.IsError)
	assert.Contains(t, text(res), `"recorded": false`)
	assert.Empty(t, c.GetProjectMetrics().Files)
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	_, cfg, c := setup(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"analyze_file missing path", "analyze_file", map[string]any{}, "path is required"},
		{"analyze_file unreadable", "analyze_file", map[string]any{"path": "missing.js"}, "analysis failed"},
		{"suggest_fixes missing path", "suggest_fixes", map[string]any{"path": ""}, "path is required"},
		{"suggest_fixes unreadable", "suggest_fixes", map[string]any{"path": "missing.js"}, "failed to read"},
		{"get_file_metrics untracked", "get_file_metrics", map[string]any{"path": "app.js"}, "no metrics recorded for app.js"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, cfg, c, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(res), tt.want)
		})
	}
}

func TestMetricsTools(t *testing.T) {
	root, cfg, c := setup(t)
	require.False(t, call(t, cfg, c, "analyze_file", map[string]any{"path": filepath.Join(root, "app.js")}).IsError)

	t.Run("get_project_metrics", func(t *testing.T) {
		res := call(t, cfg, c, "get_project_metrics", map[string]any{"limit": 5.0})
		require.False(t, res.IsError)
		assert.Contains(t, text(res), `"path": "app.js"`)
		assert.Contains(t, text(res), `"code_changes": 1`)
	})

	t.Run("get_history", func(t *testing.T) {
		res := call(t, cfg, c, "get_history", nil)
		require.False(t, res.IsError)
		var history []schema.HistoricalMetric
		require.NoError(t, json.Unmarshal([]byte(text(res)), &history))
		require.Len(t, history, 1)
		assert.Equal(t, 1, history[0].CodeChanges)
	})

	t.Run("get_file_metrics single", func(t *testing.T) {
		res := call(t, cfg, c, "get_file_metrics", map[string]any{"path": "app.js"})
		require.False(t, res.IsError)
		var fm schema.FileMetrics
		require.NoError(t, json.Unmarshal([]byte(text(res)), &fm))
		assert.Equal(t, 12, fm.TotalLines)
	})

	t.Run("get_file_metrics list", func(t *testing.T) {
		res := call(t, cfg, c, "get_file_metrics", nil)
		require.False(t, res.IsError)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(text(res)), "["))
	})
}

func TestSuggestFixes(t *testing.T) {
	root, cfg, c := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "style.js"), []byte("let total=1;\n"), 0o644))

	res := call(t, cfg, c, "suggest_fixes", map[string]any{"path": "style.js"})
	require.False(t, res.IsError, text(res))

	var suggestions []schema.Suggestion
	require.NoError(t, json.Unmarshal([]byte(text(res)), &suggestions))
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Add spaces around operators", suggestions[0].Title)
}

func TestNilCollector(t *testing.T) {
	_, cfg, _ := setup(t)
	for _, name := range []string{"get_project_metrics", "get_history", "get_file_metrics"} {
		t.Run(name, func(t *testing.T) {
			res := call(t, cfg, nil, name, nil)
			assert.True(t, res.IsError)
			assert.Contains(t, text(res), "metrics store is not available")
		})
	}
}
