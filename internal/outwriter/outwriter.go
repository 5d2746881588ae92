// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnalysis prints per-file analysis results using the configured output format.
func (ow *OutWriter) WriteAnalysis(results []schema.FileAnalysis, cfg *contract.Config, duration time.Duration) error {
	return WriteAnalysisResults(results, cfg, duration)
}

// WriteProject prints the project aggregate using the configured output format.
func (ow *OutWriter) WriteProject(project schema.ProjectMetrics, cfg *contract.Config) error {
	return WriteProjectMetrics(project, cfg)
}

// WriteHistory prints the daily health history using the configured output format.
func (ow *OutWriter) WriteHistory(history []schema.HistoricalMetric, cfg *contract.Config) error {
	return WriteHistoricalMetrics(history, cfg)
}

// WriteFiles prints the tracked file metrics using the configured output format.
func (ow *OutWriter) WriteFiles(files map[string]schema.FileMetrics, cfg *contract.Config) error {
	return WriteFileMetrics(files, cfg)
}

// WriteSuggestions prints fix suggestions for one file using the configured output format.
func (ow *OutWriter) WriteSuggestions(path string, suggestions []schema.Suggestion, cfg *contract.Config) error {
	return WriteSuggestionList(path, suggestions, cfg)
}

// WriteHealthModel prints the health score definition using the configured output format.
func (ow *OutWriter) WriteHealthModel(model schema.HealthModel, cfg *contract.Config) error {
	return WriteHealthModelDefinition(model, cfg)
}

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Health + Label + metric columns with borders/padding
	baseWidth := 70

	// Explain adds the issue summary column
	if cfg.Explain {
		baseWidth += 30
	}

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
