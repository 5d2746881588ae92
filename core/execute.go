package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zeyadhassan/codepulse/core/metrics"
	"github.com/zeyadhassan/codepulse/core/suggest"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/internal/dashboard"
	"github.com/zeyadhassan/codepulse/internal/outwriter"
	"github.com/zeyadhassan/codepulse/internal/telemetry"
	"github.com/zeyadhassan/codepulse/schema"
)

// DefaultDashboardFile is written when no --output-file is given.
const DefaultDashboardFile = "codepulse-dashboard.html"

// ErrNothingToClear is returned when clear is called without a file or --all.
var ErrNothingToClear = errors.New("specify a file to clear or pass --all")

// ExecuteAnalyze collects files, analyzes them with the worker pool, records
// the results and prints them. It serves as the main entry point for 'analyze'.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, collector *metrics.Collector) error {
	start := time.Now()
	files, err := CollectFiles(cfg, cfg.Paths)
	if err != nil {
		return err
	}

	analyzer := NewCodeAnalyzer(OptionsFromConfig(cfg))
	results := AnalyzeFiles(ctx, cfg, analyzer, files)
	duration := time.Since(start)

	if cfg.AutoRecord {
		recordResults(collector, results)
	}

	if err := outwriter.NewOutWriter().WriteAnalysis(results, cfg, duration); err != nil {
		return err
	}

	if cfg.MetricsFile == "" {
		return nil
	}
	rec := telemetry.NewRecorder()
	rec.ObserveRun(results, duration, time.Now())
	if collector != nil {
		rec.ObserveProject(collector.GetProjectMetrics())
	}
	return rec.WriteTextfile(cfg.MetricsFile)
}

// recordResults stores every readable result. Recording happens on the
// calling goroutine so no two records interleave.
func recordResults(collector *metrics.Collector, results []schema.FileAnalysis) int {
	if collector == nil {
		return 0
	}
	recorded := 0
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("skipping unreadable file", "path", r.Path, "error", r.Err)
			continue
		}
		if r.Result.IsEmpty() {
			continue
		}
		collector.RecordMetrics(r.Path, r.Result)
		recorded++
	}
	slog.Debug("recorded analysis results", "recorded", recorded, "total", len(results))
	return recorded
}

// ExecuteProject prints the recorded project aggregate.
func ExecuteProject(cfg *contract.Config, collector *metrics.Collector) error {
	return outwriter.NewOutWriter().WriteProject(collector.GetProjectMetrics(), cfg)
}

// ExecuteHistory prints the daily health history.
func ExecuteHistory(cfg *contract.Config, collector *metrics.Collector) error {
	return outwriter.NewOutWriter().WriteHistory(collector.GetHistoricalMetrics(), cfg)
}

// ExecuteFiles prints the tracked files from least to most healthy.
func ExecuteFiles(cfg *contract.Config, collector *metrics.Collector) error {
	return outwriter.NewOutWriter().WriteFiles(collector.GetProjectMetrics().Files, cfg)
}

// ExecuteSuggest analyzes one file and prints fix suggestions.
func ExecuteSuggest(ctx context.Context, cfg *contract.Config, path string) error {
	path = resolvePath(cfg, path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	text := string(data)
	analyzer := NewCodeAnalyzer(OptionsFromConfig(cfg))
	result := analyzer.Analyze(ctx, text, path, DetectLanguage(path, data))
	return outwriter.NewOutWriter().WriteSuggestions(path, suggest.Suggest(text, result), cfg)
}

// ExecuteClear forgets one file's metrics, or everything when cfg.All is set.
func ExecuteClear(cfg *contract.Config, collector *metrics.Collector, path string) error {
	if cfg.All {
		collector.ClearAllMetrics()
		fmt.Println("Cleared all metrics and history.")
		return nil
	}
	if path == "" {
		return ErrNothingToClear
	}
	if !collector.ClearFileMetrics(resolvePath(cfg, path)) {
		fmt.Printf("No metrics recorded for %s\n", path)
		return nil
	}
	fmt.Printf("Cleared metrics for %s\n", path)
	return nil
}

// ExecuteDashboard writes the HTML dashboard.
func ExecuteDashboard(cfg *contract.Config, collector *metrics.Collector) error {
	outputFile := cfg.OutputFile
	if outputFile == "" {
		outputFile = DefaultDashboardFile
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create dashboard file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := dashboard.Render(f, collector.GetProjectMetrics(), collector.GetHistoricalMetrics()); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote dashboard to %s\n", outputFile)
	return nil
}

// ExecuteHealthModel prints the health score definition.
func ExecuteHealthModel(cfg *contract.Config) error {
	return outwriter.NewOutWriter().WriteHealthModel(GetHealthModel(), cfg)
}

// resolvePath anchors a relative path at the workspace.
func resolvePath(cfg *contract.Config, path string) string {
	if filepath.IsAbs(path) || cfg.WorkspacePath == "" {
		return path
	}
	return filepath.Join(cfg.WorkspacePath, path)
}
