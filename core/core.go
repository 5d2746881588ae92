// Package core has the analysis pipeline: the code analyzer, the health score,
// language detection, file collection and the multi-file worker pool.
package core

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zeyadhassan/codepulse/core/complexity"
	"github.com/zeyadhassan/codepulse/core/duplication"
	"github.com/zeyadhassan/codepulse/core/style"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// MaxTextChars is the longest input, in characters, that is analyzed.
// Longer texts yield the empty result.
const MaxTextChars = 500_000

// AnalyzerOptions holds the heuristic thresholds.
type AnalyzerOptions struct {
	ComplexityThreshold int
	DuplicationMinLines int
}

// DefaultAnalyzerOptions returns the thresholds used when nothing is configured.
func DefaultAnalyzerOptions() AnalyzerOptions {
	return AnalyzerOptions{
		ComplexityThreshold: contract.DefaultComplexityThreshold,
		DuplicationMinLines: contract.DefaultDuplicationMinLines,
	}
}

// OptionsFromConfig extracts analyzer options from a validated config.
func OptionsFromConfig(cfg *contract.Config) AnalyzerOptions {
	return AnalyzerOptions{
		ComplexityThreshold: cfg.ComplexityThreshold,
		DuplicationMinLines: cfg.DuplicationMinLines,
	}
}

// CodeAnalyzer runs the three heuristic analyzers and merges their output.
// It holds no mutable state, so one instance may serve many goroutines.
type CodeAnalyzer struct {
	opts AnalyzerOptions
}

// NewCodeAnalyzer returns an analyzer with the given options.
func NewCodeAnalyzer(opts AnalyzerOptions) *CodeAnalyzer {
	return &CodeAnalyzer{opts: opts}
}

// Options returns the analyzer's thresholds.
func (a *CodeAnalyzer) Options() AnalyzerOptions {
	return a.opts
}

// Analyze produces the full result for one text. It never fails: oversized
// input, a cancelled context or a panic all yield the empty result.
func (a *CodeAnalyzer) Analyze(ctx context.Context, text, filePath string, lang schema.Language) (result schema.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("analysis aborted", "path", filePath, "panic", r)
			result = schema.EmptyAnalysisResult()
		}
	}()

	if len(text) > MaxTextChars && utf8.RuneCountInString(text) > MaxTextChars {
		slog.Debug("skipping oversized text", "path", filePath, "bytes", len(text))
		return schema.EmptyAnalysisResult()
	}
	if ctx.Err() != nil {
		return schema.EmptyAnalysisResult()
	}

	complexityIssues := complexity.Calculate(text, lang, a.opts.ComplexityThreshold)
	duplicationIssues := duplication.Detect(text, filePath, a.opts.DuplicationMinLines)
	styleIssues := style.Analyze(text, lang)

	metrics := countLines(text)
	metrics.FunctionCount, metrics.AverageComplexity, metrics.MaxComplexity = summarizeComplexity(complexityIssues)
	metrics.DuplicationPercentage = duplicationPercentage(duplicationIssues, metrics.TotalLines)

	return schema.AnalysisResult{
		OverallHealth:     computeHealth(complexityIssues, metrics.DuplicationPercentage, len(styleIssues)),
		ComplexityIssues:  complexityIssues,
		DuplicationIssues: duplicationIssues,
		StyleIssues:       styleIssues,
		Metrics:           metrics,
	}
}

// countLines classifies every line as code, comment or blank in one forward scan.
// Only C-style comment markers are recognized.
func countLines(text string) schema.CodeMetrics {
	lines := strings.Split(text, "\n")
	m := schema.CodeMetrics{TotalLines: len(lines)}

	inBlock := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case inBlock:
			m.CommentLines++
			if strings.Contains(line, "*/") {
				inBlock = false
			}
		case strings.HasPrefix(line, "//"):
			m.CommentLines++
		case strings.HasPrefix(line, "/*"):
			m.CommentLines++
			if !strings.Contains(line, "*/") {
				inBlock = true
			}
		case line != "":
			m.CodeLines++
		}
	}
	return m
}

// summarizeComplexity returns the count, mean and max of the reported complexities.
func summarizeComplexity(issues []schema.ComplexityIssue) (count int, avg float64, maxC int) {
	if len(issues) == 0 {
		return 0, 0, 0
	}
	total := 0
	for _, is := range issues {
		total += is.Complexity
		maxC = max(maxC, is.Complexity)
	}
	return len(issues), float64(total) / float64(len(issues)), maxC
}

// duplicationPercentage is the share of lines covered by first occurrences.
func duplicationPercentage(issues []schema.DuplicationIssue, totalLines int) float64 {
	if totalLines == 0 {
		return 0
	}
	dup := 0
	for _, is := range issues {
		dup += is.Span()
	}
	return float64(dup) / float64(totalLines) * 100
}
