// Package parquet provides row types and writers for exporting codepulse
// metrics to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/zeyadhassan/codepulse/schema"
)

// FileMetricsRow is one tracked file's latest metrics.
type FileMetricsRow struct {
	// FilePath is the workspace-relative path of the file
	FilePath string `parquet:"file_path,snappy"`

	// LastUpdated is when the file was last recorded
	LastUpdated time.Time `parquet:"last_updated,snappy"`

	HealthScore float64 `parquet:"health_score,snappy"`
	HealthBand  string  `parquet:"health_band,snappy"`

	AverageComplexity float64 `parquet:"average_complexity,snappy"`
	MaxComplexity     int32   `parquet:"max_complexity,snappy"`
	ComplexityCount   int32   `parquet:"complexity_count,snappy"`

	DuplicationPercentage float64 `parquet:"duplication_percentage,snappy"`
	DuplicatedLines       int32   `parquet:"duplicated_lines,snappy"`

	StyleIssues  int32 `parquet:"style_issues,snappy"`
	TotalLines   int32 `parquet:"total_lines,snappy"`
	CodeLines    int32 `parquet:"code_lines,snappy"`
	CommentLines int32 `parquet:"comment_lines,snappy"`

	// CommentRatio is comment lines over code lines (nullable when there is no code)
	CommentRatio *float64 `parquet:"comment_ratio,optional,snappy"`
}

// HistoryRow is one day of project health history.
type HistoryRow struct {
	Day           time.Time `parquet:"day,snappy"`
	OverallHealth float64   `parquet:"overall_health,snappy"`
	CodeChanges   int32     `parquet:"code_changes,snappy"`
}

// ConvertFileMetrics flattens the tracked files into rows ordered by path.
func ConvertFileMetrics(files map[string]schema.FileMetrics) []FileMetricsRow {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	rows := make([]FileMetricsRow, 0, len(paths))
	for _, p := range paths {
		fm := files[p]
		row := FileMetricsRow{
			FilePath:              p,
			LastUpdated:           time.UnixMilli(fm.LastUpdated),
			HealthScore:           fm.HealthScore,
			HealthBand:            string(schema.GetHealthBand(fm.HealthScore)),
			AverageComplexity:     fm.Complexity.Average,
			MaxComplexity:         int32(fm.Complexity.Max),
			ComplexityCount:       int32(fm.Complexity.Count),
			DuplicationPercentage: fm.Duplication.Percentage,
			DuplicatedLines:       int32(fm.Duplication.LineCount),
			StyleIssues:           int32(fm.StyleIssues),
			TotalLines:            int32(fm.TotalLines),
			CodeLines:             int32(fm.CodeLines),
			CommentLines:          int32(fm.CommentLines),
		}
		if fm.CodeLines > 0 {
			ratio := float64(fm.CommentLines) / float64(fm.CodeLines)
			row.CommentRatio = &ratio
		}
		rows = append(rows, row)
	}
	return rows
}

// ConvertHistory maps history entries to rows in their stored order.
func ConvertHistory(history []schema.HistoricalMetric) []HistoryRow {
	rows := make([]HistoryRow, len(history))
	for i, h := range history {
		rows[i] = HistoryRow{
			Day:           time.UnixMilli(h.Timestamp),
			OverallHealth: h.OverallHealth,
			CodeChanges:   int32(h.CodeChanges),
		}
	}
	return rows
}

// WriteFileMetricsParquet writes file metrics rows to a Parquet file.
func WriteFileMetricsParquet(data []FileMetricsRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteHistoryParquet writes history rows to a Parquet file.
func WriteHistoryParquet(data []HistoryRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows writes rows with a schema inferred from the struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
