package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/zeyadhassan/codepulse/internal/parquet"
	"github.com/zeyadhassan/codepulse/schema"
)

// ExecuteMetricsExport writes tracked file metrics and daily history to Parquet files
// named outputFile + ".file_metrics.parquet" and outputFile + ".history.parquet".
func ExecuteMetricsExport(w io.Writer, outputFile string, project schema.ProjectMetrics, history []schema.HistoricalMetric) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if len(project.Files) == 0 && len(history) == 0 {
		return errors.New("no metrics found to export")
	}

	_, _ = fmt.Fprintf(w, "Tracked files: %d\n", len(project.Files))
	_, _ = fmt.Fprintf(w, "History days: %d\n", len(history))

	fileRows := parquet.ConvertFileMetrics(project.Files)
	fileMetricsFile := outputFile + ".file_metrics.parquet"
	if err := parquet.WriteFileMetricsParquet(fileRows, fileMetricsFile); err != nil {
		return fmt.Errorf("failed to write file metrics: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file metric records to: %s\n", len(fileRows), fileMetricsFile)

	historyRows := parquet.ConvertHistory(history)
	historyFile := outputFile + ".history.parquet"
	if err := parquet.WriteHistoryParquet(historyRows, historyFile); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d history records to: %s\n", len(historyRows), historyFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
