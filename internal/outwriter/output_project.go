package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// WriteProjectMetrics outputs the project aggregate, dispatching on the output format.
func WriteProjectMetrics(project schema.ProjectMetrics, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg,
		func(w io.Writer) error { return writeProjectJSON(w, project, cfg.ResultLimit) },
		func(w io.Writer) error { return writeProjectCSV(w, project, fmtFloat, intFmt) },
		func(w io.Writer) error { return writeProjectText(w, project, cfg, fmtFloat, intFmt) },
	)
}

// writeProjectText prints a summary block followed by the least healthy files.
func writeProjectText(w io.Writer, p schema.ProjectMetrics, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	if len(p.Files) == 0 {
		_, err := fmt.Fprintln(w, "No metrics recorded yet. Run 'codepulse analyze' first.")
		return err
	}

	d := p.ComplexityDistribution
	lines := []string{
		"📊 Project Health",
		"=================",
		fmt.Sprintf("Overall health:       %s (%s)", fmtFloat(p.OverallHealth), healthLabel(cfg, p.OverallHealth)),
		fmt.Sprintf("Tracked files:        %s", humanize.Comma(int64(len(p.Files)))),
		fmt.Sprintf("Average complexity:   %s", fmtFloat(p.AverageComplexity)),
		fmt.Sprintf("Duplication:          %s%%", fmtFloat(p.DuplicationPercentage)),
		fmt.Sprintf("Code/comment ratio:   %s", fmtFloat(p.CodeToCommentRatio)),
		fmt.Sprintf("Recorded changes:     "+intFmt, p.CodeChanges),
		fmt.Sprintf("Last updated:         %s", humanize.Time(time.UnixMilli(p.Timestamp))),
		fmt.Sprintf("Complexity buckets:   low "+intFmt+" | medium "+intFmt+" | high "+intFmt+" | very high "+intFmt,
			d.Low, d.Medium, d.High, d.VeryHigh),
		"",
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	return writeFileMetricsTable(w, schema.EnrichFiles(p.Files, cfg.ResultLimit), cfg, fmtFloat, intFmt)
}

// writeProjectCSV writes the aggregate as metric/value pairs.
func writeProjectCSV(w io.Writer, p schema.ProjectMetrics, fmtFloat func(float64) string, intFmt string) error {
	d := p.ComplexityDistribution
	rows := [][]string{
		{"overall_health", fmtFloat(p.OverallHealth)},
		{"label", contract.GetPlainLabel(p.OverallHealth)},
		{"tracked_files", strconv.Itoa(len(p.Files))},
		{"average_complexity", fmtFloat(p.AverageComplexity)},
		{"duplication_pct", fmtFloat(p.DuplicationPercentage)},
		{"code_comment_ratio", fmtFloat(p.CodeToCommentRatio)},
		{"code_changes", fmt.Sprintf(intFmt, p.CodeChanges)},
		{"complexity_low", fmt.Sprintf(intFmt, d.Low)},
		{"complexity_medium", fmt.Sprintf(intFmt, d.Medium)},
		{"complexity_high", fmt.Sprintf(intFmt, d.High)},
		{"complexity_very_high", fmt.Sprintf(intFmt, d.VeryHigh)},
		{"timestamp", time.UnixMilli(p.Timestamp).Format(time.RFC3339)},
	}
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		return cw.WriteAll(rows)
	})
}

// writeProjectJSON writes the aggregate with its files ranked by health.
func writeProjectJSON(w io.Writer, p schema.ProjectMetrics, limit int) error {
	type jsonProject struct {
		Timestamp              int64                         `json:"timestamp"`
		OverallHealth          float64                       `json:"overall_health"`
		Label                  string                        `json:"label"`
		ComplexityDistribution schema.ComplexityDistribution `json:"complexity_distribution"`
		AverageComplexity      float64                       `json:"average_complexity"`
		DuplicationPercentage  float64                       `json:"duplication_percentage"`
		CodeToCommentRatio     float64                       `json:"code_comment_ratio"`
		CodeChanges            int                           `json:"code_changes"`
		Files                  []schema.EnrichedFileMetrics  `json:"files"`
	}
	return writeJSON(w, jsonProject{
		Timestamp:              p.Timestamp,
		OverallHealth:          p.OverallHealth,
		Label:                  contract.GetPlainLabel(p.OverallHealth),
		ComplexityDistribution: p.ComplexityDistribution,
		AverageComplexity:      p.AverageComplexity,
		DuplicationPercentage:  p.DuplicationPercentage,
		CodeToCommentRatio:     p.CodeToCommentRatio,
		CodeChanges:            p.CodeChanges,
		Files:                  schema.EnrichFiles(p.Files, limit),
	})
}

// WriteFileMetrics outputs tracked files ranked from least to most healthy.
func WriteFileMetrics(files map[string]schema.FileMetrics, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	limit := cfg.ResultLimit
	if cfg.All {
		limit = 0
	}
	enriched := schema.EnrichFiles(files, limit)
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, enriched) },
		func(w io.Writer) error { return writeFileMetricsCSV(w, enriched, fmtFloat, intFmt) },
		func(w io.Writer) error {
			if err := writeFileMetricsTable(w, enriched, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Showing %d of %d tracked files\n", len(enriched), len(files))
			return err
		},
	)
}

// writeFileMetricsTable renders tracked files as a table.
func writeFileMetricsTable(w io.Writer, files []schema.EnrichedFileMetrics, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Health", "Label", "Avg CC", "Max CC", "Dup %", "Style", "Lines", "Updated"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	data := make([][]string, 0, len(files))
	for _, f := range files {
		data = append(data, []string{
			strconv.Itoa(f.Rank),
			contract.TruncatePath(f.Path, pathWidth),
			fmtFloat(f.HealthScore),
			healthLabel(cfg, f.HealthScore),
			fmtFloat(f.Complexity.Average),
			fmt.Sprintf(intFmt, f.Complexity.Max),
			fmtFloat(f.Duplication.Percentage),
			fmt.Sprintf(intFmt, f.StyleIssues),
			humanize.Comma(int64(f.TotalLines)),
			humanize.Time(time.UnixMilli(f.LastUpdated)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeFileMetricsCSV writes tracked files in CSV format.
func writeFileMetricsCSV(w io.Writer, files []schema.EnrichedFileMetrics, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank", "path", "health", "label",
		"avg_complexity", "max_complexity", "functions",
		"duplication_pct", "duplicated_lines", "style_issues",
		"total_lines", "code_lines", "comment_lines", "last_updated",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range files {
			rec := []string{
				strconv.Itoa(f.Rank),
				f.Path,
				fmtFloat(f.HealthScore),
				string(f.Label),
				fmtFloat(f.Complexity.Average),
				fmt.Sprintf(intFmt, f.Complexity.Max),
				fmt.Sprintf(intFmt, f.Complexity.Count),
				fmtFloat(f.Duplication.Percentage),
				fmt.Sprintf(intFmt, f.Duplication.LineCount),
				fmt.Sprintf(intFmt, f.StyleIssues),
				fmt.Sprintf(intFmt, f.TotalLines),
				fmt.Sprintf(intFmt, f.CodeLines),
				fmt.Sprintf(intFmt, f.CommentLines),
				time.UnixMilli(f.LastUpdated).Format(time.RFC3339),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
