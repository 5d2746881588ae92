package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// WriteAnalysisResults outputs per-file analysis results, dispatching on the output format.
func WriteAnalysisResults(results []schema.FileAnalysis, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg,
		func(w io.Writer) error { return writeAnalysisJSON(w, results) },
		func(w io.Writer) error { return writeAnalysisCSV(w, results, fmtFloat, intFmt) },
		func(w io.Writer) error { return writeAnalysisTable(w, results, cfg, fmtFloat, intFmt, duration) },
	)
}

// writeAnalysisTable generates and writes the human-readable table.
func writeAnalysisTable(w io.Writer, results []schema.FileAnalysis, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"#", "Path", "Lang", "Health", "Label", "Lines", "Max CC", "Dup %", "Style"}
	if cfg.Explain {
		headers = append(headers, "Issues")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	totalLines := 0
	failed := 0
	var data [][]string
	for i, r := range results {
		m := r.Result.Metrics
		totalLines += m.TotalLines
		if r.Err != nil {
			failed++
		}
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.Path, pathWidth),
			string(r.Language),
			fmtFloat(r.Result.OverallHealth),
			healthLabel(cfg, r.Result.OverallHealth),
			fmt.Sprintf(intFmt, m.TotalLines),
			fmt.Sprintf(intFmt, m.MaxComplexity),
			fmtFloat(m.DuplicationPercentage),
			fmt.Sprintf(intFmt, len(r.Result.StyleIssues)),
		}
		if cfg.Explain {
			row = append(row, summarizeIssues(r))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Explain {
		for _, r := range results {
			if err := writeIssueDetails(w, r); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "Analyzed %d files (%s lines, %d unreadable)\n", len(results), humanize.Comma(int64(totalLines)), failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Store backend: %s\n", duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// summarizeIssues condenses the issue counts into one cell.
func summarizeIssues(r schema.FileAnalysis) string {
	if r.Err != nil {
		return "error"
	}
	return fmt.Sprintf("cx:%d dup:%d style:%d",
		len(r.Result.ComplexityIssues), len(r.Result.DuplicationIssues), len(r.Result.StyleIssues))
}

// writeIssueDetails lists every issue of a file with 1-based line numbers.
func writeIssueDetails(w io.Writer, r schema.FileAnalysis) error {
	if r.Err != nil {
		_, err := fmt.Fprintf(w, "\n%s\n  error: %v\n", r.Path, r.Err)
		return err
	}
	if r.Result.IssueCount() == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", r.Path)
	for _, is := range r.Result.ComplexityIssues {
		fmt.Fprintf(&b, "  L%-5d complexity   %s\n", is.Line+1, is.Message)
	}
	for _, is := range r.Result.DuplicationIssues {
		loc := ""
		if len(is.DuplicateLocations) > 0 {
			d := is.DuplicateLocations[0]
			loc = fmt.Sprintf(" (again at L%d-%d)", d.StartLine+1, d.EndLine+1)
		}
		fmt.Fprintf(&b, "  L%-5d duplication  %s%s\n", is.StartLine+1, is.Message, loc)
	}
	for _, is := range r.Result.StyleIssues {
		fmt.Fprintf(&b, "  L%-5d %-12s %s\n", is.Line+1, "style", is.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeAnalysisCSV writes the analysis results in CSV format.
func writeAnalysisCSV(w io.Writer, results []schema.FileAnalysis, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"path", "language", "health", "label",
		"total_lines", "code_lines", "comment_lines",
		"functions", "avg_complexity", "max_complexity", "duplication_pct",
		"complexity_issues", "duplication_issues", "style_issues", "error",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			m := r.Result.Metrics
			errText := ""
			if r.Err != nil {
				errText = r.Err.Error()
			}
			rec := []string{
				r.Path,
				string(r.Language),
				fmtFloat(r.Result.OverallHealth),
				contract.GetPlainLabel(r.Result.OverallHealth),
				fmt.Sprintf(intFmt, m.TotalLines),
				fmt.Sprintf(intFmt, m.CodeLines),
				fmt.Sprintf(intFmt, m.CommentLines),
				fmt.Sprintf(intFmt, m.FunctionCount),
				fmtFloat(m.AverageComplexity),
				fmt.Sprintf(intFmt, m.MaxComplexity),
				fmtFloat(m.DuplicationPercentage),
				fmt.Sprintf(intFmt, len(r.Result.ComplexityIssues)),
				fmt.Sprintf(intFmt, len(r.Result.DuplicationIssues)),
				fmt.Sprintf(intFmt, len(r.Result.StyleIssues)),
				errText,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeAnalysisJSON writes the analysis results in JSON format.
func writeAnalysisJSON(w io.Writer, results []schema.FileAnalysis) error {
	type jsonAnalysis struct {
		Path      string                `json:"path"`
		Language  schema.Language       `json:"language"`
		Label     string                `json:"label"`
		ElapsedMs int64                 `json:"elapsed_ms"`
		Error     string                `json:"error,omitempty"`
		Result    schema.AnalysisResult `json:"result"`
	}

	output := make([]jsonAnalysis, len(results))
	for i, r := range results {
		output[i] = jsonAnalysis{
			Path:      r.Path,
			Language:  r.Language,
			Label:     contract.GetPlainLabel(r.Result.OverallHealth),
			ElapsedMs: r.Elapsed.Milliseconds(),
			Result:    r.Result,
		}
		if r.Err != nil {
			output[i].Error = r.Err.Error()
		}
	}
	return writeJSON(w, output)
}
