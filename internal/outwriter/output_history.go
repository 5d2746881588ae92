package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

const dayFormat = "2006-01-02"

// WriteHistoricalMetrics outputs the daily health history, oldest first.
func WriteHistoricalMetrics(history []schema.HistoricalMetric, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg,
		func(w io.Writer) error { return writeHistoryJSON(w, history) },
		func(w io.Writer) error { return writeHistoryCSV(w, history, fmtFloat, intFmt) },
		func(w io.Writer) error { return writeHistoryTable(w, history, cfg, fmtFloat, intFmt) },
	)
}

func writeHistoryTable(w io.Writer, history []schema.HistoricalMetric, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No history recorded yet.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "Health", "Label", "Trend", "Changes", "When"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(history))
	for i, h := range history {
		day := time.UnixMilli(h.Timestamp)
		data = append(data, []string{
			day.Format(dayFormat),
			fmtFloat(h.OverallHealth),
			healthLabel(cfg, h.OverallHealth),
			trend(history, i, fmtFloat),
			fmt.Sprintf(intFmt, h.CodeChanges),
			humanize.Time(day),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d days of history\n", len(history))
	return err
}

// trend formats the health change against the previous entry.
func trend(history []schema.HistoricalMetric, i int, fmtFloat func(float64) string) string {
	if i == 0 {
		return "-"
	}
	delta := history[i].OverallHealth - history[i-1].OverallHealth
	if delta >= 0 {
		return "+" + fmtFloat(delta)
	}
	return fmtFloat(delta)
}

func writeHistoryCSV(w io.Writer, history []schema.HistoricalMetric, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, []string{"day", "timestamp", "health", "label", "code_changes"}, func(cw *csv.Writer) error {
		for _, h := range history {
			rec := []string{
				time.UnixMilli(h.Timestamp).Format(dayFormat),
				fmt.Sprintf("%d", h.Timestamp),
				fmtFloat(h.OverallHealth),
				contract.GetPlainLabel(h.OverallHealth),
				fmt.Sprintf(intFmt, h.CodeChanges),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeHistoryJSON(w io.Writer, history []schema.HistoricalMetric) error {
	type jsonHistory struct {
		Day   string `json:"day"`
		Label string `json:"label"`
		schema.HistoricalMetric
	}
	output := make([]jsonHistory, len(history))
	for i, h := range history {
		output[i] = jsonHistory{
			Day:              time.UnixMilli(h.Timestamp).Format(dayFormat),
			Label:            contract.GetPlainLabel(h.OverallHealth),
			HistoricalMetric: h,
		}
	}
	return writeJSON(w, output)
}
