// Package dashboard renders recorded project metrics as a standalone HTML page.
package dashboard

import (
	"io"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeyadhassan/codepulse/schema"
)

const (
	pageTitle        = "codepulse dashboard"
	chartWidth       = "1000px"
	chartHeight      = "420px"
	emptyChartHeight = "240px"
	dayFormat        = "2006-01-02"
	topFilesLimit    = 15
	xAxisRotate      = 45

	colorGood = "#2e7d32"
	colorFair = "#f9a825"
	colorPoor = "#c62828"
	colorLine = "#1565c0"
)

// Render writes a page with the health history, the complexity distribution
// and the least healthy tracked files.
func Render(w io.Writer, project schema.ProjectMetrics, history []schema.HistoricalMetric) error {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		buildHistoryChart(history),
		buildDistributionChart(project.ComplexityDistribution),
		buildFilesChart(project.Files),
	)
	return page.Render(w)
}

func buildHistoryChart(history []schema.HistoricalMetric) *charts.Line {
	const title = "Health History"
	if len(history) == 0 {
		return createEmptyLine(title)
	}

	labels := make([]string, len(history))
	data := make([]opts.LineData, len(history))
	for i, h := range history {
		labels[i] = time.UnixMilli(h.Timestamp).Format(dayFormat)
		data[i] = opts.LineData{Value: h.OverallHealth}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Overall health per day, most recent last"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Health", Min: 0, Max: 100}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
	)
	line.SetXAxis(labels).AddSeries("Health", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorLine}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
	)
	return line
}

func buildDistributionChart(d schema.ComplexityDistribution) *charts.Bar {
	const title = "Complexity Distribution"
	if d.Total() == 0 {
		return createEmptyBar(title)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Functions per cyclomatic complexity bucket"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Functions"}),
	)
	bar.SetXAxis([]string{"Low (1-5)", "Medium (6-10)", "High (11-20)", "Very high (21+)"}).
		AddSeries("Functions", []opts.BarData{
			{Value: d.Low, ItemStyle: &opts.ItemStyle{Color: colorGood}},
			{Value: d.Medium, ItemStyle: &opts.ItemStyle{Color: colorFair}},
			{Value: d.High, ItemStyle: &opts.ItemStyle{Color: colorPoor}},
			{Value: d.VeryHigh, ItemStyle: &opts.ItemStyle{Color: colorPoor}},
		})
	return bar
}

// buildFilesChart plots the least healthy files, colored by health band.
func buildFilesChart(files map[string]schema.FileMetrics) *charts.Bar {
	const title = "Least Healthy Files"
	if len(files) == 0 {
		return createEmptyBar(title)
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		hi, hj := files[paths[i]].HealthScore, files[paths[j]].HealthScore
		if hi != hj {
			return hi < hj
		}
		return paths[i] < paths[j]
	})
	if len(paths) > topFilesLimit {
		paths = paths[:topFilesLimit]
	}

	data := make([]opts.BarData, len(paths))
	for i, p := range paths {
		score := files[p].HealthScore
		data[i] = opts.BarData{Name: p, Value: score, ItemStyle: &opts.ItemStyle{Color: bandColor(score)}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Tracked files ranked by health score"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Health", Min: 0, Max: 100}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
	)
	bar.SetXAxis(paths).AddSeries("Health", data)
	return bar
}

func bandColor(score float64) string {
	switch schema.GetHealthBand(score) {
	case schema.GoodHealth:
		return colorGood
	case schema.FairHealth:
		return colorFair
	default:
		return colorPoor
	}
}

func createEmptyLine(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: emptyChartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "No data"}),
	)
	return line
}

func createEmptyBar(title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: emptyChartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "No data"}),
	)
	return bar
}
