// Package metrics keeps per-file metrics, the project aggregate and a daily
// health history, persisted through a key-value store.
package metrics

import (
	"encoding/json"
	"log/slog"
	"maps"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// currentStateVersion defines the version of the persisted state schema
const currentStateVersion = 1

// MaxHistory is the number of daily entries kept.
const MaxHistory = 30

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// Collector records analysis results and maintains project-wide aggregates.
// A nil store keeps everything in memory.
type Collector struct {
	mu            sync.Mutex
	store         contract.KVStore
	workspaceRoot string
	now           func() time.Time

	project schema.ProjectMetrics
	history []schema.HistoricalMetric
}

// NewCollector loads the persisted state once. Absent or unreadable state
// starts from zero values.
func NewCollector(store contract.KVStore, workspaceRoot string, opts ...Option) *Collector {
	c := &Collector{
		store:         store,
		workspaceRoot: workspaceRoot,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.load(contract.MetricsKey, &c.project) {
		c.project = schema.NewProjectMetrics(c.now().UnixMilli())
	}
	if c.project.Files == nil {
		c.project.Files = make(map[string]schema.FileMetrics)
	}
	if !c.load(contract.HistoricalMetricsKey, &c.history) || c.history == nil {
		c.history = []schema.HistoricalMetric{}
	}
	c.project.CodeChanges = totalChanges(c.history)
	return c
}

// load reads a key into dst and reports whether it succeeded.
func (c *Collector) load(key string, dst any) bool {
	if c.store == nil {
		return false
	}
	data, version, _, err := c.store.Get(key)
	if err != nil {
		return false // no data yet
	}
	if version != currentStateVersion {
		slog.Warn("ignoring state with unknown version", "key", key, "version", version)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("ignoring unreadable state", "key", key, "error", err)
		return false
	}
	return true
}

// save persists one value. Failures are logged and otherwise ignored.
func (c *Collector) save(key string, value any) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("failed to encode state", "key", key, "error", err)
		return
	}
	if err := c.store.Set(key, data, currentStateVersion, c.now().Unix()); err != nil {
		slog.Error("failed to persist state", "key", key, "error", err)
	}
}

// RecordMetrics stores the condensed metrics of one analysis and updates the
// project aggregate and today's history entry. It returns the exact bucket
// counts of the reported complexity issues.
func (c *Collector) RecordMetrics(path string, result schema.AnalysisResult) schema.ComplexityDistribution {
	if result.IsEmpty() {
		return schema.ComplexityDistribution{}
	}

	buckets := bucketIssues(result.ComplexityIssues)
	m := result.Metrics

	c.mu.Lock()
	defer c.mu.Unlock()

	c.project.Files[c.NormalizePath(path)] = schema.FileMetrics{
		HealthScore: result.OverallHealth,
		LastUpdated: c.now().UnixMilli(),
		Complexity: schema.ComplexityStats{
			Average: m.AverageComplexity,
			Max:     m.MaxComplexity,
			Count:   m.FunctionCount,
		},
		Duplication: schema.DuplicationStats{
			Percentage: m.DuplicationPercentage,
			LineCount:  int(math.Round(float64(m.TotalLines) * m.DuplicationPercentage / 100)),
		},
		StyleIssues:  len(result.StyleIssues),
		TotalLines:   m.TotalLines,
		CodeLines:    m.CodeLines,
		CommentLines: m.CommentLines,
	}
	c.refresh()

	slog.Debug("recorded metrics", "path", path, "health", result.OverallHealth,
		"low", buckets.Low, "medium", buckets.Medium, "high", buckets.High, "very_high", buckets.VeryHigh)
	return buckets
}

// ClearFileMetrics forgets one file and persists the recomputed aggregate.
// Today's history entry is updated while other files remain tracked.
func (c *Collector) ClearFileMetrics(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.NormalizePath(path)
	if _, ok := c.project.Files[key]; !ok {
		return false
	}
	delete(c.project.Files, key)
	c.refresh()
	return true
}

// refresh recomputes the aggregate, folds it into today's history entry when
// files remain and persists both keys.
func (c *Collector) refresh() {
	c.recompute()
	if len(c.project.Files) > 0 {
		c.updateHistory()
	}
	c.project.CodeChanges = totalChanges(c.history)

	c.save(contract.MetricsKey, c.project)
	c.save(contract.HistoricalMetricsKey, c.history)
}

// totalChanges sums the change counters over the retained history.
func totalChanges(history []schema.HistoricalMetric) int {
	n := 0
	for _, h := range history {
		n += h.CodeChanges
	}
	return n
}

// ClearAllMetrics resets the aggregate and the history.
func (c *Collector) ClearAllMetrics() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.project = schema.NewProjectMetrics(c.now().UnixMilli())
	c.history = []schema.HistoricalMetric{}
	c.save(contract.MetricsKey, c.project)
	c.save(contract.HistoricalMetricsKey, c.history)
}

// GetProjectMetrics returns a copy of the project aggregate.
func (c *Collector) GetProjectMetrics() schema.ProjectMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.project
	p.Files = maps.Clone(c.project.Files)
	return p
}

// GetHistoricalMetrics returns a copy of the daily history, oldest first.
func (c *Collector) GetHistoricalMetrics() []schema.HistoricalMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// GetFileMetrics returns the stored metrics for a path.
func (c *Collector) GetFileMetrics(path string) (schema.FileMetrics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fm, ok := c.project.Files[c.NormalizePath(path)]
	return fm, ok
}

// NormalizePath makes a path relative to the workspace root when it lies
// under it. Other paths are returned verbatim.
func (c *Collector) NormalizePath(path string) string {
	root := c.workspaceRoot
	if root == "" || !strings.HasPrefix(path, root) {
		return path
	}
	rel := strings.TrimPrefix(path, root)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	return strings.TrimPrefix(rel, "/")
}

// recompute rebuilds the aggregate fields from the file map.
func (c *Collector) recompute() {
	p := &c.project
	if len(p.Files) == 0 {
		p.OverallHealth = 0
		p.AverageComplexity = 0
		p.DuplicationPercentage = 0
		p.CodeToCommentRatio = 0
		p.ComplexityDistribution = schema.ComplexityDistribution{}
		return
	}

	var (
		totalLines, dupLines, codeLines, commentLines int
		weightedHealth, complexitySum                 float64
		complexityCount                               int
		dist                                          schema.ComplexityDistribution
	)
	for _, fm := range p.Files {
		totalLines += fm.TotalLines
		weightedHealth += fm.HealthScore * float64(fm.TotalLines)
		complexitySum += fm.Complexity.Average * float64(fm.Complexity.Count)
		complexityCount += fm.Complexity.Count
		dupLines += fm.Duplication.LineCount
		codeLines += fm.CodeLines
		commentLines += fm.CommentLines
		dist = dist.Add(EstimateDistribution(fm.Complexity.Average, fm.Complexity.Count))
	}

	p.Timestamp = c.now().UnixMilli()
	p.OverallHealth = ratio(weightedHealth, float64(totalLines))
	p.AverageComplexity = ratio(complexitySum, float64(complexityCount))
	p.DuplicationPercentage = ratio(float64(dupLines), float64(totalLines)) * 100
	p.CodeToCommentRatio = ratio(float64(codeLines), float64(commentLines))
	p.ComplexityDistribution = dist
}

// updateHistory folds the current health into today's entry.
func (c *Collector) updateHistory() {
	midnight := localMidnight(c.now())
	for i, h := range c.history {
		if localMidnight(time.UnixMilli(h.Timestamp).In(midnight.Location())).Equal(midnight) {
			c.history[i] = schema.HistoricalMetric{
				Timestamp:     midnight.UnixMilli(),
				OverallHealth: c.project.OverallHealth,
				CodeChanges:   h.CodeChanges + 1,
			}
			return
		}
	}

	c.history = append(c.history, schema.HistoricalMetric{
		Timestamp:     midnight.UnixMilli(),
		OverallHealth: c.project.OverallHealth,
		CodeChanges:   1,
	})
	if len(c.history) > MaxHistory {
		c.history = slices.Clone(c.history[len(c.history)-MaxHistory:])
	}
}

// EstimateDistribution approximates how count functions with the given mean
// complexity spread over the four buckets.
func EstimateDistribution(avg float64, count int) schema.ComplexityDistribution {
	var d schema.ComplexityDistribution
	if count == 0 {
		return d
	}
	part := func(share float64) int { return int(math.Round(float64(count) * share)) }

	switch {
	case avg <= 5:
		d.Low = part(0.8)
		d.Medium = count - d.Low
	case avg <= 10:
		d.Medium = part(0.6)
		d.Low = part(0.3)
		d.High = count - d.Medium - d.Low
	case avg <= 15:
		d.Medium = part(0.4)
		d.High = part(0.4)
		d.Low = part(0.1)
		d.VeryHigh = count - d.Medium - d.High - d.Low
	default:
		d.High = part(0.5)
		d.VeryHigh = part(0.3)
		d.Medium = part(0.2)
		d.Low = count - d.High - d.VeryHigh - d.Medium
	}
	return d
}

// bucketIssues counts issues per complexity bucket.
func bucketIssues(issues []schema.ComplexityIssue) schema.ComplexityDistribution {
	var d schema.ComplexityDistribution
	for _, is := range issues {
		switch {
		case is.Complexity <= 5:
			d.Low++
		case is.Complexity <= 10:
			d.Medium++
		case is.Complexity <= 20:
			d.High++
		default:
			d.VeryHigh++
		}
	}
	return d
}

func localMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
