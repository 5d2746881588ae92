// Package telemetry collects Prometheus metrics about analysis runs and
// writes them in the node_exporter textfile format.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeyadhassan/codepulse/schema"
)

const namespace = "codepulse"

// Issue categories used as the "kind" label.
const (
	kindComplexity  = "complexity"
	kindDuplication = "duplication"
	kindStyle       = "style"
)

// Recorder owns an independent registry so repeated runs in one process
// never collide on collector registration.
type Recorder struct {
	registry *prometheus.Registry

	filesAnalyzed prometheus.Counter
	filesFailed   prometheus.Counter
	linesAnalyzed prometheus.Counter
	issues        *prometheus.CounterVec
	fileHealth    prometheus.Histogram
	fileDuration  prometheus.Histogram
	runDuration   prometheus.Gauge
	projectHealth prometheus.Gauge
	trackedFiles  prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder builds a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		filesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_analyzed_total",
			Help:      "Files analyzed successfully.",
		}),
		filesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Files that could not be read.",
		}),
		linesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_analyzed_total",
			Help:      "Source lines analyzed.",
		}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Issues found, by kind.",
		}, []string{"kind"}),
		fileHealth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_health_score",
			Help:      "Health score distribution of analyzed files.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_analysis_duration_seconds",
			Help:      "Time spent analyzing a single file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last analysis run.",
		}),
		projectHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "project_health_score",
			Help:      "Line-weighted health of all tracked files.",
		}),
		trackedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_files",
			Help:      "Files with recorded metrics.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last analysis run.",
		}),
	}

	r.registry.MustRegister(
		r.filesAnalyzed, r.filesFailed, r.linesAnalyzed, r.issues,
		r.fileHealth, r.fileDuration, r.runDuration,
		r.projectHealth, r.trackedFiles, r.lastRun,
	)
	return r
}

// ObserveFile records one file's outcome.
func (r *Recorder) ObserveFile(fa schema.FileAnalysis) {
	if fa.Err != nil {
		r.filesFailed.Inc()
		return
	}
	res := fa.Result
	r.filesAnalyzed.Inc()
	r.linesAnalyzed.Add(float64(res.Metrics.TotalLines))
	r.issues.WithLabelValues(kindComplexity).Add(float64(len(res.ComplexityIssues)))
	r.issues.WithLabelValues(kindDuplication).Add(float64(len(res.DuplicationIssues)))
	r.issues.WithLabelValues(kindStyle).Add(float64(len(res.StyleIssues)))
	r.fileHealth.Observe(res.OverallHealth)
	r.fileDuration.Observe(fa.Elapsed.Seconds())
}

// ObserveRun records every file of a run plus its total duration.
func (r *Recorder) ObserveRun(results []schema.FileAnalysis, duration time.Duration, finished time.Time) {
	for _, fa := range results {
		r.ObserveFile(fa)
	}
	r.runDuration.Set(duration.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// ObserveProject sets the project gauges from the recorded aggregate.
func (r *Recorder) ObserveProject(p schema.ProjectMetrics) {
	r.projectHealth.Set(p.OverallHealth)
	r.trackedFiles.Set(float64(len(p.Files)))
}

// Registry exposes the underlying registry for scraping or inspection.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}
