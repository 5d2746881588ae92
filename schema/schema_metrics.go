package schema

// ComplexityStats is the condensed complexity summary of one file.
type ComplexityStats struct {
	Average float64 `json:"average"`
	Max     int     `json:"max"`
	Count   int     `json:"count"`
}

// DuplicationStats is the condensed duplication summary of one file.
type DuplicationStats struct {
	Percentage float64 `json:"percentage"`
	LineCount  int     `json:"line_count"`
}

// FileMetrics is the persisted summary of a file's latest analysis.
type FileMetrics struct {
	HealthScore  float64          `json:"health_score"`
	LastUpdated  int64            `json:"last_updated"` // unix milliseconds
	Complexity   ComplexityStats  `json:"complexity"`
	Duplication  DuplicationStats `json:"duplication"`
	StyleIssues  int              `json:"style_issues"`
	TotalLines   int              `json:"total_lines"`
	CodeLines    int              `json:"code_lines"`
	CommentLines int              `json:"comment_lines"`
}

// ComplexityDistribution counts functions per complexity bucket.
type ComplexityDistribution struct {
	Low      int `json:"low"`       // 1-5
	Medium   int `json:"medium"`    // 6-10
	High     int `json:"high"`      // 11-20
	VeryHigh int `json:"very_high"` // 21+
}

// Add returns the element-wise sum of two distributions.
func (d ComplexityDistribution) Add(o ComplexityDistribution) ComplexityDistribution {
	return ComplexityDistribution{
		Low:      d.Low + o.Low,
		Medium:   d.Medium + o.Medium,
		High:     d.High + o.High,
		VeryHigh: d.VeryHigh + o.VeryHigh,
	}
}

// Total returns the number of functions across all buckets.
func (d ComplexityDistribution) Total() int {
	return d.Low + d.Medium + d.High + d.VeryHigh
}

// ProjectMetrics is the project-wide aggregate over all tracked files.
type ProjectMetrics struct {
	Timestamp              int64                  `json:"timestamp"` // unix milliseconds
	OverallHealth          float64                `json:"overall_health"`
	ComplexityDistribution ComplexityDistribution `json:"complexity_distribution"`
	AverageComplexity      float64                `json:"average_complexity"`
	DuplicationPercentage  float64                `json:"duplication_percentage"`
	CodeToCommentRatio     float64                `json:"code_comment_ratio"`
	CodeChanges            int                    `json:"code_changes"`
	Files                  map[string]FileMetrics `json:"file_metrics"`
}

// NewProjectMetrics returns zero-valued project metrics with an empty file map.
func NewProjectMetrics(timestamp int64) ProjectMetrics {
	return ProjectMetrics{
		Timestamp: timestamp,
		Files:     make(map[string]FileMetrics),
	}
}

// HistoricalMetric is one calendar day's health snapshot.
type HistoricalMetric struct {
	Timestamp     int64   `json:"timestamp"` // unix milliseconds of local midnight
	OverallHealth float64 `json:"overall_health"`
	CodeChanges   int     `json:"code_changes"`
}
