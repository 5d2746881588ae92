package schema

import "time"

// AnalysisResult is the outcome of analyzing one file.
// It is built fresh on every run and never mutated after being returned.
type AnalysisResult struct {
	OverallHealth     float64            `json:"overall_health"`
	ComplexityIssues  []ComplexityIssue  `json:"complexity_issues"`
	DuplicationIssues []DuplicationIssue `json:"duplication_issues"`
	StyleIssues       []StyleIssue       `json:"style_issues"`
	Metrics           CodeMetrics        `json:"metrics"`
}

// ComplexityIssue is a function or block whose estimated complexity meets the threshold.
type ComplexityIssue struct {
	Line         int    `json:"line"`
	Complexity   int    `json:"complexity"`
	FunctionName string `json:"function_name"`
	Message      string `json:"message"`
}

// DuplicateLocation points at the second occurrence of a duplicated block.
type DuplicateLocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// DuplicationIssue is one detected pair of equal line ranges.
type DuplicationIssue struct {
	StartLine          int                 `json:"start_line"`
	EndLine            int                 `json:"end_line"`
	Message            string              `json:"message"`
	DuplicateLocations []DuplicateLocation `json:"duplicate_locations"`
}

// Span returns the number of lines covered by the first occurrence.
func (d DuplicationIssue) Span() int {
	return d.EndLine - d.StartLine + 1
}

// StyleIssue is a single-line style violation.
type StyleIssue struct {
	Line    int       `json:"line"`
	Message string    `json:"message"`
	Rule    StyleRule `json:"rule"`
}

// CodeMetrics holds the line and complexity summary derived on each run.
type CodeMetrics struct {
	TotalLines            int     `json:"total_lines"`
	CodeLines             int     `json:"code_lines"`
	CommentLines          int     `json:"comment_lines"`
	FunctionCount         int     `json:"function_count"`
	AverageComplexity     float64 `json:"average_complexity"`
	MaxComplexity         int     `json:"max_complexity"`
	DuplicationPercentage float64 `json:"duplication_percentage"`
}

// EmptyAnalysisResult returns the canonical all-zero result.
func EmptyAnalysisResult() AnalysisResult {
	return AnalysisResult{
		ComplexityIssues:  []ComplexityIssue{},
		DuplicationIssues: []DuplicationIssue{},
		StyleIssues:       []StyleIssue{},
	}
}

// IssueCount returns the total number of issues across all categories.
func (r AnalysisResult) IssueCount() int {
	return len(r.ComplexityIssues) + len(r.DuplicationIssues) + len(r.StyleIssues)
}

// IsEmpty reports whether the result carries no metrics and no issues.
func (r AnalysisResult) IsEmpty() bool {
	return r.Metrics.TotalLines == 0 && r.IssueCount() == 0
}

// FileAnalysis pairs an analyzed path with its language and result.
type FileAnalysis struct {
	Path     string         `json:"path"`
	Language Language       `json:"language"`
	Result   AnalysisResult `json:"result"`
	Elapsed  time.Duration  `json:"-"`
	Err      error          `json:"-"`
}
