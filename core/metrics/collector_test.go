package metrics

import (
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/internal/iocache"
	"github.com/zeyadhassan/codepulse/schema"
)

const workspace = "/work/project"

// fakeClock returns a clock starting at a fixed local time that can be advanced.
func fakeClock() (func() time.Time, func(time.Duration)) {
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.Local)
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func emptyStore() *iocache.MockKVStore {
	store := &iocache.MockKVStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.Anything, mock.Anything, currentStateVersion, mock.Anything).Return(nil)
	return store
}

func result(health float64, total, code, comment int, complexities ...int) schema.AnalysisResult {
	r := schema.EmptyAnalysisResult()
	r.OverallHealth = health
	r.Metrics.TotalLines = total
	r.Metrics.CodeLines = code
	r.Metrics.CommentLines = comment
	sum := 0
	for _, c := range complexities {
		r.ComplexityIssues = append(r.ComplexityIssues, schema.ComplexityIssue{Complexity: c, FunctionName: "f"})
		sum += c
		r.Metrics.MaxComplexity = max(r.Metrics.MaxComplexity, c)
	}
	r.Metrics.FunctionCount = len(complexities)
	if len(complexities) > 0 {
		r.Metrics.AverageComplexity = float64(sum) / float64(len(complexities))
	}
	return r
}

func TestNewCollectorDefaults(t *testing.T) {
	now, _ := fakeClock()
	store := emptyStore()
	c := NewCollector(store, workspace, WithClock(now))

	p := c.GetProjectMetrics()
	assert.Equal(t, now().UnixMilli(), p.Timestamp)
	assert.NotNil(t, p.Files)
	assert.Empty(t, p.Files)
	assert.Zero(t, p.OverallHealth)
	assert.Empty(t, c.GetHistoricalMetrics())
	store.AssertNumberOfCalls(t, "Get", 2)
}

func TestNewCollectorLoadsState(t *testing.T) {
	project := schema.NewProjectMetrics(123)
	project.OverallHealth = 77
	project.Files["a.js"] = schema.FileMetrics{HealthScore: 77, TotalLines: 10}
	projectData, _ := json.Marshal(project)
	historyData, _ := json.Marshal([]schema.HistoricalMetric{{Timestamp: 1, OverallHealth: 70, CodeChanges: 2}})

	store := &iocache.MockKVStore{}
	store.On("Get", contract.MetricsKey).Return(projectData, currentStateVersion, int64(0), nil)
	store.On("Get", contract.HistoricalMetricsKey).Return(historyData, currentStateVersion, int64(0), nil)

	c := NewCollector(store, workspace)
	assert.Equal(t, 77.0, c.GetProjectMetrics().OverallHealth)
	fm, ok := c.GetFileMetrics("a.js")
	require.True(t, ok)
	assert.Equal(t, 10, fm.TotalLines)
	assert.Len(t, c.GetHistoricalMetrics(), 1)
	assert.Equal(t, 2, c.GetProjectMetrics().CodeChanges)
	store.AssertExpectations(t)
}

func TestNewCollectorIgnoresBadState(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		version int
	}{
		{"corrupt json", []byte("{not json"), currentStateVersion},
		{"unknown version", []byte(`{"overall_health": 50}`), currentStateVersion + 1},
		{"null", []byte("null"), currentStateVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockKVStore{}
			store.On("Get", mock.Anything).Return(tt.data, tt.version, int64(0), nil)

			c := NewCollector(store, workspace)
			p := c.GetProjectMetrics()
			assert.NotNil(t, p.Files)
			assert.Zero(t, p.OverallHealth)
			assert.NotNil(t, c.GetHistoricalMetrics())
		})
	}
}

func TestRecordMetrics(t *testing.T) {
	now, _ := fakeClock()
	store := emptyStore()
	c := NewCollector(store, workspace, WithClock(now))

	r := result(80, 100, 70, 20, 3, 8, 15, 30)
	r.Metrics.DuplicationPercentage = 12.34
	r.StyleIssues = []schema.StyleIssue{{Line: 1}, {Line: 2}}

	buckets := c.RecordMetrics(filepath.Join(workspace, "src", "a.js"), r)
	assert.Equal(t, schema.ComplexityDistribution{Low: 1, Medium: 1, High: 1, VeryHigh: 1}, buckets)

	fm, ok := c.GetFileMetrics(filepath.Join(workspace, "src", "a.js"))
	require.True(t, ok)
	assert.Equal(t, schema.FileMetrics{
		HealthScore:  80,
		LastUpdated:  now().UnixMilli(),
		Complexity:   schema.ComplexityStats{Average: 14, Max: 30, Count: 4},
		Duplication:  schema.DuplicationStats{Percentage: 12.34, LineCount: 12},
		StyleIssues:  2,
		TotalLines:   100,
		CodeLines:    70,
		CommentLines: 20,
	}, fm)

	p := c.GetProjectMetrics()
	assert.Contains(t, p.Files, filepath.Join("src", "a.js"))
	assert.Equal(t, 80.0, p.OverallHealth)
	assert.Equal(t, 14.0, p.AverageComplexity)
	assert.InDelta(t, 12.0, p.DuplicationPercentage, 1e-9)
	assert.InDelta(t, 3.5, p.CodeToCommentRatio, 1e-9)
	assert.Equal(t, 1, p.CodeChanges)
	assert.Equal(t, schema.ComplexityDistribution{Low: 0, Medium: 2, High: 2, VeryHigh: 0}, p.ComplexityDistribution)

	store.AssertCalled(t, "Set", contract.MetricsKey, mock.Anything, currentStateVersion, now().Unix())
	store.AssertCalled(t, "Set", contract.HistoricalMetricsKey, mock.Anything, currentStateVersion, now().Unix())
}

func TestRecordMetricsSkipsEmptyResult(t *testing.T) {
	store := emptyStore()
	c := NewCollector(store, workspace)

	c.RecordMetrics("a.js", schema.EmptyAnalysisResult())
	assert.Empty(t, c.GetProjectMetrics().Files)
	assert.Empty(t, c.GetHistoricalMetrics())
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectAggregation(t *testing.T) {
	now, _ := fakeClock()
	c := NewCollector(nil, workspace, WithClock(now))

	c.RecordMetrics("big.py", result(90, 300, 200, 50, 2, 4))
	c.RecordMetrics("small.py", result(30, 100, 80, 0, 12, 12, 12))
	c.RecordMetrics("blank.py", result(100, 1, 0, 0))

	p := c.GetProjectMetrics()
	assert.InDelta(t, (90*300+30*100+100*1)/401.0, p.OverallHealth, 1e-9)
	assert.InDelta(t, (3*2+12*3)/5.0, p.AverageComplexity, 1e-9)
	assert.InDelta(t, 280.0/50.0, p.CodeToCommentRatio, 1e-9)
	assert.Equal(t, 3, p.CodeChanges)
	// avg 3 with 2 functions: low 2; avg 12 with 3 functions: medium 1, high 1, low 0, veryHigh 1
	assert.Equal(t, schema.ComplexityDistribution{Low: 2, Medium: 1, High: 1, VeryHigh: 1}, p.ComplexityDistribution)
}

func TestEstimateDistribution(t *testing.T) {
	tests := []struct {
		avg   float64
		count int
		want  schema.ComplexityDistribution
	}{
		{3, 0, schema.ComplexityDistribution{}},
		{3, 10, schema.ComplexityDistribution{Low: 8, Medium: 2}},
		{5, 1, schema.ComplexityDistribution{Low: 1}},
		{8, 10, schema.ComplexityDistribution{Low: 3, Medium: 6, High: 1}},
		{12, 10, schema.ComplexityDistribution{Low: 1, Medium: 4, High: 4, VeryHigh: 1}},
		{25, 10, schema.ComplexityDistribution{Medium: 2, High: 5, VeryHigh: 3}},
		{25, 1, schema.ComplexityDistribution{High: 1}},
	}

	for _, tt := range tests {
		got := EstimateDistribution(tt.avg, tt.count)
		assert.Equal(t, tt.want, got, "avg=%v count=%d", tt.avg, tt.count)
		assert.Equal(t, tt.count, got.Total())
	}
}

func TestHistorySameDay(t *testing.T) {
	now, advance := fakeClock()
	c := NewCollector(nil, workspace, WithClock(now))

	c.RecordMetrics("a.c", result(50, 10, 10, 0))
	advance(3 * time.Hour)
	c.RecordMetrics("a.c", result(70, 10, 10, 0))

	history := c.GetHistoricalMetrics()
	require.Len(t, history, 1)
	assert.Equal(t, localMidnight(now()).UnixMilli(), history[0].Timestamp)
	assert.Equal(t, 70.0, history[0].OverallHealth)
	assert.Equal(t, 2, history[0].CodeChanges)
}

func TestHistoryCap(t *testing.T) {
	now, advance := fakeClock()
	c := NewCollector(nil, workspace, WithClock(now))

	first := localMidnight(now())
	for day := range 31 {
		c.RecordMetrics("a.c", result(float64(day), 10, 10, 0))
		advance(24 * time.Hour)
	}

	history := c.GetHistoricalMetrics()
	require.Len(t, history, MaxHistory)
	assert.Equal(t, localMidnight(first.AddDate(0, 0, 1)).UnixMilli(), history[0].Timestamp)
	assert.Equal(t, 1.0, history[0].OverallHealth)
	assert.Equal(t, 30.0, history[MaxHistory-1].OverallHealth)
	for _, h := range history {
		assert.Equal(t, 1, h.CodeChanges)
	}
}

func TestClearFileMetrics(t *testing.T) {
	now, _ := fakeClock()
	store := emptyStore()
	c := NewCollector(store, workspace, WithClock(now))

	c.RecordMetrics("a.js", result(40, 10, 10, 0))
	c.RecordMetrics("b.js", result(80, 10, 10, 0))
	require.Equal(t, 60.0, c.GetHistoricalMetrics()[0].OverallHealth)

	assert.True(t, c.ClearFileMetrics("a.js"))
	assert.False(t, c.ClearFileMetrics("a.js"))

	p := c.GetProjectMetrics()
	assert.Len(t, p.Files, 1)
	assert.Equal(t, 80.0, p.OverallHealth)
	assert.Equal(t, 3, p.CodeChanges)

	// today's entry follows the recomputed health
	history := c.GetHistoricalMetrics()
	require.Len(t, history, 1)
	assert.Equal(t, 80.0, history[0].OverallHealth)
	assert.Equal(t, 3, history[0].CodeChanges)
	store.AssertNumberOfCalls(t, "Set", 6)

	// clearing the last file leaves the history alone
	assert.True(t, c.ClearFileMetrics("b.js"))
	p = c.GetProjectMetrics()
	assert.Empty(t, p.Files)
	assert.Zero(t, p.OverallHealth)
	assert.Equal(t, 3, p.CodeChanges)
	assert.Equal(t, history, c.GetHistoricalMetrics())
}

func TestCodeChangesFollowHistory(t *testing.T) {
	now, advance := fakeClock()
	c := NewCollector(nil, workspace, WithClock(now))

	c.RecordMetrics("a.js", result(90, 10, 10, 0))
	c.RecordMetrics("a.js", result(80, 10, 10, 0))
	advance(24 * time.Hour)
	c.RecordMetrics("b.js", result(70, 10, 10, 0))

	assert.Equal(t, 3, c.GetProjectMetrics().CodeChanges)

	// the counter stays within the retained window
	for range MaxHistory {
		advance(24 * time.Hour)
		c.RecordMetrics("a.js", result(90, 10, 10, 0))
	}
	assert.Equal(t, MaxHistory, c.GetProjectMetrics().CodeChanges)
}

func TestClearAllMetrics(t *testing.T) {
	now, _ := fakeClock()
	store := emptyStore()
	c := NewCollector(store, workspace, WithClock(now))
	c.RecordMetrics("a.js", result(40, 10, 10, 0))

	c.ClearAllMetrics()
	p := c.GetProjectMetrics()
	assert.Empty(t, p.Files)
	assert.Zero(t, p.CodeChanges)
	assert.Empty(t, c.GetHistoricalMetrics())

	store.AssertCalled(t, "Set", contract.HistoricalMetricsKey, []byte("[]"), currentStateVersion, now().Unix())
}

func TestPersistenceErrorsAreSwallowed(t *testing.T) {
	store := &iocache.MockKVStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	c := NewCollector(store, workspace)
	assert.NotPanics(t, func() { c.RecordMetrics("a.js", result(90, 5, 5, 0)) })
	_, ok := c.GetFileMetrics("a.js")
	assert.True(t, ok)
}

func TestCopiesAreIsolated(t *testing.T) {
	c := NewCollector(nil, workspace)
	c.RecordMetrics("a.js", result(90, 5, 5, 0))

	p := c.GetProjectMetrics()
	delete(p.Files, "a.js")
	h := c.GetHistoricalMetrics()
	h[0].CodeChanges = 99

	_, ok := c.GetFileMetrics("a.js")
	assert.True(t, ok)
	assert.Equal(t, 1, c.GetHistoricalMetrics()[0].CodeChanges)
}

func TestNormalizePath(t *testing.T) {
	c := NewCollector(nil, workspace)
	tests := []struct {
		in, want string
	}{
		{workspace + "/src/a.js", "src/a.js"},
		{workspace, ""},
		{"/elsewhere/b.js", "/elsewhere/b.js"},
		{"relative/c.js", "relative/c.js"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.NormalizePath(tt.in), tt.in)
	}

	assert.Equal(t, "x.js", NewCollector(nil, "").NormalizePath("x.js"))
}

func TestCollectorSQLiteRoundTrip(t *testing.T) {
	store, err := iocache.NewStore(iocache.StateTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now, _ := fakeClock()
	first := NewCollector(store, workspace, WithClock(now))
	first.RecordMetrics(workspace+"/main.py", result(65, 40, 30, 5, 7))

	second := NewCollector(store, workspace, WithClock(now))
	assert.Equal(t, first.GetProjectMetrics(), second.GetProjectMetrics())
	assert.Equal(t, first.GetHistoricalMetrics(), second.GetHistoricalMetrics())
}
