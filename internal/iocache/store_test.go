package iocache

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeyadhassan/codepulse/schema"
)

func resetGlobals() {
	Manager = &StoreManager{}
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite file", func(t *testing.T) {
		resetGlobals()
		dbPath := filepath.Join(t.TempDir(), "state.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		assert.NotNil(t, Manager.GetMetricsStore())
		CloseStores()

		_, err := os.Stat(dbPath)
		assert.NoError(t, err, "database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals()
		dbPath := filepath.Join(t.TempDir(), "state.db")

		assert.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		assert.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		first := Manager.GetMetricsStore()
		assert.NoError(t, InitStores(schema.NoneBackend, ""))
		assert.Same(t, first, Manager.GetMetricsStore())

		CloseStores()
		CloseStores()
	})

	t.Run("none backend", func(t *testing.T) {
		resetGlobals()
		require.NoError(t, InitStores(schema.NoneBackend, ""))
		assert.NotNil(t, Manager.GetMetricsStore())
		CloseStores()
	})

	t.Run("unsupported backend", func(t *testing.T) {
		resetGlobals()
		err := InitStores(schema.DatabaseBackend("redis"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported store backend")
		assert.Nil(t, Manager.GetMetricsStore())
	})
}

func TestNoneBackendOperations(t *testing.T) {
	store, err := NewStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("k")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestSQLiteBackendOperations(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		store, err := NewStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("codepulse.metrics", []byte(`{"a":1}`), 1, 1234567890))
		value, version, ts, err := store.Get("codepulse.metrics")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1234567890), ts)
	})

	t.Run("upsert", func(t *testing.T) {
		store, err := NewStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("k", []byte("one"), 1, 100))
		require.NoError(t, store.Set("k", []byte("two"), 2, 200))
		value, version, ts, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "two", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(200), ts)
	})

	t.Run("missing key", func(t *testing.T) {
		store, err := NewStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		_, _, _, err = store.Get("absent")
		assert.True(t, errors.Is(err, sql.ErrNoRows))
	})

	t.Run("status", func(t *testing.T) {
		store, err := NewStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, 0, status.TotalEntries)

		require.NoError(t, store.Set("a", []byte("x"), 1, 100))
		require.NoError(t, store.Set("b", []byte("y"), 1, 300))
		status, err = store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, time.Unix(300, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(100, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "codepulse_state", false},
		{"valid name with numbers", "state_123", false},
		{"valid leading underscore", "_state", false},
		{"valid mixed case", "CodePulse_State", false},
		{"empty name", "", true},
		{"starts with number", "1state", true},
		{"contains dash", "code-pulse", true},
		{"contains space", "code pulse", true},
		{"sql injection attempt", "t'; DROP TABLE users; --", true},
		{"contains dot", "db.state", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"s"`, quoteTableName("s", schema.SQLiteBackend))
	assert.Equal(t, "`s`", quoteTableName("s", schema.MySQLBackend))
	assert.Equal(t, `"s"`, quoteTableName("s", schema.PostgreSQLBackend))
	assert.Equal(t, `"s"`, quoteTableName("s", schema.NoneBackend))
}

func TestQueriesPerBackend(t *testing.T) {
	tests := []struct {
		backend     schema.DatabaseBackend
		placeholder string
		upsert      string
		valueType   string
	}{
		{schema.SQLiteBackend, "?", "INSERT OR REPLACE", "BLOB"},
		{schema.MySQLBackend, "?", "ON DUPLICATE KEY UPDATE", "LONGBLOB"},
		{schema.PostgreSQLBackend, "$1", "ON CONFLICT (state_key)", "BYTEA"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			s := &StoreImpl{tableName: StateTable, backend: tt.backend}
			assert.Equal(t, tt.placeholder, s.placeholder(1))
			assert.Contains(t, s.getUpsertQuery(), tt.upsert)
			assert.Contains(t, getCreateTableQuery(StateTable, tt.backend), tt.valueType)
		})
	}
}

func TestNewStoreErrors(t *testing.T) {
	_, err := NewStore("bad-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewStore(StateTable, schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestClearStore(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "state.db")
		store, err := NewStore(StateTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite requires path", func(t *testing.T) {
		assert.Error(t, ClearStore(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearStore(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearStore(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestStoreManagerConcurrency(t *testing.T) {
	store, err := NewStore(StateTable, schema.NoneBackend, "")
	require.NoError(t, err)
	mgr := &StoreManager{metrics: store}

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			assert.NotNil(t, mgr.GetMetricsStore())
		})
	}
	wg.Wait()
}

func TestMigrateStoreSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))
	version, dirty, err := StoreVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	// Already at latest
	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))

	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 1))
	version, _, err = StoreVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, 0))
	version, _, err = StoreVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	// The store still works on a migrated-down database
	store, err := NewStore(StateTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	assert.NoError(t, store.Close())
}

func TestMigrateStoreNoneBackend(t *testing.T) {
	assert.Error(t, MigrateStore(schema.NoneBackend, "", -1))
	version, dirty, err := StoreVersion(schema.NoneBackend, "")
	assert.NoError(t, err)
	assert.False(t, dirty)
	assert.Zero(t, version)
}

func TestPrintStoreStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintStoreStatus(&buf, schema.StoreStatus{Backend: "none"})
	assert.Contains(t, buf.String(), "Store Backend: none")
	assert.NotContains(t, buf.String(), "Total Entries")

	buf.Reset()
	now := time.Now()
	PrintStoreStatus(&buf, schema.StoreStatus{
		Backend: "sqlite", Connected: true, TotalEntries: 2,
		LastEntryTime: now, OldestEntryTime: now.Add(-time.Hour), TableSizeBytes: 8192,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 2")
	assert.Contains(t, out, "Last Entry:")
	assert.Contains(t, out, "8.2 kB")
}

func TestExecuteMetricsExport(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ExecuteMetricsExport(&buf, "", schema.ProjectMetrics{}, nil))
	assert.Error(t, ExecuteMetricsExport(&buf, "x", schema.NewProjectMetrics(0), nil))

	out := filepath.Join(t.TempDir(), "pulse")
	project := schema.NewProjectMetrics(0)
	project.Files["a.ts"] = schema.FileMetrics{HealthScore: 90, TotalLines: 10}
	history := []schema.HistoricalMetric{{Timestamp: 0, OverallHealth: 90, CodeChanges: 1}}

	require.NoError(t, ExecuteMetricsExport(&buf, out, project, history))
	assert.FileExists(t, out+".file_metrics.parquet")
	assert.FileExists(t, out+".history.parquet")
	assert.Contains(t, buf.String(), "Exported 1 file metric records")
}
