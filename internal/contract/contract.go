// Package contract provides interfaces and shared utilities for the codepulse internal architecture.
package contract

import "github.com/zeyadhassan/codepulse/schema"

// Keys under which the metrics collector persists its state.
const (
	MetricsKey           = "codepulse.metrics"
	HistoricalMetricsKey = "codepulse.historicalMetrics"
)

// StoreManager defines the interface for managing the metrics store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetMetricsStore() KVStore
}

// KVStore defines the interface for key-value data storage.
// Values are opaque blobs with a schema version and a unix timestamp.
// Get returns sql.ErrNoRows when the key is absent.
type KVStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.StoreStatus, error)
	Close() error
}
