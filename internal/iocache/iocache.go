package iocache

import (
	"sync"

	"github.com/zeyadhassan/codepulse/internal/contract"
)

// StoreManager holds the process-wide metrics store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	metrics      contract.KVStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetMetricsStore returns the metrics KVStore.
func (mgr *StoreManager) GetMetricsStore() contract.KVStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.metrics
}
