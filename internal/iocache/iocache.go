// Package iocache persists heatmap run history across storage backends.
package iocache

import (
	"sync"

	"github.com/huangsam/calheat/internal/contract"
)

// RunStoreManager owns the RunStore used by the running process.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the RunStore, or nil when tracking was not initialized.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
