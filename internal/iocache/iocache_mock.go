package iocache

import (
	"time"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, params schema.RunParams) (int64, error) {
	args := m.Called(startTime, params)
	return args.Get(0).(int64), args.Error(1)
}

// RecordDays implements the RunStore interface.
func (m *MockRunStore) RecordDays(runID int64, days []schema.EnrichedDay) error {
	args := m.Called(runID, days)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, totalDays int, maxCount float64) error {
	args := m.Called(runID, endTime, totalDays, maxCount)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllDailyRecords implements the RunStore interface.
func (m *MockRunStore) GetAllDailyRecords() ([]schema.DailyRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.DailyRecord)
	return records, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
