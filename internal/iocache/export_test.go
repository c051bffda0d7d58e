package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/calheat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsExport(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), schema.RunParams{Aggregation: schema.SumAggregation, Hue: schema.GreenHue})
	require.NoError(t, err)
	require.NoError(t, store.RecordDays(runID, sampleDays()))
	require.NoError(t, store.EndRun(runID, time.Now(), 2, 10))

	out := filepath.Join(t.TempDir(), "history")
	require.NoError(t, ExecuteRunsExport(store, out))

	for _, suffix := range []string{".runs.parquet", ".daily_aggregates.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExecuteRunsExport_Errors(t *testing.T) {
	assert.ErrorContains(t, ExecuteRunsExport(&MockRunStore{}, ""), "--output-file is required")
	assert.ErrorContains(t, ExecuteRunsExport(nil, "out"), "not initialized")

	empty := &MockRunStore{}
	empty.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true}, nil)
	assert.ErrorContains(t, ExecuteRunsExport(empty, "out"), "no run data found")

	broken := &MockRunStore{}
	broken.On("GetStatus").Return(schema.RunStatus{TotalRuns: 1}, nil)
	broken.On("GetAllRuns").Return(nil, errors.New("boom"))
	assert.ErrorContains(t, ExecuteRunsExport(broken, "out"), "failed to retrieve runs")

	broken.AssertExpectations(t)
	broken.AssertNotCalled(t, "GetAllDailyRecords", mock.Anything)
}

func TestRunStoreManager(t *testing.T) {
	mgr := &RunStoreManager{}
	assert.Nil(t, mgr.GetRunStore())

	store := &MockRunStore{}
	mgr.runs = store
	assert.Same(t, store, mgr.GetRunStore())
}
