package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/iocache"
	"github.com/huangsam/calheat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *contract.Config {
	return &contract.Config{
		InputPaths:  []string{"a.json"},
		Aggregation: schema.SumAggregation,
		Hue:         schema.GreenHue,
		Theme:       schema.LightTheme,
		Location:    time.UTC,
		Precision:   2,
		Output:      schema.JSONOut,
	}
}

func testSeries() []schema.Series {
	return []schema.Series{
		observations("a", []time.Time{day(1, 9), day(1, 17), day(3, 12)}, []any{2.0, 3.0, 10.0}),
	}
}

func TestGetHeatmapResult_Success(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig()
	loader := &contract.MockSeriesLoader{}
	mockMgr := &iocache.MockStoreManager{}
	mockStore := &iocache.MockRunStore{}

	loader.On("LoadSeries", ctx, cfg.InputPaths).Return(testSeries(), nil)
	mockMgr.On("GetRunStore").Return(mockStore)
	mockStore.On("BeginRun", mock.AnythingOfType("time.Time"), mock.MatchedBy(func(p schema.RunParams) bool {
		return p.Aggregation == schema.SumAggregation && p.Hue == schema.GreenHue && !p.DarkMode &&
			p.ConfigParams["timezone"] == "UTC"
	})).Return(int64(7), nil)
	mockStore.On("RecordDays", int64(7), mock.MatchedBy(func(days []schema.EnrichedDay) bool {
		return len(days) == 2 && days[1].Bucket == 11
	})).Return(nil)
	mockStore.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 2, 10.0).Return(nil)

	result, err := GetHeatmapResult(ctx, cfg, mockMgr, loader)

	require.NoError(t, err)
	assert.Len(t, result.Days, 2)
	assert.Equal(t, 10.0, result.MaxCount)

	loader.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestGetHeatmapResult_NoTracking(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig()
	loader := &contract.MockSeriesLoader{}
	mockMgr := &iocache.MockStoreManager{}

	loader.On("LoadSeries", ctx, cfg.InputPaths).Return(testSeries(), nil)
	mockMgr.On("GetRunStore").Return(nil)

	result, err := GetHeatmapResult(ctx, cfg, mockMgr, loader)
	require.NoError(t, err)
	assert.Len(t, result.Days, 2)

	// A nil manager is fine too
	result, err = GetHeatmapResult(ctx, cfg, nil, loader)
	require.NoError(t, err)
	assert.Len(t, result.Days, 2)

	mockMgr.AssertExpectations(t)
}

func TestGetHeatmapResult_TrackingFailuresAreNotFatal(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig()
	loader := &contract.MockSeriesLoader{}
	mockMgr := &iocache.MockStoreManager{}
	mockStore := &iocache.MockRunStore{}

	loader.On("LoadSeries", ctx, cfg.InputPaths).Return(testSeries(), nil)
	mockMgr.On("GetRunStore").Return(mockStore)
	mockStore.On("BeginRun", mock.Anything, mock.Anything).Return(int64(3), nil)
	mockStore.On("RecordDays", int64(3), mock.Anything).Return(assert.AnError)
	mockStore.On("EndRun", int64(3), mock.Anything, 2, 10.0).Return(assert.AnError)

	_, err := GetHeatmapResult(ctx, cfg, mockMgr, loader)
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)

	// A failed BeginRun skips the rest of the tracking
	failing := &iocache.MockRunStore{}
	failingMgr := &iocache.MockStoreManager{}
	failingMgr.On("GetRunStore").Return(failing)
	failing.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	_, err = GetHeatmapResult(ctx, cfg, failingMgr, loader)
	assert.NoError(t, err)
	failing.AssertExpectations(t)
	failing.AssertNotCalled(t, "RecordDays", mock.Anything, mock.Anything)
}

func TestGetHeatmapResult_LoadError(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig()
	loader := &contract.MockSeriesLoader{}
	loader.On("LoadSeries", ctx, cfg.InputPaths).Return(nil, assert.AnError)

	_, err := GetHeatmapResult(ctx, cfg, nil, loader)
	assert.ErrorIs(t, err, assert.AnError)
	loader.AssertExpectations(t)
}

func TestGetHeatmapResult_Window(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig()
	cfg.StartTime = day(2, 0)
	loader := &contract.MockSeriesLoader{}
	loader.On("LoadSeries", ctx, cfg.InputPaths).Return(testSeries(), nil)

	result, err := GetHeatmapResult(ctx, cfg, nil, loader)
	require.NoError(t, err)
	assert.Equal(t, []schema.DailyAggregate{{Date: "2024/01/03", Count: 10}}, result.Days)
}

func TestGetHeatmapResult_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(WithSuppressHeader(context.Background()))
	cancel()
	cfg := testConfig()
	loader := &contract.MockSeriesLoader{}
	loader.On("LoadSeries", ctx, cfg.InputPaths).Return(testSeries(), nil)

	_, err := GetHeatmapResult(ctx, cfg, nil, loader)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetHeatmapResult_FailedRunIsClosed(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig()
	loader := &contract.MockSeriesLoader{}
	mockMgr := &iocache.MockStoreManager{}
	mockStore := &iocache.MockRunStore{}

	loader.On("LoadSeries", ctx, cfg.InputPaths).Return(nil, assert.AnError)
	mockMgr.On("GetRunStore").Return(mockStore)
	mockStore.On("BeginRun", mock.Anything, mock.Anything).Return(int64(3), nil)
	mockStore.On("EndRun", int64(3), mock.AnythingOfType("time.Time"), 0, 0.0).Return(nil)

	_, err := GetHeatmapResult(ctx, cfg, mockMgr, loader)

	assert.ErrorIs(t, err, assert.AnError)
	mockStore.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "RecordDays", mock.Anything, mock.Anything)
}

func TestGetHeatmapResult_FailedRunsEndInStore(t *testing.T) {
	store, err := iocache.NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig()

	failing := &contract.MockSeriesLoader{}
	failing.On("LoadSeries", ctx, cfg.InputPaths).Return(nil, assert.AnError)
	_, err = GetHeatmapResult(ctx, cfg, mgr, failing)
	require.ErrorIs(t, err, assert.AnError)

	canceledCtx, cancel := context.WithCancel(ctx)
	cancel()
	loader := &contract.MockSeriesLoader{}
	loader.On("LoadSeries", canceledCtx, cfg.InputPaths).Return(testSeries(), nil)
	_, err = GetHeatmapResult(canceledCtx, cfg, mgr, loader)
	require.ErrorIs(t, err, context.Canceled)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.NotNil(t, run.EndTime, "run %d", run.RunID)
		assert.Equal(t, int32(0), run.TotalDays)
	}

	days, err := store.GetAllDailyRecords()
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestExecutePalette(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCount = 10
	cfg.OutputFile = filepath.Join(t.TempDir(), "palette.json")

	require.NoError(t, ExecutePalette(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"max_count": 10`)
	assert.Contains(t, string(data), `"#37872D"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ExecutePalette(ctx, cfg, nil), context.Canceled)
}

func TestExecuteHeatmap_Files(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "obs.csv")
	require.NoError(t, os.WriteFile(input, []byte("Time,value\n2024-01-01T09:00:00Z,2\n2024-01-01T10:00:00Z,3\n"), 0o644))

	cfg := testConfig()
	cfg.InputPaths = []string{input}
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(dir, "heatmap.csv")

	require.NoError(t, ExecuteHeatmap(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024/01/01,5,")
}
