// Package core has the orchestration logic for heatmaps and palettes.
package core

import (
	"context"
	"os"
	"time"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/ingest"
	"github.com/huangsam/calheat/internal/outwriter"
	"github.com/huangsam/calheat/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteHeatmap loads the configured inputs, builds the heatmap, records the
// run and prints the result. It serves as the main entry point for the 'heatmap' command.
func ExecuteHeatmap(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, err := GetHeatmapResult(ctx, cfg, mgr, ingest.NewLoader())
	if err != nil {
		return err
	}
	return outwriter.PrintHeatmap(result, cfg)
}

// ExecutePalette prints the palette for the configured maximum.
// It serves as the main entry point for the 'palette' command.
func ExecutePalette(ctx context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	return outwriter.PrintPalette(BuildPalette(cfg.MaxCount, opts), cfg)
}

// GetHeatmapResult performs the load, clip, build and tracking steps without
// writing any output. The MCP server uses it with an in-memory loader.
func GetHeatmapResult(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, loader contract.SeriesLoader) (schema.HeatmapResult, error) {
	if !shouldSuppressHeader(ctx) {
		contract.LogHeatmapHeader(os.Stderr, cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	tracker := beginRun(cfg, mgr)

	result, err := buildHeatmapResult(ctx, cfg, loader)
	if err != nil {
		tracker.abort()
		return schema.HeatmapResult{}, err
	}

	// --- 4. End Run Tracking ---
	tracker.finish(result)
	return result, nil
}

// buildHeatmapResult loads, clips and aggregates the configured inputs.
func buildHeatmapResult(ctx context.Context, cfg *contract.Config, loader contract.SeriesLoader) (schema.HeatmapResult, error) {
	// --- 1. Load ---
	series, err := loader.LoadSeries(ctx, cfg.InputPaths)
	if err != nil {
		return schema.HeatmapResult{}, err
	}

	// --- 2. Clip to the time window ---
	if !cfg.StartTime.IsZero() || !cfg.EndTime.IsZero() {
		series = ClipSeries(series, cfg.InWindow)
	}

	// --- 3. Aggregate and build the palette ---
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return schema.HeatmapResult{}, err
	}
	result := BuildHeatmap(series, opts)

	if err := ctx.Err(); err != nil {
		return schema.HeatmapResult{}, err
	}
	return result, nil
}

// runTracker records one heatmap run. A zero runID means tracking is off.
type runTracker struct {
	store contract.RunStore
	runID int64
}

// beginRun opens a run record. Tracking failures are logged, never fatal.
func beginRun(cfg *contract.Config, mgr contract.StoreManager) runTracker {
	if mgr == nil {
		return runTracker{}
	}
	store := mgr.GetRunStore()
	if store == nil {
		return runTracker{}
	}

	params := schema.RunParams{
		Aggregation: cfg.Aggregation,
		Hue:         cfg.Hue,
		DarkMode:    cfg.IsDark(),
		ConfigParams: map[string]any{
			"inputs":   cfg.InputPaths,
			"timezone": cfg.GetLocation().String(),
			"start":    formatOptionalTime(cfg.StartTime),
			"end":      formatOptionalTime(cfg.EndTime),
			"output":   string(cfg.Output),
		},
	}
	runID, err := store.BeginRun(time.Now(), params)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return runTracker{}
	}
	return runTracker{store: store, runID: runID}
}

// finish stores the days of the run and closes it.
func (rt runTracker) finish(result schema.HeatmapResult) {
	if rt.store == nil || rt.runID <= 0 {
		return
	}
	if err := rt.store.RecordDays(rt.runID, schema.EnrichDays(result.Days, result.Palette)); err != nil {
		contract.LogWarn("Failed to record daily aggregates", err)
	}
	if err := rt.store.EndRun(rt.runID, time.Now(), len(result.Days), result.MaxCount); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// abort closes a run that failed before producing days, so it does not stay
// open in the store.
func (rt runTracker) abort() {
	if rt.store == nil || rt.runID <= 0 {
		return
	}
	if err := rt.store.EndRun(rt.runID, time.Now(), 0, 0); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// formatOptionalTime renders a bound for the run record. Open bounds are empty.
func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contract.DateTimeFormat)
}
