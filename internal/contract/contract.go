// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/calheat/schema"
)

// ColorLookup resolves a shade of a hue to a display color.
// The palette builder depends on this instead of a concrete theme.
type ColorLookup interface {
	ShadeColor(shade schema.Shade, hue schema.Hue) string
}

// ColorLookupFunc adapts a plain function to ColorLookup.
type ColorLookupFunc func(shade schema.Shade, hue schema.Hue) string

// ShadeColor implements the ColorLookup interface.
func (f ColorLookupFunc) ShadeColor(shade schema.Shade, hue schema.Hue) string {
	return f(shade, hue)
}

// SeriesLoader reads observation series from input files.
// This allows the orchestration logic to be tested without real files.
type SeriesLoader interface {
	LoadSeries(ctx context.Context, paths []string) ([]schema.Series, error)
}

// StoreManager defines the interface for managing run stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking heatmap runs and their daily output.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, params schema.RunParams) (int64, error)

	// RecordDays stores the enriched daily aggregates of a run
	RecordDays(runID int64, days []schema.EnrichedDay) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalDays int, maxCount float64) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllDailyRecords returns every recorded daily aggregate
	GetAllDailyRecords() ([]schema.DailyRecord, error)

	// Close closes the underlying connection
	Close() error
}
