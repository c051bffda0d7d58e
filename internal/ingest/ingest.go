// Package ingest loads observation series from JSON, CSV and Parquet files.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/parquet"
	"github.com/huangsam/calheat/schema"
)

// Loader reads series from files on disk.
type Loader struct{}

var _ contract.SeriesLoader = &Loader{} // Compile-time check

// NewLoader creates a file based series loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSeries implements the SeriesLoader interface.
func (l *Loader) LoadSeries(ctx context.Context, paths []string) ([]schema.Series, error) {
	return LoadSeries(ctx, paths)
}

// LoadSeries reads every path and concatenates the resulting series.
// The format is chosen by file extension.
func LoadSeries(ctx context.Context, paths []string) ([]schema.Series, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	var all []schema.Series
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, series...)
	}
	return all, nil
}

// loadFile dispatches a single file to its decoder.
func loadFile(path string) ([]schema.Series, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSONFile(path)
	case ".csv":
		s, err := readCSVFile(path, name)
		if err != nil {
			return nil, err
		}
		return []schema.Series{s}, nil
	case ".parquet":
		rows, err := parquet.ReadObservations(path)
		if err != nil {
			return nil, err
		}
		return []schema.Series{parquet.ObservationsToSeries(name, rows)}, nil
	default:
		return nil, fmt.Errorf("unsupported input format for %s (expected .json, .csv or .parquet)", path)
	}
}
