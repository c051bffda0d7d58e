// Package parquet provides data structures and functions for exchanging calheat
// data as Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/calheat/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single heatmap run with metadata.
// This struct maps to the calheat_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Aggregation is the reduction used for same-day values
	Aggregation string `parquet:"aggregation,snappy"`

	// Hue is the color family of the palette
	Hue string `parquet:"hue,snappy"`

	// DarkMode tells whether shades were reversed
	DarkMode bool `parquet:"dark_mode"`

	// TotalDays is the number of days with at least one value
	TotalDays int32 `parquet:"total_days,snappy"`

	// MaxCount is the largest daily value of the run
	MaxCount float64 `parquet:"max_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// DailyAggregate represents one day of a recorded run.
// This struct maps to the calheat_daily_aggregates database table.
type DailyAggregate struct {
	RunID     int64   `parquet:"run_id,snappy"`
	Day       string  `parquet:"day,snappy"`
	Count     float64 `parquet:"count,snappy"`
	Threshold int32   `parquet:"threshold,snappy"`
	Color     string  `parquet:"color,snappy"`
}

// HeatmapDay is one row of a heatmap written with --output parquet.
type HeatmapDay struct {
	Date   string  `parquet:"date,snappy"`
	Count  float64 `parquet:"count,snappy"`
	Bucket int32   `parquet:"bucket,snappy"`
	Color  string  `parquet:"color,snappy"`
}

// Observation is one input row: epoch milliseconds and an optional value.
type Observation struct {
	Time  int64    `parquet:"time"`
	Value *float64 `parquet:"value,optional"`
}

// writeParquet writes rows to a Parquet file with a schema inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDailyAggregatesParquet writes a slice of DailyAggregate structs to a Parquet file.
func WriteDailyAggregatesParquet(data []DailyAggregate, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteHeatmapParquet writes enriched heatmap days to a Parquet file.
func WriteHeatmapParquet(days []schema.EnrichedDay, outputPath string) error {
	return writeParquet(ConvertEnrichedDays(days), outputPath)
}

// WriteObservationsParquet writes observation rows to a Parquet file.
func WriteObservationsParquet(data []Observation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadObservations reads every observation row of a Parquet file.
func ReadObservations(path string) ([]Observation, error) {
	rows, err := parquet.ReadFile[Observation](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Aggregation:   record.Aggregation,
			Hue:           record.Hue,
			DarkMode:      record.DarkMode,
			TotalDays:     record.TotalDays,
			MaxCount:      record.MaxCount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertDailyRecords converts schema.DailyRecord to DailyAggregate for Parquet export.
func ConvertDailyRecords(records []schema.DailyRecord) []DailyAggregate {
	result := make([]DailyAggregate, len(records))
	for i, record := range records {
		result[i] = DailyAggregate{
			RunID:     record.RunID,
			Day:       record.Day,
			Count:     record.Count,
			Threshold: record.Threshold,
			Color:     record.Color,
		}
	}
	return result
}

// ConvertEnrichedDays converts enriched days to HeatmapDay rows.
func ConvertEnrichedDays(days []schema.EnrichedDay) []HeatmapDay {
	result := make([]HeatmapDay, len(days))
	for i, d := range days {
		result[i] = HeatmapDay{
			Date:   d.Date,
			Count:  d.Count,
			Bucket: int32(d.Bucket),
			Color:  d.Color,
		}
	}
	return result
}

// ObservationsToSeries turns observation rows into a single series with a
// time field and a value field. Missing values stay nil.
func ObservationsToSeries(name string, rows []Observation) schema.Series {
	times := make([]any, len(rows))
	values := make([]any, len(rows))
	for i, row := range rows {
		times[i] = row.Time
		if row.Value != nil {
			values[i] = *row.Value
		}
	}
	return schema.Series{
		Name: name,
		Fields: []schema.Field{
			{Name: "time", Type: schema.TimeField, Values: times},
			{Name: "value", Type: schema.NumberField, Values: values},
		},
	}
}
