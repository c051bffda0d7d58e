package schema

import "time"

// RunRecord represents a row from the calheat_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Aggregation   string
	Hue           string
	DarkMode      bool
	TotalDays     int32
	MaxCount      float64
	ConfigParams  *string
}

// DailyRecord represents a row from the calheat_daily_aggregates table.
type DailyRecord struct {
	RunID     int64
	Day       string
	Count     float64
	Threshold int32
	Color     string
}

// RunParams describes the heatmap run being recorded.
type RunParams struct {
	Aggregation  AggregationMethod
	Hue          Hue
	DarkMode     bool
	ConfigParams map[string]any
}
