package contract

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/calheat/schema"
	"github.com/lucasb-eyer/go-colorful"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MinPrecision     = 1
	MaxPrecision     = 4
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a heatmap run.
// This struct remains the "final, validated" config.
type Config struct {
	InputPaths  []string
	Aggregation schema.AggregationMethod
	Hue         schema.Hue
	Theme       schema.ThemeMode
	EmptyColor  string // Empty means the theme canvas color
	Location    *time.Location
	StartTime   time.Time // Zero means unbounded
	EndTime     time.Time // Zero means unbounded
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	MaxCount    float64 // Only used by the palette command

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	// HueOverrides maps a hue to a custom base color in hex
	HueOverrides map[schema.Hue]string

	UseColors bool // Enable colored swatches in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPaths []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Aggregation   string `mapstructure:"aggregation"`
	Hue           string `mapstructure:"hue"`
	Theme         string `mapstructure:"theme"`
	EmptyColor    string `mapstructure:"empty-color"`
	Timezone      string `mapstructure:"timezone"`
	Start         string `mapstructure:"start"`
	End           string `mapstructure:"end"`
	Precision     int    `mapstructure:"precision"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Color         string `mapstructure:"color"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`

	// --- Fields from paletteCmd.Flags() ---
	Max float64 `mapstructure:"max"`

	// --- Custom hue base colors from config file ---
	Hues map[string]string `mapstructure:"hues"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.InputPaths != nil {
		clone.InputPaths = slices.Clone(c.InputPaths)
	}
	if c.HueOverrides != nil {
		clone.HueOverrides = make(map[schema.Hue]string, len(c.HueOverrides))
		maps.Copy(clone.HueOverrides, c.HueOverrides)
	}
	return &clone
}

// IsDark reports whether the dark theme is selected.
func (c *Config) IsDark() bool {
	return c.Theme == schema.DarkTheme
}

// GetLocation returns the calendar location, defaulting to time.Local.
func (c *Config) GetLocation() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// InWindow reports whether t falls inside the configured time window.
// Zero bounds are open.
func (c *Config) InWindow(t time.Time) bool {
	if !c.StartTime.IsZero() && t.Before(c.StartTime) {
		return false
	}
	if !c.EndTime.IsZero() && t.After(c.EndTime) {
		return false
	}
	return true
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDomainInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processHueOverrides(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputPaths = input.InputPaths
	cfg.OutputFile = input.OutputFile

	// Parse color flag; "auto" is resolved by the caller
	if !strings.EqualFold(input.Color, "auto") {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		cfg.UseColors = colors
	}

	// --- 1. Precision and Output Validation ---
	if input.Precision < MinPrecision || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between %d and %d (received %d)", MinPrecision, MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 2. Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	return ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect)
}

// processDomainInputs handles aggregation, hue, theme and palette inputs.
// Unknown aggregations and hues are not fatal: they fall back to the defaults
// with a warning.
func processDomainInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Aggregation = schema.AggregationMethod(strings.ToLower(strings.TrimSpace(input.Aggregation)))
	if _, ok := schema.ValidAggregationMethods[cfg.Aggregation]; !ok {
		if cfg.Aggregation != "" {
			LogWarn("unknown aggregation, using sum", fmt.Errorf("%q", input.Aggregation))
		}
		cfg.Aggregation = schema.SumAggregation
	}

	cfg.Hue = schema.Hue(strings.ToLower(strings.TrimSpace(input.Hue)))
	if _, ok := schema.ValidHues[cfg.Hue]; !ok {
		if cfg.Hue != "" {
			LogWarn("unknown hue, using green", fmt.Errorf("%q", input.Hue))
		}
		cfg.Hue = schema.GreenHue
	}

	cfg.Theme = schema.ThemeMode(strings.ToLower(strings.TrimSpace(input.Theme)))
	if cfg.Theme == "" {
		cfg.Theme = schema.LightTheme
	}
	if _, ok := schema.ValidThemeModes[cfg.Theme]; !ok {
		return fmt.Errorf("invalid theme '%s'. must be light, dark", input.Theme)
	}

	cfg.EmptyColor = strings.TrimSpace(input.EmptyColor)
	if cfg.EmptyColor != "" {
		if _, err := colorful.Hex(cfg.EmptyColor); err != nil {
			return fmt.Errorf("invalid empty color '%s': %w", input.EmptyColor, err)
		}
	}

	loc, err := LoadLocation(input.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", input.Timezone, err)
	}
	cfg.Location = loc

	if math.IsNaN(input.Max) || math.IsInf(input.Max, 0) || input.Max < 0 {
		return fmt.Errorf("max must be a finite non-negative number (received %v)", input.Max)
	}
	cfg.MaxCount = input.Max

	return nil
}

// processTimeRange handles the date parsing and time range validation.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	// --- Process Start Time ---
	if input.Start != "" {
		t, err := ParseTimeBound(input.Start, now, cfg.GetLocation())
		if err != nil {
			return fmt.Errorf("invalid start date format for '%s': %w", input.Start, err)
		}
		cfg.StartTime = t
	}

	// --- Process End Time ---
	if input.End != "" {
		t, err := ParseTimeBound(input.End, now, cfg.GetLocation())
		if err != nil {
			return fmt.Errorf("invalid end date format for '%s': %w", input.End, err)
		}
		// A plain date ends the window after the whole day
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(input.End)); err == nil {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		cfg.EndTime = t
	}

	// --- Final Validation ---
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	return nil
}

// processHueOverrides validates custom base colors from the config file.
func processHueOverrides(cfg *Config, input *ConfigRawInput) error {
	cfg.HueOverrides = nil
	if len(input.Hues) == 0 {
		return nil
	}

	overrides := make(map[schema.Hue]string, len(input.Hues))
	for name, hex := range input.Hues {
		hue := schema.Hue(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := schema.ValidHues[hue]; !ok {
			return fmt.Errorf("invalid hue '%s' in hues. must be red, orange, yellow, green, blue, purple", name)
		}
		if _, err := colorful.Hex(strings.TrimSpace(hex)); err != nil {
			return fmt.Errorf("invalid color '%s' for hue %s: %w", hex, hue, err)
		}
		overrides[hue] = strings.TrimSpace(hex)
	}
	cfg.HueOverrides = overrides
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
