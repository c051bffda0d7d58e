package schema

// Custom string types for type safety.
type (
	// AggregationMethod selects how same-day values are reduced to one number.
	AggregationMethod string

	// Hue represents a named color family independent of shade.
	Hue string

	// Shade represents one of four lightness levels within a hue.
	Shade string

	// FieldType represents the semantic type of a series field.
	FieldType string

	// OutputMode represents the format of the output.
	OutputMode string

	// ThemeMode represents the light or dark variant of the display theme.
	ThemeMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All aggregation methods supported.
const (
	SumAggregation   AggregationMethod = "sum" // default
	CountAggregation AggregationMethod = "count"
	AvgAggregation   AggregationMethod = "avg"
	MaxAggregation   AggregationMethod = "max"
	MinAggregation   AggregationMethod = "min"
)

// All hues supported.
const (
	RedHue    Hue = "red"
	OrangeHue Hue = "orange"
	YellowHue Hue = "yellow"
	GreenHue  Hue = "green" // default
	BlueHue   Hue = "blue"
	PurpleHue Hue = "purple"
)

// Shades ordered from lightest to darkest.
const (
	SuperLightShade Shade = "super-light"
	LightShade      Shade = "light"
	SemiDarkShade   Shade = "semi-dark"
	DarkShade       Shade = "dark"
)

// All field types recognized in a series.
const (
	TimeField    FieldType = "time"
	NumberField  FieldType = "number"
	StringField  FieldType = "string"
	BooleanField FieldType = "boolean"
	OtherField   FieldType = "other"
)

// ReservedTimeFieldName is never picked as the value field of a series.
const ReservedTimeFieldName = "Time"

// DateLayout is the zero-padded layout of DailyAggregate.Date.
const DateLayout = "2006/01/02"

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All theme modes supported.
const (
	LightTheme ThemeMode = "light" // default
	DarkTheme  ThemeMode = "dark"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllAggregationMethods returns a list of all supported aggregation methods.
var AllAggregationMethods = []AggregationMethod{SumAggregation, CountAggregation, AvgAggregation, MaxAggregation, MinAggregation}

// AllHues returns a list of all supported hues.
var AllHues = []Hue{RedHue, OrangeHue, YellowHue, GreenHue, BlueHue, PurpleHue}

// AllShades returns the shades from lightest to darkest.
var AllShades = []Shade{SuperLightShade, LightShade, SemiDarkShade, DarkShade}

// ValidAggregationMethods lists all valid aggregation methods.
var ValidAggregationMethods = map[AggregationMethod]struct{}{
	SumAggregation:   {},
	CountAggregation: {},
	AvgAggregation:   {},
	MaxAggregation:   {},
	MinAggregation:   {},
}

// ValidHues lists all valid hues.
var ValidHues = map[Hue]struct{}{
	RedHue:    {},
	OrangeHue: {},
	YellowHue: {},
	GreenHue:  {},
	BlueHue:   {},
	PurpleHue: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidThemeModes lists all valid theme modes.
var ValidThemeModes = map[ThemeMode]struct{}{
	LightTheme: {},
	DarkTheme:  {},
}

// ValidDatabaseBackends lists all valid run store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
