// Package schema has models and constants shared by all parts of calheat.
package schema

// Field is a named column of a series. Values hold raw cells as decoded from
// the source: numbers, timestamps, nil for missing cells.
type Field struct {
	Name   string    `json:"name"`
	Type   FieldType `json:"type"`
	Values []any     `json:"values"`
}

// Series is an ordered collection of fields that share row positions.
type Series struct {
	Name   string  `json:"name,omitempty"`
	Fields []Field `json:"fields"`
}

// Len returns the number of rows in the longest field.
func (s Series) Len() int {
	n := 0
	for _, f := range s.Fields {
		n = max(n, len(f.Values))
	}
	return n
}

// DailyAggregate is the reduction of every valid value observed on one calendar day.
type DailyAggregate struct {
	Date  string  `json:"date"`  // YYYY/MM/DD in the aggregation location
	Count float64 `json:"count"` // Reduced value rounded to two decimals
}

// Bucket maps an exclusive upper bound to a display color.
// Shade is empty for the two empty buckets.
type Bucket struct {
	Threshold int    `json:"threshold"`
	Color     string `json:"color"`
	Shade     Shade  `json:"shade,omitempty"`
}

// HeatmapResult holds everything a presentation layer needs to draw a calendar heatmap.
type HeatmapResult struct {
	Aggregation AggregationMethod `json:"aggregation"`
	Hue         Hue               `json:"hue"`
	DarkMode    bool              `json:"dark_mode"`
	MaxCount    float64           `json:"max_count"`
	Days        []DailyAggregate  `json:"days"`
	Palette     Palette           `json:"palette"`
}

// PaletteResult describes a palette built for a given maximum.
type PaletteResult struct {
	Hue      Hue     `json:"hue"`
	DarkMode bool    `json:"dark_mode"`
	MaxCount float64 `json:"max_count"`
	Palette  Palette `json:"palette"`
}
