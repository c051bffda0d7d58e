package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func samplePalette() Palette {
	return Palette{
		{Threshold: 0, Color: "empty"},
		{Threshold: 1, Color: "empty"},
		{Threshold: 4, Color: "c1", Shade: SuperLightShade},
		{Threshold: 6, Color: "c2", Shade: LightShade},
		{Threshold: 9, Color: "c3", Shade: SemiDarkShade},
		{Threshold: 11, Color: "c4", Shade: DarkShade},
	}
}

func TestPaletteSelect(t *testing.T) {
	p := samplePalette()
	tests := []struct {
		count float64
		want  int
	}{
		{-1, 0},
		{0, 1},
		{0.5, 1},
		{1, 4},
		{3.99, 4},
		{4, 6},
		{8, 9},
		{10, 11},
		{11, 11},
		{500, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Select(tt.count).Threshold, "count %v", tt.count)
	}

	assert.Equal(t, Bucket{}, Palette{}.Select(3))
}

func TestPaletteColorsAndLegend(t *testing.T) {
	p := samplePalette()

	colors := p.Colors()
	assert.Len(t, colors, 6)
	assert.Equal(t, "empty", colors[0])
	assert.Equal(t, "empty", colors[1])
	assert.Equal(t, "c4", colors[11])

	legend := p.Legend()
	assert.Len(t, legend, 5)
	for _, b := range legend {
		assert.NotEqual(t, 1, b.Threshold)
	}
	assert.Equal(t, []int{0, 1, 4, 6, 9, 11}, p.Thresholds())
}

func TestMaxCount(t *testing.T) {
	assert.Equal(t, 0.0, MaxCount(nil))
	assert.Equal(t, 7.5, MaxCount([]DailyAggregate{
		{Date: "2024/01/01", Count: 2},
		{Date: "2024/01/02", Count: 7.5},
		{Date: "2024/01/03", Count: 3},
	}))
	assert.Equal(t, -2.0, MaxCount([]DailyAggregate{{Date: "2024/01/01", Count: -2}}))
}

func TestEnrichDays(t *testing.T) {
	days := []DailyAggregate{
		{Date: "2024/01/01", Count: 0},
		{Date: "2024/01/02", Count: 5},
		{Date: "2024/01/03", Count: 10},
	}
	enriched := EnrichDays(days, samplePalette())

	assert.Len(t, enriched, 3)
	assert.Equal(t, 1, enriched[0].Bucket)
	assert.Equal(t, "empty", enriched[0].Color)
	assert.Equal(t, 6, enriched[1].Bucket)
	assert.Equal(t, "c2", enriched[1].Color)
	assert.Equal(t, 11, enriched[2].Bucket)
	assert.Equal(t, "2024/01/03", enriched[2].Date)
}

func TestSeriesLen(t *testing.T) {
	s := Series{Fields: []Field{
		{Name: "time", Type: TimeField, Values: []any{1, 2, 3}},
		{Name: "value", Type: NumberField, Values: []any{1}},
	}}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 0, Series{}.Len())
}
