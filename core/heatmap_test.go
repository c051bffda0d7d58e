package core

import (
	"testing"
	"time"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/theme"
	"github.com/huangsam/calheat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// observations builds a series with one time and one number field.
func observations(name string, times []time.Time, values []any) schema.Series {
	ts := make([]any, len(times))
	for i, t := range times {
		ts[i] = t
	}
	return schema.Series{
		Name: name,
		Fields: []schema.Field{
			{Name: "Time", Type: schema.TimeField, Values: ts},
			{Name: "value", Type: schema.NumberField, Values: values},
		},
	}
}

func day(d, h int) time.Time {
	return time.Date(2024, time.January, d, h, 0, 0, 0, time.UTC)
}

func TestBuildHeatmap(t *testing.T) {
	series := []schema.Series{
		observations("a", []time.Time{day(1, 9), day(1, 17), day(3, 12)}, []any{2.0, 3.0, 10.0}),
		observations("b", []time.Time{day(2, 8)}, []any{nil}),
	}
	opts := HeatmapOptions{
		Aggregation: schema.SumAggregation,
		Hue:         schema.GreenHue,
		EmptyColor:  "#EBEDF0",
		Location:    time.UTC,
		Lookup:      theme.Default(false),
	}

	result := BuildHeatmap(series, opts)

	assert.Equal(t, schema.SumAggregation, result.Aggregation)
	assert.Equal(t, schema.GreenHue, result.Hue)
	assert.False(t, result.DarkMode)
	assert.Equal(t, 10.0, result.MaxCount)
	assert.Equal(t, []schema.DailyAggregate{
		{Date: "2024/01/01", Count: 5},
		{Date: "2024/01/03", Count: 10},
	}, result.Days)
	assert.Equal(t, []int{0, 1, 4, 6, 9, 11}, result.Palette.Thresholds())
	assert.Equal(t, "#EBEDF0", result.Palette[0].Color)
	assert.Equal(t, "#C8F2C2", result.Palette[2].Color)
	assert.Equal(t, "#37872D", result.Palette[5].Color)
}

func TestBuildHeatmap_Fallbacks(t *testing.T) {
	series := []schema.Series{
		observations("a", []time.Time{day(1, 9), day(1, 10)}, []any{4.0, 8.0}),
	}
	opts := HeatmapOptions{
		Aggregation: "median",
		Hue:         "teal",
		DarkMode:    true,
		Location:    time.UTC,
		Lookup:      theme.Default(true),
	}

	result := BuildHeatmap(series, opts)

	assert.Equal(t, schema.SumAggregation, result.Aggregation)
	assert.Equal(t, schema.GreenHue, result.Hue)
	assert.True(t, result.DarkMode)
	assert.Equal(t, []schema.DailyAggregate{{Date: "2024/01/01", Count: 12}}, result.Days)
	assert.Equal(t, schema.DarkShade, result.Palette[2].Shade, "dark mode starts with the darkest shade")
}

func TestBuildHeatmap_NoData(t *testing.T) {
	result := BuildHeatmap(nil, HeatmapOptions{Location: time.UTC})

	assert.NotNil(t, result.Days)
	assert.Empty(t, result.Days)
	assert.Equal(t, 0.0, result.MaxCount)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, result.Palette.Thresholds())
	for _, b := range result.Palette {
		assert.Empty(t, b.Color, "nil lookup yields empty colors")
	}
}

func TestBuildHeatmap_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	series := []schema.Series{
		observations("a", []time.Time{time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)}, []any{1.0}),
	}

	utc := BuildHeatmap(series, HeatmapOptions{Location: time.UTC})
	jst := BuildHeatmap(series, HeatmapOptions{Location: tokyo})

	assert.Equal(t, "2024/01/01", utc.Days[0].Date)
	assert.Equal(t, "2024/01/02", jst.Days[0].Date)
}

func TestBuildPalette(t *testing.T) {
	lookup := &contract.MockColorLookup{}
	for _, shade := range schema.AllShades {
		lookup.On("ShadeColor", shade, schema.BlueHue).Return("#" + string(shade))
	}

	result := BuildPalette(100, HeatmapOptions{Hue: schema.BlueHue, EmptyColor: "#000000", Lookup: lookup})

	assert.Equal(t, schema.BlueHue, result.Hue)
	assert.Equal(t, 100.0, result.MaxCount)
	assert.Equal(t, []int{0, 1, 26, 51, 76, 101}, result.Palette.Thresholds())
	assert.Equal(t, "#super-light", result.Palette[2].Color)
	assert.Equal(t, "#dark", result.Palette[5].Color)
	lookup.AssertExpectations(t)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &contract.Config{
		Aggregation: schema.MaxAggregation,
		Hue:         schema.RedHue,
		Theme:       schema.DarkTheme,
		Location:    time.UTC,
	}

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, schema.MaxAggregation, opts.Aggregation)
	assert.Equal(t, schema.RedHue, opts.Hue)
	assert.True(t, opts.DarkMode)
	assert.Equal(t, theme.Default(true).EmptyColor(), opts.EmptyColor)
	assert.Equal(t, time.UTC, opts.Location)
	assert.Equal(t, "#C4162A", opts.Lookup.ShadeColor(schema.DarkShade, schema.RedHue))

	cfg.EmptyColor = "#123456"
	cfg.HueOverrides = map[schema.Hue]string{schema.RedHue: "#FF0000"}
	opts, err = OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "#123456", opts.EmptyColor)
	assert.NotEqual(t, "#C4162A", opts.Lookup.ShadeColor(schema.DarkShade, schema.RedHue))

	cfg.HueOverrides = map[schema.Hue]string{schema.RedHue: "nope"}
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}

func TestClipSeries(t *testing.T) {
	start := day(2, 0)
	end := day(3, 0).Add(-time.Nanosecond)
	inWindow := func(t time.Time) bool { return !t.Before(start) && !t.After(end) }

	s := observations("a", []time.Time{day(1, 12), day(2, 0), day(2, 23), day(3, 0)}, []any{1.0, 2.0, 3.0, 4.0})
	s.Fields[0].Values = append(s.Fields[0].Values, "garbage")
	s.Fields[1].Values = append(s.Fields[1].Values, 5.0)
	noTime := schema.Series{Name: "plain", Fields: []schema.Field{{Name: "v", Type: schema.NumberField, Values: []any{1.0}}}}

	clipped := ClipSeries([]schema.Series{s, noTime}, inWindow)

	require.Len(t, clipped, 2)
	assert.Equal(t, "a", clipped[0].Name)
	assert.Equal(t, []any{day(2, 0), day(2, 23)}, clipped[0].Fields[0].Values)
	assert.Equal(t, []any{2.0, 3.0}, clipped[0].Fields[1].Values)
	assert.Equal(t, noTime, clipped[1])

	// Input is untouched
	assert.Len(t, s.Fields[0].Values, 5)
}
