package core

import (
	"time"

	"github.com/huangsam/calheat/core/agg"
	"github.com/huangsam/calheat/core/palette"
	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/theme"
	"github.com/huangsam/calheat/schema"
)

// HeatmapOptions controls how series become a heatmap.
type HeatmapOptions struct {
	Aggregation schema.AggregationMethod
	Hue         schema.Hue
	DarkMode    bool
	EmptyColor  string
	Location    *time.Location // nil means time.Local
	Lookup      contract.ColorLookup
}

// OptionsFromConfig builds heatmap options with a theme derived from cfg.
func OptionsFromConfig(cfg *contract.Config) (HeatmapOptions, error) {
	th, err := theme.New(cfg.IsDark(), cfg.HueOverrides)
	if err != nil {
		return HeatmapOptions{}, err
	}
	emptyColor := cfg.EmptyColor
	if emptyColor == "" {
		emptyColor = th.EmptyColor()
	}
	return HeatmapOptions{
		Aggregation: cfg.Aggregation,
		Hue:         cfg.Hue,
		DarkMode:    cfg.IsDark(),
		EmptyColor:  emptyColor,
		Location:    cfg.GetLocation(),
		Lookup:      th,
	}, nil
}

// BuildHeatmap aggregates the series per day and builds a palette scaled to
// the busiest day.
func BuildHeatmap(series []schema.Series, opts HeatmapOptions) schema.HeatmapResult {
	days := agg.AggregateIn(series, opts.Aggregation, opts.Location)
	maxCount := schema.MaxCount(days)
	return schema.HeatmapResult{
		Aggregation: agg.NormalizeMethod(opts.Aggregation),
		Hue:         palette.NormalizeHue(opts.Hue),
		DarkMode:    opts.DarkMode,
		MaxCount:    maxCount,
		Days:        days,
		Palette:     palette.Build(opts.Hue, maxCount, opts.DarkMode, opts.Lookup, opts.EmptyColor),
	}
}

// BuildPalette builds a palette for an explicit maximum.
func BuildPalette(maxCount float64, opts HeatmapOptions) schema.PaletteResult {
	return schema.PaletteResult{
		Hue:      palette.NormalizeHue(opts.Hue),
		DarkMode: opts.DarkMode,
		MaxCount: maxCount,
		Palette:  palette.Build(opts.Hue, maxCount, opts.DarkMode, opts.Lookup, opts.EmptyColor),
	}
}

// ClipSeries drops rows whose timestamp falls outside the window accepted by
// inWindow. Rows with unreadable timestamps are dropped too. Series without a
// time field are returned unchanged.
func ClipSeries(series []schema.Series, inWindow func(time.Time) bool) []schema.Series {
	out := make([]schema.Series, len(series))
	for i, s := range series {
		out[i] = clipOne(s, inWindow)
	}
	return out
}

// clipOne filters every field of s row by row.
func clipOne(s schema.Series, inWindow func(time.Time) bool) schema.Series {
	timeIdx := -1
	for i, f := range s.Fields {
		if f.Type == schema.TimeField {
			timeIdx = i
			break
		}
	}
	if timeIdx < 0 {
		return s
	}

	times := s.Fields[timeIdx].Values
	keep := make([]bool, len(times))
	for i, v := range times {
		ms, ok := agg.ToEpochMillis(v)
		keep[i] = ok && inWindow(time.UnixMilli(ms))
	}

	fields := make([]schema.Field, len(s.Fields))
	for j, f := range s.Fields {
		values := make([]any, 0, len(f.Values))
		for i, v := range f.Values {
			if i < len(keep) && keep[i] {
				values = append(values, v)
			}
		}
		fields[j] = schema.Field{Name: f.Name, Type: f.Type, Values: values}
	}
	return schema.Series{Name: s.Name, Fields: fields}
}
