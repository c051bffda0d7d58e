package agg

import (
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/calheat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ms returns epoch milliseconds for a UTC wall clock time.
func ms(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

// newSeries builds a series with a time field and a value field.
func newSeries(times, values []any) schema.Series {
	return schema.Series{Fields: []schema.Field{
		{Name: "Time", Type: schema.TimeField, Values: times},
		{Name: "Value", Type: schema.NumberField, Values: values},
	}}
}

func TestAggregateMethods(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 8), ms(2024, 1, 1, 20), ms(2024, 1, 2, 10)},
		[]any{2.0, 3.0, 5.0},
	)}

	tests := []struct {
		method schema.AggregationMethod
		want   []schema.DailyAggregate
	}{
		{schema.SumAggregation, []schema.DailyAggregate{{Date: "2024/01/01", Count: 5}, {Date: "2024/01/02", Count: 5}}},
		{schema.CountAggregation, []schema.DailyAggregate{{Date: "2024/01/01", Count: 2}, {Date: "2024/01/02", Count: 1}}},
		{schema.AvgAggregation, []schema.DailyAggregate{{Date: "2024/01/01", Count: 2.5}, {Date: "2024/01/02", Count: 5}}},
		{schema.MaxAggregation, []schema.DailyAggregate{{Date: "2024/01/01", Count: 3}, {Date: "2024/01/02", Count: 5}}},
		{schema.MinAggregation, []schema.DailyAggregate{{Date: "2024/01/01", Count: 2}, {Date: "2024/01/02", Count: 5}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateIn(series, tt.method, time.UTC))
		})
	}
}

func TestAggregateSkipsInvalidValues(t *testing.T) {
	var nilPtr *float64
	series := []schema.Series{newSeries(
		[]any{
			ms(2024, 1, 1, 1),
			ms(2024, 1, 1, 2),
			ms(2024, 1, 1, 3),
			ms(2024, 1, 1, 4),
			ms(2024, 1, 2, 5),
			ms(2024, 1, 3, 5),
		},
		[]any{nil, math.NaN(), 4.0, nilPtr, math.NaN(), math.Inf(1)},
	)}

	got := AggregateIn(series, schema.CountAggregation, time.UTC)
	assert.Equal(t, []schema.DailyAggregate{{Date: "2024/01/01", Count: 1}}, got)
}

func TestAggregateIsolatedNaNDayMissing(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 10), ms(2024, 1, 2, 10)},
		[]any{1.0, math.NaN()},
	)}

	got := AggregateIn(series, schema.SumAggregation, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, "2024/01/01", got[0].Date)
}

func TestAggregateEmpty(t *testing.T) {
	for _, method := range schema.AllAggregationMethods {
		got := Aggregate(nil, method)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Empty(t, Aggregate([]schema.Series{}, "bogus"))
}

func TestAggregateSkipsIncompleteSeries(t *testing.T) {
	series := []schema.Series{
		{Fields: []schema.Field{{Name: "Value", Type: schema.NumberField, Values: []any{1.0}}}},
		{Fields: []schema.Field{{Name: "Time", Type: schema.TimeField, Values: []any{ms(2024, 1, 1, 0)}}}},
		{Fields: []schema.Field{
			{Name: "Time", Type: schema.TimeField, Values: []any{ms(2024, 1, 1, 0)}},
			{Name: "Time", Type: schema.NumberField, Values: []any{9.0}},
		}},
		newSeries([]any{ms(2024, 3, 4, 12)}, []any{7.0}),
	}

	got := AggregateIn(series, schema.SumAggregation, time.UTC)
	assert.Equal(t, []schema.DailyAggregate{{Date: "2024/03/04", Count: 7}}, got)
}

func TestAggregateMergesSeriesAndSorts(t *testing.T) {
	series := []schema.Series{
		newSeries([]any{ms(2024, 2, 10, 1), ms(2023, 12, 31, 1)}, []any{1.0, 2.0}),
		newSeries([]any{ms(2024, 2, 10, 5)}, []any{4.0}),
	}

	got := AggregateIn(series, schema.SumAggregation, time.UTC)
	assert.Equal(t, []schema.DailyAggregate{
		{Date: "2023/12/31", Count: 2},
		{Date: "2024/02/10", Count: 5},
	}, got)
}

func TestAggregateRounding(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 1), ms(2024, 1, 1, 2), ms(2024, 1, 1, 3)},
		[]any{1.0, 1.0, 2.0},
	)}
	got := AggregateIn(series, schema.AvgAggregation, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, 1.33, got[0].Count)

	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 2.0, Round2(1.999))

	// Halves round away from zero on both sides.
	negative := []schema.Series{newSeries(
		[]any{ms(2024, 1, 2, 1), ms(2024, 1, 3, 1)},
		[]any{-0.125, 0.125},
	)}
	assert.Equal(t, []schema.DailyAggregate{
		{Date: "2024/01/02", Count: -0.13},
		{Date: "2024/01/03", Count: 0.13},
	}, AggregateIn(negative, schema.SumAggregation, time.UTC))
}

func TestAggregateHugeValues(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 1), ms(2024, 1, 2, 1)},
		[]any{1e307, -math.MaxFloat64},
	)}
	got := AggregateIn(series, schema.MaxAggregation, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, 1e307, got[0].Count)
	assert.Equal(t, -math.MaxFloat64, got[1].Count)

	_, err := json.Marshal(got)
	assert.NoError(t, err)
	assert.Equal(t, 4.5e13, Round2(4.5e13))
}

func TestAggregateUnknownMethodIsSum(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 1), ms(2024, 1, 1, 2)},
		[]any{1.5, 2.25},
	)}
	assert.Equal(t,
		AggregateIn(series, schema.SumAggregation, time.UTC),
		AggregateIn(series, "median", time.UTC),
	)
	assert.Equal(t, schema.SumAggregation, NormalizeMethod(""))
	assert.Equal(t, schema.MaxAggregation, NormalizeMethod(schema.MaxAggregation))
}

func TestAggregateUsesLocation(t *testing.T) {
	// 23:00 UTC is already the next day in UTC+2.
	series := []schema.Series{newSeries([]any{ms(2024, 5, 31, 23)}, []any{1.0})}

	assert.Equal(t, "2024/05/31", AggregateIn(series, schema.SumAggregation, time.UTC)[0].Date)
	assert.Equal(t, "2024/06/01", AggregateIn(series, schema.SumAggregation, time.FixedZone("UTC+2", 2*3600))[0].Date)
}

func TestAggregateLengthMismatch(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 1), ms(2024, 1, 2, 1), ms(2024, 1, 3, 1)},
		[]any{1.0},
	)}
	got := AggregateIn(series, schema.SumAggregation, time.UTC)
	assert.Equal(t, []schema.DailyAggregate{{Date: "2024/01/01", Count: 1}}, got)
}

func TestAggregateNegativeAndZeroValues(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 1), ms(2024, 1, 1, 2), ms(2024, 1, 2, 1)},
		[]any{-3.0, 1.0, 0.0},
	)}
	assert.Equal(t, []schema.DailyAggregate{
		{Date: "2024/01/01", Count: -3},
		{Date: "2024/01/02", Count: 0},
	}, AggregateIn(series, schema.MinAggregation, time.UTC))
}

func TestAggregateConcurrentUse(t *testing.T) {
	series := []schema.Series{newSeries(
		[]any{ms(2024, 1, 1, 1), ms(2024, 1, 2, 1)},
		[]any{1.0, 2.0},
	)}
	want := AggregateIn(series, schema.SumAggregation, time.UTC)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			assert.Equal(t, want, AggregateIn(series, schema.SumAggregation, time.UTC))
		})
	}
	wg.Wait()
}

func TestToFloat(t *testing.T) {
	f := 2.5
	tests := []struct {
		name  string
		in    any
		want  float64
		valid bool
	}{
		{"float64", 1.5, 1.5, true},
		{"float32", float32(0.5), 0.5, true},
		{"int", 3, 3, true},
		{"int64", int64(-4), -4, true},
		{"uint8", uint8(7), 7, true},
		{"json number", json.Number("12.25"), 12.25, true},
		{"bad json number", json.Number("x"), 0, false},
		{"pointer", &f, 2.5, true},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"neg inf", math.Inf(-1), 0, false},
		{"string", "1.0", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToEpochMillis(t *testing.T) {
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		in    any
		want  int64
		valid bool
	}{
		{"int64", int64(1700000000000), 1700000000000, true},
		{"float64", 1700000000000.0, 1700000000000, true},
		{"json int", json.Number("1700000000000"), 1700000000000, true},
		{"json float", json.Number("1.7e12"), 1700000000000, true},
		{"time", when, when.UnixMilli(), true},
		{"time pointer", &when, when.UnixMilli(), true},
		{"zero time", time.Time{}, 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"string", "2024-01-01", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToEpochMillis(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2024/03/05", DateKey(ms(2024, 3, 5, 12), time.UTC))
	assert.Equal(t, "1970/01/01", DateKey(0, time.UTC))
	assert.Len(t, DateKey(ms(2024, 3, 5, 12), nil), 10)
}

func TestFindFields(t *testing.T) {
	s := schema.Series{Fields: []schema.Field{
		{Name: "label", Type: schema.StringField},
		{Name: "Time", Type: schema.NumberField},
		{Name: "ts", Type: schema.TimeField},
		{Name: "first", Type: schema.NumberField},
		{Name: "second", Type: schema.NumberField},
	}}
	tf, vf, ok := FindFields(s)
	require.True(t, ok)
	assert.Equal(t, "ts", tf.Name)
	assert.Equal(t, "first", vf.Name)

	_, _, ok = FindFields(schema.Series{})
	assert.False(t, ok)
}
