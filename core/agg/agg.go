// Package agg has aggregation logic for time-stamped numeric observations.
package agg

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/huangsam/calheat/schema"
)

// accumulator holds the running reduction for one calendar day.
type accumulator struct {
	sum   float64
	count int
	min   float64
	max   float64
}

// add folds a single value into the accumulator.
func (a *accumulator) add(v float64) {
	if a.count == 0 {
		a.min, a.max = v, v
	} else {
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	a.sum += v
	a.count++
}

// reduce returns the value for the given method. An empty accumulator yields 0.
func (a *accumulator) reduce(method schema.AggregationMethod) float64 {
	if a.count == 0 {
		return 0
	}
	switch method {
	case schema.CountAggregation:
		return float64(a.count)
	case schema.AvgAggregation:
		return a.sum / float64(a.count)
	case schema.MaxAggregation:
		return a.max
	case schema.MinAggregation:
		return a.min
	default:
		return a.sum
	}
}

// NormalizeMethod maps unrecognized methods to sum.
func NormalizeMethod(method schema.AggregationMethod) schema.AggregationMethod {
	if _, ok := schema.ValidAggregationMethods[method]; ok {
		return method
	}
	return schema.SumAggregation
}

// Aggregate groups observations by calendar day in the process-local time zone
// and reduces each day with the given method.
func Aggregate(series []schema.Series, method schema.AggregationMethod) []schema.DailyAggregate {
	return AggregateIn(series, method, time.Local)
}

// AggregateIn is Aggregate with an explicit calendar location. A nil location
// means time.Local.
//
// Series without a time field or a value field are skipped. Null, NaN and
// infinite values are skipped, as are timestamps that cannot be read.
// The output has one entry per day with at least one valid value, sorted
// ascending by date, and is never nil.
func AggregateIn(series []schema.Series, method schema.AggregationMethod, loc *time.Location) []schema.DailyAggregate {
	if loc == nil {
		loc = time.Local
	}
	method = NormalizeMethod(method)

	days := make(map[string]*accumulator)
	for _, s := range series {
		timeField, valueField, ok := FindFields(s)
		if !ok {
			continue
		}
		n := min(len(timeField.Values), len(valueField.Values))
		for i := range n {
			v, ok := ToFloat(valueField.Values[i])
			if !ok {
				continue
			}
			ms, ok := ToEpochMillis(timeField.Values[i])
			if !ok {
				continue
			}
			key := DateKey(ms, loc)
			acc, exists := days[key]
			if !exists {
				acc = &accumulator{}
				days[key] = acc
			}
			acc.add(v)
		}
	}

	result := make([]schema.DailyAggregate, 0, len(days))
	for date, acc := range days {
		result = append(result, schema.DailyAggregate{
			Date:  date,
			Count: Round2(acc.reduce(method)),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

// FindFields returns the first time field and the first number field whose
// name is not the reserved time field name.
func FindFields(s schema.Series) (timeField, valueField *schema.Field, ok bool) {
	for i := range s.Fields {
		f := &s.Fields[i]
		switch {
		case timeField == nil && f.Type == schema.TimeField:
			timeField = f
		case valueField == nil && f.Type == schema.NumberField && f.Name != schema.ReservedTimeFieldName:
			valueField = f
		}
	}
	return timeField, valueField, timeField != nil && valueField != nil
}

// DateKey formats an epoch-millisecond timestamp as YYYY/MM/DD in loc.
func DateKey(epochMillis int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(epochMillis).In(loc).Format(schema.DateLayout)
}

// maxRoundable is the largest magnitude that can be scaled by 100 without
// overflowing. Floats that large are whole numbers already.
const maxRoundable = math.MaxFloat64 / 100

// Round2 rounds to two decimals, half away from zero. Values beyond
// maxRoundable are returned unchanged.
func Round2(v float64) float64 {
	if math.Abs(v) > maxRoundable {
		return v
	}
	return math.Round(v*100) / 100
}

// ToFloat reads a numeric cell. It reports false for nil, NaN, infinities
// and anything that is not a number.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case *float64:
		if n == nil {
			return 0, false
		}
		f = *n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToEpochMillis reads a time cell as epoch milliseconds.
func ToEpochMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case uint32:
		return int64(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	default:
		return 0, false
	}
}
