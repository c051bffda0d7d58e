package schema

import "sort"

// Palette is an ordered list of buckets with strictly increasing thresholds.
type Palette []Bucket

// Colors returns the palette as a threshold to color map.
func (p Palette) Colors() map[int]string {
	out := make(map[int]string, len(p))
	for _, b := range p {
		out[b.Threshold] = b.Color
	}
	return out
}

// Thresholds returns the bucket thresholds in ascending order.
func (p Palette) Thresholds() []int {
	out := make([]int, len(p))
	for i, b := range p {
		out[i] = b.Threshold
	}
	sort.Ints(out)
	return out
}

// Select returns the first bucket whose threshold is strictly greater than count.
// Counts at or above every threshold fall into the last bucket.
func (p Palette) Select(count float64) Bucket {
	if len(p) == 0 {
		return Bucket{}
	}
	for _, b := range p {
		if float64(b.Threshold) > count {
			return b
		}
	}
	return p[len(p)-1]
}

// Legend returns the buckets shown in a legend strip. The bucket at 1 repeats
// the empty color of bucket 0 and is left out.
func (p Palette) Legend() []Bucket {
	out := make([]Bucket, 0, len(p))
	for _, b := range p {
		if b.Threshold == 1 {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

// EnrichedDay adds presentation data to a DailyAggregate.
type EnrichedDay struct {
	DailyAggregate
	Bucket int    `json:"bucket"`
	Color  string `json:"color"`
}

// MaxCount returns the largest count across days, or 0 when there are none.
func MaxCount(days []DailyAggregate) float64 {
	if len(days) == 0 {
		return 0
	}
	m := days[0].Count
	for _, d := range days[1:] {
		m = max(m, d.Count)
	}
	return m
}

// EnrichDays pairs every day with the bucket it falls into.
func EnrichDays(days []DailyAggregate, p Palette) []EnrichedDay {
	output := make([]EnrichedDay, len(days))
	for i, d := range days {
		b := p.Select(d.Count)
		output[i] = EnrichedDay{
			DailyAggregate: d,
			Bucket:         b.Threshold,
			Color:          b.Color,
		}
	}
	return output
}
