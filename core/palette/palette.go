// Package palette builds the bucketed color scale of a calendar heatmap.
package palette

import (
	"math"
	"slices"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/schema"
)

// Thresholds of the two buckets that always carry the empty color.
const (
	emptyZero = 0
	emptyOne  = 1
)

// quantiles of the rounded maximum assigned to each shade, in shade order.
var quantiles = [4]float64{0.25, 0.5, 0.75, 1}

// NormalizeHue maps unrecognized hues to green.
func NormalizeHue(hue schema.Hue) schema.Hue {
	if _, ok := schema.ValidHues[hue]; ok {
		return hue
	}
	return schema.GreenHue
}

// maxSafeInteger caps SafeMax so the int conversion and the +1 steps in
// Bounds cannot overflow.
const maxSafeInteger = 1 << 53

// SafeMax rounds maxCount up to an integer, floors it at 0, caps it at 2^53
// and maps non-finite values to 0.
func SafeMax(maxCount float64) int {
	if math.IsNaN(maxCount) || math.IsInf(maxCount, 0) {
		return 0
	}
	return int(math.Min(maxSafeInteger, math.Max(0, math.Ceil(maxCount))))
}

// Shades returns the four shades in bucket order. Light mode goes from
// lightest to darkest, dark mode the other way around.
func Shades(isDarkMode bool) []schema.Shade {
	shades := slices.Clone(schema.AllShades)
	if isDarkMode {
		slices.Reverse(shades)
	}
	return shades
}

// Bounds returns the four shade thresholds for maxCount. They are strictly
// increasing and never below 2.
func Bounds(maxCount float64) [4]int {
	safeMax := SafeMax(maxCount)
	var bounds [4]int
	prev := emptyOne
	for i, q := range quantiles {
		desired := int(math.Round(float64(safeMax)*q)) + 1
		bound := max(prev+1, max(2, desired))
		bounds[i] = bound
		prev = bound
	}
	return bounds
}

// Build returns six buckets: 0 and 1 with emptyColor, then one bucket per shade
// whose threshold comes from Bounds. Unknown hues fall back to green and a nil
// lookup yields empty shade colors. Build never fails.
func Build(hue schema.Hue, maxCount float64, isDarkMode bool, lookup contract.ColorLookup, emptyColor string) schema.Palette {
	hue = NormalizeHue(hue)
	shades := Shades(isDarkMode)
	bounds := Bounds(maxCount)

	p := make(schema.Palette, 0, 2+len(bounds))
	p = append(p,
		schema.Bucket{Threshold: emptyZero, Color: emptyColor},
		schema.Bucket{Threshold: emptyOne, Color: emptyColor},
	)
	for i, bound := range bounds {
		color := ""
		if lookup != nil {
			color = lookup.ShadeColor(shades[i], hue)
		}
		p = append(p, schema.Bucket{Threshold: bound, Color: color, Shade: shades[i]})
	}
	return p
}
