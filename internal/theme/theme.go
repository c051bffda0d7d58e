// Package theme resolves named hue shades to concrete hex colors.
package theme

import (
	"fmt"
	"maps"
	"strings"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/schema"
	"github.com/lucasb-eyer/go-colorful"
)

// baseShade is the unshaded middle tone of a hue. It is never picked by the
// palette builder but anchors custom hue derivation.
const baseShade schema.Shade = ""

// Canvas colors used for empty days.
const (
	lightCanvas = "#F4F5F5"
	darkCanvas  = "#111217"
)

// ShadeSet holds the five tones of one hue.
type ShadeSet map[schema.Shade]string

// namedColors mirrors the visualization palette of common dashboard tools.
var namedColors = map[schema.Hue]ShadeSet{
	schema.GreenHue: {
		schema.SuperLightShade: "#C8F2C2",
		schema.LightShade:      "#96D98D",
		baseShade:              "#73BF69",
		schema.SemiDarkShade:   "#56A64B",
		schema.DarkShade:       "#37872D",
	},
	schema.RedHue: {
		schema.SuperLightShade: "#FFA6B0",
		schema.LightShade:      "#FF7383",
		baseShade:              "#F2495C",
		schema.SemiDarkShade:   "#E02F44",
		schema.DarkShade:       "#C4162A",
	},
	schema.OrangeHue: {
		schema.SuperLightShade: "#FFCB7D",
		schema.LightShade:      "#FFB357",
		baseShade:              "#FF9830",
		schema.SemiDarkShade:   "#FF780A",
		schema.DarkShade:       "#FA6400",
	},
	schema.YellowHue: {
		schema.SuperLightShade: "#FFF899",
		schema.LightShade:      "#FFEE52",
		baseShade:              "#FADE2A",
		schema.SemiDarkShade:   "#F2CC0C",
		schema.DarkShade:       "#E0B400",
	},
	schema.BlueHue: {
		schema.SuperLightShade: "#C0D8FF",
		schema.LightShade:      "#8AB8FF",
		baseShade:              "#5794F2",
		schema.SemiDarkShade:   "#3274D9",
		schema.DarkShade:       "#1F60C4",
	},
	schema.PurpleHue: {
		schema.SuperLightShade: "#DEB6F2",
		schema.LightShade:      "#CA95E5",
		baseShade:              "#B877D9",
		schema.SemiDarkShade:   "#A352CC",
		schema.DarkShade:       "#8F3BB8",
	},
}

// Blend factors toward white or black for each derived shade.
var derivedShades = []struct {
	shade  schema.Shade
	target colorful.Color
	factor float64
}{
	{schema.SuperLightShade, colorful.Color{R: 1, G: 1, B: 1}, 0.6},
	{schema.LightShade, colorful.Color{R: 1, G: 1, B: 1}, 0.3},
	{schema.SemiDarkShade, colorful.Color{}, 0.15},
	{schema.DarkShade, colorful.Color{}, 0.3},
}

// Theme is a light or dark color theme.
type Theme struct {
	isDark bool
	colors map[schema.Hue]ShadeSet
}

var _ contract.ColorLookup = &Theme{} // Compile-time check

// New creates a theme. Each override replaces the shades of a hue with a set
// derived from the given base color.
func New(isDark bool, overrides map[schema.Hue]string) (*Theme, error) {
	colors := make(map[schema.Hue]ShadeSet, len(namedColors))
	maps.Copy(colors, namedColors)
	for hue, hex := range overrides {
		if _, ok := schema.ValidHues[hue]; !ok {
			return nil, fmt.Errorf("unknown hue %q", hue)
		}
		set, err := DeriveShades(hex)
		if err != nil {
			return nil, fmt.Errorf("hue %s: %w", hue, err)
		}
		colors[hue] = set
	}
	return &Theme{isDark: isDark, colors: colors}, nil
}

// Default returns the built-in theme without overrides.
func Default(isDark bool) *Theme {
	t, _ := New(isDark, nil)
	return t
}

// DeriveShades builds a full shade set around a base hex color by blending
// toward white and black in Lab space.
func DeriveShades(hex string) (ShadeSet, error) {
	base, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	set := ShadeSet{baseShade: strings.ToUpper(base.Hex())}
	for _, d := range derivedShades {
		set[d.shade] = strings.ToUpper(base.BlendLab(d.target, d.factor).Clamped().Hex())
	}
	return set, nil
}

// IsDark reports whether the theme is dark.
func (t *Theme) IsDark() bool {
	return t.isDark
}

// ShadeColor implements the ColorLookup interface. Unknown hues fall back to green.
func (t *Theme) ShadeColor(shade schema.Shade, hue schema.Hue) string {
	set, ok := t.colors[hue]
	if !ok {
		set = t.colors[schema.GreenHue]
	}
	if c, ok := set[shade]; ok {
		return c
	}
	return set[baseShade]
}

// EmptyColor returns the canvas background used for days without activity.
func (t *Theme) EmptyColor() string {
	if t.isDark {
		return darkCanvas
	}
	return lightCanvas
}

// ColorByName resolves names like "semi-dark-blue" or "green". Names that are
// already hex colors are normalized to upper case.
func (t *Theme) ColorByName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(name, "#") {
		c, err := colorful.Hex(name)
		if err != nil {
			return "", fmt.Errorf("invalid hex color %q: %w", name, err)
		}
		return strings.ToUpper(c.Hex()), nil
	}
	for _, shade := range schema.AllShades {
		prefix := string(shade) + "-"
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		hue := schema.Hue(strings.TrimPrefix(name, prefix))
		if _, ok := t.colors[hue]; ok {
			return t.ShadeColor(shade, hue), nil
		}
	}
	if set, ok := t.colors[schema.Hue(name)]; ok {
		return set[baseShade], nil
	}
	return "", fmt.Errorf("unknown color name %q", name)
}

// RGB returns the 8-bit channels of a hex color for terminal rendering.
func RGB(hex string) (r, g, b uint8, err error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return 0, 0, 0, err
	}
	r, g, b = c.RGB255()
	return r, g, b, nil
}
