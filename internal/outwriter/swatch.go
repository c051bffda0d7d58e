package outwriter

import (
	"github.com/fatih/color"
	"github.com/huangsam/calheat/internal/theme"
)

// swatchWidth is the number of blank cells painted per color sample.
const swatchWidth = "  "

// swatch paints a small block in the given color. It returns the plain hex
// when colors are disabled or the color cannot be parsed.
func swatch(hex string, useColors bool) string {
	if !useColors {
		return hex
	}
	r, g, b, err := theme.RGB(hex)
	if err != nil {
		return hex
	}
	c := color.BgRGB(int(r), int(g), int(b))
	c.EnableColor()
	return c.Sprint(swatchWidth)
}

// labeledSwatch shows the swatch next to its hex value.
func labeledSwatch(hex string, useColors bool) string {
	if !useColors {
		return hex
	}
	return swatch(hex, true) + " " + hex
}
