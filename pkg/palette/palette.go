// Package palette derives stable colors from group names.
//
// The hue is a pure function of the group string, so identical groups get
// identical colors across runs, reloads and output formats. Dots use a
// saturated 45% lightness; interval bars use a lighter 85% variant of the
// same hue so titles drawn over them stay readable.
package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"unicode/utf16"

	"github.com/lucasb-eyer/go-colorful"
)

// Default is the color used for events without a group.
const Default = "#0077ff"

const (
	saturation     = 0.65
	pointLightness = 0.45
	barLightness   = 0.85
)

// Hue hashes s into a hue in [0, 360). The hash runs over UTF-16 code units
// with 32-bit wraparound: h = h*31 + unit.
func Hue(s string) int {
	var h uint32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(u)
	}
	return int(h % 360)
}

// Color returns the point color for group as "#rrggbb".
func Color(group string) string {
	if group == "" {
		return Default
	}
	return colorful.Hsl(float64(Hue(group)), saturation, pointLightness).Hex()
}

// BarColor returns the lighter interval color for group as "#rrggbb".
func BarColor(group string) string {
	if group == "" {
		return Default
	}
	return colorful.Hsl(float64(Hue(group)), saturation, barLightness).Hex()
}

// Parse decodes "#rgb", "#rrggbb" or "#rrggbbaa" into a non-premultiplied color.
func Parse(s string) (color.NRGBA, error) {
	alpha := uint8(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// NRGBA is like Parse but returns opaque black for malformed input.
func NRGBA(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	return c
}
