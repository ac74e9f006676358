package api

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an exact 8-bit-per-channel RGB colour.
type Color struct {
	R, G, B uint8
}

// ColorOf decodes the low 24 bits of a packed 0xRRGGBB integer.
func ColorOf(rgb int32) Color {
	return Color{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
	}
}

// NewColor builds a colour from integer channels, clamping each into [0,255].
func NewColor(r, g, b int) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

// RGB packs the colour as (((R<<8)+G)<<8)+B.
func (c Color) RGB() int32 {
	return ((int32(c.R)<<8)+int32(c.G))<<8 + int32(c.B)
}

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return fmt.Sprintf("Color{%d,%d,%d}", c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// ColorFromHex parses "#rrggbb" (or the short "#rgb" form).
func ColorFromHex(s string) (Color, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

func clampChannel(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
