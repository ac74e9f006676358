package color

import "github.com/itsmeow/SpongeCommon/pkg/api"

// DyeRamp maps a dye to normalized RGB components in [0,1].
type DyeRamp interface {
	Ramp(d api.DyeColor) [3]float32
}

// RampFunc adapts a function to DyeRamp.
type RampFunc func(d api.DyeColor) [3]float32

func (f RampFunc) Ramp(d api.DyeColor) [3]float32 {
	return f(d)
}

// channel scales a component to 0..255, truncating toward zero.
func channel(f float32) int {
	v := float32(f * 255)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return int(v)
	}
}

// DyeToRGB returns the packed RGB value of d.
func (r *Resolver) DyeToRGB(d api.DyeColor) int32 {
	return PackRGB(r.FromDyeColor(d))
}

// FromDyeColor converts d to an exact colour via the ramp.
func (r *Resolver) FromDyeColor(d api.DyeColor) api.Color {
	c := r.ramp.Ramp(d)
	return api.Color{
		R: uint8(channel(c[0])),
		G: uint8(channel(c[1])),
		B: uint8(channel(c[2])),
	}
}

// FromColor returns the first dye, in palette order, whose converted colour
// equals c exactly. Colours matching no dye yield White.
func (r *Resolver) FromColor(c api.Color) api.DyeColor {
	for _, d := range api.DyeColors() {
		if r.FromDyeColor(d) == c {
			return d
		}
	}
	return api.White
}

// Palette returns the converted colour of every dye in palette order.
func (r *Resolver) Palette() []api.Color {
	dyes := api.DyeColors()
	out := make([]api.Color, len(dyes))
	for i, d := range dyes {
		out[i] = r.FromDyeColor(d)
	}
	return out
}
