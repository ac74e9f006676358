package engine

import "github.com/itsmeow/SpongeCommon/pkg/api"

// dyeValues are the engine's 24-bit dye colours, indexed by api.DyeColor.
var dyeValues = [...]int32{
	api.White:     0xF9FFFE,
	api.Orange:    0xF9801D,
	api.Magenta:   0xC74EBD,
	api.LightBlue: 0x3AB3DA,
	api.Yellow:    0xFED83D,
	api.Lime:      0x80C71F,
	api.Pink:      0xF38BAA,
	api.Gray:      0x474F52,
	api.Silver:    0x9D9D97,
	api.Cyan:      0x169C9C,
	api.Purple:    0x8932B8,
	api.Blue:      0x3C44AA,
	api.Brown:     0x835432,
	api.Green:     0x5E7C16,
	api.Red:       0xB02E26,
	api.Black:     0x1D1D21,
}

// DyeValue returns the engine colour value of d, or 0 for an invalid dye.
func DyeValue(d api.DyeColor) int32 {
	if !d.Valid() {
		return 0
	}
	return dyeValues[d]
}

// DyeComponents splits the engine colour of d into [0,1] components.
func DyeComponents(d api.DyeColor) [3]float32 {
	v := DyeValue(d)
	return [3]float32{
		float32((v>>16)&0xFF) / 255,
		float32((v>>8)&0xFF) / 255,
		float32(v&0xFF) / 255,
	}
}

const (
	sheepWhite = float32(0.9019608)
	sheepShade = float32(0.75)
)

// SheepRamp is the fleece colour ramp: white is a fixed light grey and every
// other dye is its engine colour darkened to three quarters.
type SheepRamp struct{}

// Ramp implements color.DyeRamp.
func (SheepRamp) Ramp(d api.DyeColor) [3]float32 {
	if !d.Valid() {
		return [3]float32{}
	}
	if d == api.White {
		return [3]float32{sheepWhite, sheepWhite, sheepWhite}
	}
	c := DyeComponents(d)
	return [3]float32{c[0] * sheepShade, c[1] * sheepShade, c[2] * sheepShade}
}
