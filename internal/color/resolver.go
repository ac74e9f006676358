// Package color reads and writes item colour in the metadata tree and converts
// between the dye palette and exact RGB.
package color

import (
	"errors"

	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/pkg/api"
)

const (
	// DisplayKey is the root compound holding display properties.
	DisplayKey = "display"
	// ColorKey holds the packed 0xRRGGBB colour.
	ColorKey = "color"
	// NoColor is the accessor value for an unset armour colour.
	NoColor int32 = -1
)

// ErrNilStack is returned when a write is attempted on a nil stack.
var ErrNilStack = errors.New("item stack is nil")

// Resolver reads and writes item colours.
type Resolver struct {
	armor item.ArmorColorAccessor
	ramp  DyeRamp
}

// NewResolver creates a colour resolver. armor reads material-owned colour
// from armour stacks and ramp maps dyes to RGB components.
func NewResolver(armor item.ArmorColorAccessor, ramp DyeRamp) *Resolver {
	return &Resolver{armor: armor, ramp: ramp}
}

// ItemColor returns the colour stored on the stack, if any.
func (r *Resolver) ItemColor(s *item.Stack) (api.Color, bool) {
	if !s.HasTag() {
		return api.Color{}, false
	}
	if s.IsArmor() {
		if !s.Tag.HasKey(DisplayKey) || r.armor == nil {
			return api.Color{}, false
		}
		v := r.armor.ArmorColor(s)
		if v == NoColor {
			return api.Color{}, false
		}
		return api.ColorOf(v), true
	}

	// display.color first so SetItemColor always reads back
	if display, ok := s.Tag.Compound(DisplayKey); ok {
		if v, ok := display.IntOK(ColorKey); ok {
			return api.ColorOf(v), true
		}
	}
	if v, ok := s.Tag.IntOK(ColorKey); ok {
		return api.ColorOf(v), true
	}
	return api.Color{}, false
}

// SetItemColor stores c at display.color, creating the display compound if
// needed. Armour stacks use the same layout.
func (r *Resolver) SetItemColor(s *item.Stack, c api.Color) error {
	if s == nil {
		return ErrNilStack
	}
	s.GetOrCreateSubCompound(DisplayKey).SetInt(ColorKey, PackRGB(c))
	return nil
}

// HasColorInMetadata reports whether display.color is present.
func (r *Resolver) HasColorInMetadata(s *item.Stack) bool {
	display, ok := s.SubCompound(DisplayKey)
	return ok && display.HasKey(ColorKey)
}

// HasInherentColor reports whether the stack is leather armour, whose
// material carries a colour even when none is stored.
func (r *Resolver) HasInherentColor(s *item.Stack) bool {
	return s.IsArmor() && s.Type.Material == item.MaterialLeather
}

// PackRGB packs a colour as (((R<<8)+G)<<8)+B.
func PackRGB(c api.Color) int32 {
	return c.RGB()
}
