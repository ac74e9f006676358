package engine

import "github.com/itsmeow/SpongeCommon/internal/item"

// DefaultLeatherColor is the undyed leather brown.
const DefaultLeatherColor int32 = 0xA06540

// ArmorColors reads armour colour the way the engine's armour item does.
type ArmorColors struct{}

// ArmorColor implements item.ArmorColorAccessor. Non-leather armour has no
// colour; leather reports display.color or the undyed default.
func (ArmorColors) ArmorColor(s *item.Stack) int32 {
	if !s.IsArmor() || s.Type.Material != item.MaterialLeather {
		return -1
	}
	if display, ok := s.SubCompound("display"); ok {
		if v, ok := display.IntOK("color"); ok {
			return v
		}
	}
	return DefaultLeatherColor
}
