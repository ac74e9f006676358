// Package item models item types and stacks as the engine sees them.
package item

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/tag"
)

// Material is the armour material an item type is made of.
type Material string

const (
	MaterialNone      Material = ""
	MaterialLeather   Material = "leather"
	MaterialChainmail Material = "chainmail"
	MaterialIron      Material = "iron"
	MaterialGold      Material = "gold"
	MaterialDiamond   Material = "diamond"
)

// Slot is the equipment slot an armour piece occupies.
type Slot string

const (
	SlotNone  Slot = ""
	SlotHead  Slot = "head"
	SlotChest Slot = "chest"
	SlotLegs  Slot = "legs"
	SlotFeet  Slot = "feet"
)

// Type is an item type definition. Types are shared, immutable values.
type Type struct {
	Name     string
	Armor    bool
	Material Material
	Slot     Slot
}

// ID returns the namespaced identifier of the type.
func (t *Type) ID() string {
	return "minecraft:" + t.Name
}

// ErrNilType is returned when a stack is built without an item type.
var ErrNilType = errors.New("item type is nil")

// Stack is a quantity of one item type plus its metadata tree.
// A nil Tag means the stack has no metadata at all.
type Stack struct {
	ID    uuid.UUID
	Type  *Type
	Count int
	Tag   tag.Compound
}

// NewStack creates a stack with a fresh identifier and no metadata.
func NewStack(t *Type, count int) (*Stack, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if count < 1 {
		return nil, fmt.Errorf("invalid stack count %d", count)
	}
	return &Stack{ID: uuid.New(), Type: t, Count: count}, nil
}

// HasTag reports whether the stack carries a metadata tree.
func (s *Stack) HasTag() bool {
	return s != nil && s.Tag != nil
}

// SubCompound returns the nested compound at key of the root tag.
func (s *Stack) SubCompound(key string) (tag.Compound, bool) {
	if !s.HasTag() {
		return nil, false
	}
	return s.Tag.Compound(key)
}

// GetOrCreateSubCompound returns the nested compound at key, creating the root
// tag and the compound as needed.
func (s *Stack) GetOrCreateSubCompound(key string) tag.Compound {
	if s.Tag == nil {
		s.Tag = tag.New()
	}
	return s.Tag.GetOrCreateCompound(key)
}

// IsArmor reports whether the stack's type is an armour piece.
func (s *Stack) IsArmor() bool {
	return s != nil && s.Type != nil && s.Type.Armor
}

// Clone returns a deep copy sharing the item type.
func (s *Stack) Clone() *Stack {
	if s == nil {
		return nil
	}
	return &Stack{ID: s.ID, Type: s.Type, Count: s.Count, Tag: s.Tag.Clone()}
}

// ArmorColorAccessor reads the colour an armour material stores on a stack.
// Implementations return -1 when no colour is set.
type ArmorColorAccessor interface {
	ArmorColor(s *Stack) int32
}

// ArmorColorFunc adapts a function to ArmorColorAccessor.
type ArmorColorFunc func(s *Stack) int32

func (f ArmorColorFunc) ArmorColor(s *Stack) int32 {
	return f(s)
}
