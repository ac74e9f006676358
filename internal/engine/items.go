package engine

import "github.com/itsmeow/SpongeCommon/internal/item"

func armorSet(material item.Material, prefix string) []*item.Type {
	return []*item.Type{
		{Name: prefix + "_helmet", Armor: true, Material: material, Slot: item.SlotHead},
		{Name: prefix + "_chestplate", Armor: true, Material: material, Slot: item.SlotChest},
		{Name: prefix + "_leggings", Armor: true, Material: material, Slot: item.SlotLegs},
		{Name: prefix + "_boots", Armor: true, Material: material, Slot: item.SlotFeet},
	}
}

// ItemTypes returns the vanilla item types the shim knows about: every armour
// piece plus the non-armour items that can carry a display colour.
func ItemTypes() []*item.Type {
	var types []*item.Type
	types = append(types, armorSet(item.MaterialLeather, "leather")...)
	types = append(types, armorSet(item.MaterialChainmail, "chainmail")...)
	types = append(types, armorSet(item.MaterialIron, "iron")...)
	types = append(types, armorSet(item.MaterialGold, "golden")...)
	types = append(types, armorSet(item.MaterialDiamond, "diamond")...)
	types = append(types,
		&item.Type{Name: "potion"},
		&item.Type{Name: "filled_map"},
		&item.Type{Name: "firework_charge"},
		&item.Type{Name: "wool"},
		&item.Type{Name: "stick"},
	)
	return types
}

// NewItemRegistry returns a registry holding ItemTypes.
func NewItemRegistry() *item.Registry {
	return item.NewRegistry(ItemTypes()...)
}
