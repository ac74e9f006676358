// Package engine holds the vanilla tables the shim adapts: block variants,
// dye values and item types, as the embedding engine defines them.
package engine

// DoublePlant is a variant of the two-block-tall plant block.
type DoublePlant struct {
	rawName        string
	translationKey string
}

func (p DoublePlant) RawName() string           { return p.rawName }
func (p DoublePlant) RawTranslationKey() string { return p.translationKey }

var (
	Sunflower   = DoublePlant{"sunflower", "sunflower"}
	Syringa     = DoublePlant{"syringa", "syringa"}
	DoubleGrass = DoublePlant{"double_grass", "grass"}
	DoubleFern  = DoublePlant{"double_fern", "fern"}
	DoubleRose  = DoublePlant{"double_rose", "rose"}
	Paeonia     = DoublePlant{"paeonia", "paeonia"}
)

var doublePlants = []DoublePlant{Sunflower, Syringa, DoubleGrass, DoubleFern, DoubleRose, Paeonia}

// DoublePlants returns every variant in metadata order.
func DoublePlants() []DoublePlant {
	out := make([]DoublePlant, len(doublePlants))
	copy(out, doublePlants)
	return out
}

// DoublePlantByName finds a variant by raw name.
func DoublePlantByName(name string) (DoublePlant, bool) {
	for _, p := range doublePlants {
		if p.rawName == name {
			return p, true
		}
	}
	return DoublePlant{}, false
}
