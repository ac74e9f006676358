package api

import "strings"

// DyeColor is one entry of the fixed 16-colour dye palette.
// The enumeration order is significant: palette lookups scan in this order.
type DyeColor uint8

const (
	White DyeColor = iota
	Orange
	Magenta
	LightBlue
	Yellow
	Lime
	Pink
	Gray
	Silver
	Cyan
	Purple
	Blue
	Brown
	Green
	Red
	Black
)

var dyeNames = [...]string{
	White:     "white",
	Orange:    "orange",
	Magenta:   "magenta",
	LightBlue: "light_blue",
	Yellow:    "yellow",
	Lime:      "lime",
	Pink:      "pink",
	Gray:      "gray",
	Silver:    "silver",
	Cyan:      "cyan",
	Purple:    "purple",
	Blue:      "blue",
	Brown:     "brown",
	Green:     "green",
	Red:       "red",
	Black:     "black",
}

// DyeColors returns every dye in enumeration order.
func DyeColors() []DyeColor {
	out := make([]DyeColor, len(dyeNames))
	for i := range dyeNames {
		out[i] = DyeColor(i)
	}
	return out
}

// DyeColorByName looks a dye up by its name, ignoring case.
func DyeColorByName(name string) (DyeColor, bool) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), Namespace+":")
	for i, n := range dyeNames {
		if n == name {
			return DyeColor(i), true
		}
	}
	return White, false
}

// Valid reports whether d is a palette entry.
func (d DyeColor) Valid() bool {
	return int(d) < len(dyeNames)
}

// Name returns the lower_snake_case dye name.
func (d DyeColor) Name() string {
	if !d.Valid() {
		return "unknown"
	}
	return dyeNames[d]
}

// ID returns the namespaced identifier.
func (d DyeColor) ID() string {
	return Namespace + ":" + d.Name()
}

func (d DyeColor) String() string {
	return d.Name()
}

// Namespace is the identifier namespace of vanilla catalog types.
const Namespace = "minecraft"
