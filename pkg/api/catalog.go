// Package api holds the stable, engine-agnostic types plugins compile against.
// Nothing in here may import engine internals.
package api

import "golang.org/x/text/language"

// CatalogType is anything with a stable namespaced identifier.
type CatalogType interface {
	// ID returns the namespaced identifier, e.g. "minecraft:sunflower".
	ID() string
	// Name returns the public name of the type.
	Name() string
}

// Translation is a handle on a localizable piece of text.
type Translation interface {
	// ID returns the locale key backing the translation.
	ID() string
	// Get returns the text in the default locale.
	Get() string
	// GetIn returns the text in the given locale.
	GetIn(tag language.Tag) string
}

// Translatable is implemented by types that expose a localizable name.
type Translatable interface {
	Translation() Translation
}

// DoublePlantType is the plugin-facing view of a two-block-tall plant variant.
type DoublePlantType interface {
	CatalogType
	Translatable
}
