package translation

import (
	"golang.org/x/text/language"

	"github.com/itsmeow/SpongeCommon/pkg/api"
)

// Translation is a handle on one locale key in a catalog.
type Translation struct {
	key    string
	cat    *Catalog
	locale language.Tag
}

var _ api.Translation = (*Translation)(nil)

// New returns a handle for key. The default locale is the catalog fallback.
func (c *Catalog) New(key string) *Translation {
	return &Translation{key: key, cat: c, locale: c.fallback}
}

// Factory returns a constructor usable wherever a func(key) api.Translation is
// expected.
func (c *Catalog) Factory() func(string) api.Translation {
	return func(key string) api.Translation { return c.New(key) }
}

func (t *Translation) ID() string {
	return t.key
}

func (t *Translation) Get() string {
	return t.cat.Translate(t.locale, t.key)
}

func (t *Translation) GetIn(tag language.Tag) string {
	return t.cat.Translate(tag, t.key)
}

func (t *Translation) String() string {
	return t.key
}
