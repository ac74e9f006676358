// Package translation resolves locale keys to text using golang.org/x/text
// message catalogs loaded from key=value .lang files.
package translation

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed lang/*.lang
var bundled embed.FS

// Catalog holds translated strings for any number of locales.
type Catalog struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	fallback language.Tag
	keys     map[language.Tag]map[string]struct{}
}

// NewCatalog returns an empty catalog. Lookups for a key missing in the
// requested locale fall back to the fallback locale, then to the key itself.
func NewCatalog(fallback language.Tag) *Catalog {
	return &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(fallback)),
		fallback: fallback,
		keys:     make(map[language.Tag]map[string]struct{}),
	}
}

// NewDefaultCatalog returns a catalog preloaded with the bundled locales.
func NewDefaultCatalog(fallback language.Tag) (*Catalog, error) {
	c := NewCatalog(fallback)
	if _, err := c.LoadFS(bundled, "lang"); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseLocale accepts both engine style (en_US) and BCP 47 (en-US) names.
func ParseLocale(s string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return tag, nil
}

// Fallback returns the fallback locale.
func (c *Catalog) Fallback() language.Tag {
	return c.fallback
}

// Set adds or replaces one message.
func (c *Catalog) Set(tag language.Tag, key, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.builder.SetString(tag, key, msg); err != nil {
		return fmt.Errorf("set %s/%s: %w", tag, key, err)
	}
	if c.keys[tag] == nil {
		c.keys[tag] = make(map[string]struct{})
	}
	c.keys[tag][key] = struct{}{}
	return nil
}

// LoadDir loads every <locale>.lang file in dir.
func (c *Catalog) LoadDir(dir string) (int, error) {
	return c.LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads every <locale>.lang file in dir of fsys and returns the number
// of messages read.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) (int, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, fmt.Errorf("read lang dir: %w", err)
	}

	total := 0
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".lang" {
			continue
		}
		tag, err := ParseLocale(strings.TrimSuffix(e.Name(), ".lang"))
		if err != nil {
			return total, err
		}
		n, err := c.loadFile(fsys, path.Join(dir, e.Name()), tag)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c *Catalog) loadFile(fsys fs.FS, name string, tag language.Tag) (int, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, msg, ok := strings.Cut(line, "=")
		if !ok {
			return n, fmt.Errorf("%s:%d: missing '='", name, lineNo)
		}
		if err := c.Set(tag, strings.TrimSpace(key), msg); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("scan %s: %w", name, err)
	}
	return n, nil
}

// Translate returns the text for key in tag. Unknown keys come back verbatim.
func (c *Catalog) Translate(tag language.Tag, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resolved, ok := c.resolve(tag, key)
	if !ok {
		return key
	}
	p := message.NewPrinter(resolved, message.Catalog(c.builder))
	return p.Sprintf(key)
}

// resolve walks tag and its parents, then the fallback, for a locale that
// defines key.
func (c *Catalog) resolve(tag language.Tag, key string) (language.Tag, bool) {
	for t := tag; ; t = t.Parent() {
		if _, ok := c.keys[t][key]; ok {
			return t, true
		}
		if t == language.Und {
			break
		}
	}
	if _, ok := c.keys[c.fallback][key]; ok {
		return c.fallback, true
	}
	return language.Und, false
}

// Locales returns the locales holding at least one message.
func (c *Catalog) Locales() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]language.Tag, 0, len(c.keys))
	for tag := range c.keys {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
