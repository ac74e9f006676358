// Package variant resolves engine block variants to plugin-facing identities.
package variant

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/text/language"

	"github.com/itsmeow/SpongeCommon/pkg/api"
)

// Source is an engine-side enumerated variant.
type Source interface {
	RawName() string
	RawTranslationKey() string
}

// TranslationFactory builds a translation handle for a locale key.
type TranslationFactory func(key string) api.Translation

// ErrInvalidVariant is returned when a resolver is built from an unusable source.
var ErrInvalidVariant = errors.New("invalid variant")

const (
	// DefaultNamespace prefixes every identifier.
	DefaultNamespace = api.Namespace
	// DefaultKeyFormat builds the locale key of a double plant variant.
	DefaultKeyFormat = "tile.doublePlant.%s.name"
)

type options struct {
	namespace    string
	keyFormat    string
	translations TranslationFactory
}

// Option configures a Resolver.
type Option func(*options)

// WithNamespace overrides the identifier namespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithKeyFormat overrides the locale key format. It must contain one %s.
func WithKeyFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.keyFormat = format
		}
	}
}

// WithTranslations sets the factory used to build the translation handle.
func WithTranslations(f TranslationFactory) Option {
	return func(o *options) {
		if f != nil {
			o.translations = f
		}
	}
}

// Resolver exposes a variant as an api.DoublePlantType.
type Resolver struct {
	src  Source
	opts options

	// translation is built on first use and never replaced.
	translation atomic.Pointer[translationBox]
}

type translationBox struct {
	t api.Translation
}

var _ api.DoublePlantType = (*Resolver)(nil)

// NewResolver wraps src. The source must have a non-empty raw name.
func NewResolver(src Source, opts ...Option) (*Resolver, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidVariant)
	}
	if strings.TrimSpace(src.RawName()) == "" {
		return nil, fmt.Errorf("%w: empty raw name", ErrInvalidVariant)
	}

	o := options{
		namespace:    DefaultNamespace,
		keyFormat:    DefaultKeyFormat,
		translations: func(key string) api.Translation { return fixedTranslation(key) },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resolver{src: src, opts: o}, nil
}

// ID returns "<namespace>:<raw name>".
func (r *Resolver) ID() string {
	return r.opts.namespace + ":" + r.src.RawName()
}

// Name returns the raw translation key unchanged.
func (r *Resolver) Name() string {
	return r.src.RawTranslationKey()
}

// TranslationKey returns the locale key the translation handle is built from.
func (r *Resolver) TranslationKey() string {
	return fmt.Sprintf(r.opts.keyFormat, r.src.RawTranslationKey())
}

// Translation returns the cached translation handle, building it on first
// call. Concurrent first calls may each build a handle but all callers get the
// one that was published first.
func (r *Resolver) Translation() api.Translation {
	if b := r.translation.Load(); b != nil {
		return b.t
	}
	fresh := &translationBox{t: r.opts.translations(r.TranslationKey())}
	if r.translation.CompareAndSwap(nil, fresh) {
		return fresh.t
	}
	return r.translation.Load().t
}

// Cached reports whether the translation handle has been built.
func (r *Resolver) Cached() bool {
	return r.translation.Load() != nil
}

// Source returns the wrapped engine variant.
func (r *Resolver) Source() Source {
	return r.src
}

// fixedTranslation is used when no catalog is configured; it renders as its key.
type fixedTranslation string

func (f fixedTranslation) ID() string  { return string(f) }
func (f fixedTranslation) Get() string { return string(f) }
func (f fixedTranslation) GetIn(language.Tag) string {
	return string(f)
}
