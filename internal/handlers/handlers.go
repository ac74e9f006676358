// Package handlers implements the shim's host commands on top of the variant
// and colour resolvers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/cache"
	"github.com/itsmeow/SpongeCommon/internal/color"
	"github.com/itsmeow/SpongeCommon/internal/dispatcher"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/logging"
	"github.com/itsmeow/SpongeCommon/internal/parser"
	"github.com/itsmeow/SpongeCommon/internal/storage"
	"github.com/itsmeow/SpongeCommon/internal/translation"
	"github.com/itsmeow/SpongeCommon/internal/variant"
	"github.com/itsmeow/SpongeCommon/pkg/api"
)

// Persister writes stacks. *worker.Manager batches writes in the background;
// without one the service writes straight to the backend.
type Persister interface {
	Save(s *item.Stack) error
	Delete(id uuid.UUID) error
}

// Dependencies holds all dependencies for the handler service
type Dependencies struct {
	Variants   *variant.Registry
	Colors     *color.Resolver
	Types      *item.Registry
	Stacks     *cache.StackCache
	Backend    storage.Backend
	Persister  Persister // optional
	LogManager *logging.SlogManager
	Version    string
}

// Service handles all shim commands.
type Service struct {
	deps Dependencies
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Persister == nil {
		deps.Persister = direct{deps.Backend}
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Stacks == nil {
		deps.Stacks = cache.NewStackCache()
	}
	return &Service{deps: deps}
}

type direct struct {
	backend storage.Backend
}

func (d direct) Save(s *item.Stack) error {
	return d.backend.SaveStack(s)
}

func (d direct) Delete(id uuid.UUID) error {
	return d.backend.DeleteStack(id)
}

// RegisterHandlers registers every command with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", s.handleVersion)

	// Variant identity - pure lookups
	d.Register(":VARIANT:ID:", s.handleVariantID, dispatcher.MinArgs(1))
	d.Register(":VARIANT:NAME:", s.handleVariantName, dispatcher.MinArgs(1))
	d.Register(":VARIANT:TRANSLATION:", s.handleVariantTranslation, dispatcher.MinArgs(1))
	d.Register(":VARIANT:LIST:", s.handleVariantList)

	// Stack lifecycle - sync so the caller gets the id back
	d.Register(":ITEM:NEW:", s.handleItemNew, dispatcher.MinArgs(1), dispatcher.Logged())
	d.Register(":ITEM:GET:", s.handleItemGet, dispatcher.MinArgs(1))
	d.Register(":ITEM:DELETE:", s.handleItemDelete, dispatcher.MinArgs(1), dispatcher.Logged())

	// Colour
	d.Register(":COLOR:GET:", s.handleColorGet, dispatcher.MinArgs(1))
	d.Register(":COLOR:SET:", s.handleColorSet, dispatcher.MinArgs(2), dispatcher.Logged())
	d.Register(":COLOR:HAS:", s.handleColorHas, dispatcher.MinArgs(1))
	d.Register(":COLOR:INHERENT:", s.handleColorInherent, dispatcher.MinArgs(1))

	// Dye palette
	d.Register(":DYE:RGB:", s.handleDyeRGB, dispatcher.MinArgs(1))
	d.Register(":DYE:FROM:", s.handleDyeFrom, dispatcher.MinArgs(1))
	d.Register(":DYE:LIST:", s.handleDyeList)
}

func (s *Service) writeLog(functionName, data, level string) {
	s.deps.LogManager.WriteLog(functionName, data, level)
}

func boolResult(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func jsonResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Service) handleVersion(dispatcher.Event) (any, error) {
	return s.deps.Version, nil
}

// variant resolves a raw name, accepting the namespaced identifier as well.
func (s *Service) variant(arg string) (*variant.Resolver, error) {
	raw := parser.Clean(arg)
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		raw = raw[i+1:]
	}
	r, ok := s.deps.Variants.Get(raw)
	if !ok {
		return nil, fmt.Errorf("unknown variant %q", arg)
	}
	return r, nil
}

func (s *Service) handleVariantID(e dispatcher.Event) (any, error) {
	r, err := s.variant(e.Arg(0))
	if err != nil {
		return nil, err
	}
	return r.ID(), nil
}

func (s *Service) handleVariantName(e dispatcher.Event) (any, error) {
	r, err := s.variant(e.Arg(0))
	if err != nil {
		return nil, err
	}
	return r.Name(), nil
}

func (s *Service) handleVariantTranslation(e dispatcher.Event) (any, error) {
	r, err := s.variant(e.Arg(0))
	if err != nil {
		return nil, err
	}

	tr := r.Translation()
	locale := parser.Clean(e.Arg(1))
	if locale == "" {
		return tr.Get(), nil
	}
	tag, err := translation.ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	return tr.GetIn(tag), nil
}

func (s *Service) handleVariantList(dispatcher.Event) (any, error) {
	all := s.deps.Variants.All()
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID()
	}
	return jsonResult(ids)
}

// stack returns a copy of the stack, loading it into the cache on a miss.
func (s *Service) stack(arg string) (*item.Stack, error) {
	id, err := parser.ParseUUID(arg)
	if err != nil {
		return nil, err
	}
	if st, ok := s.deps.Stacks.Get(id); ok {
		return st, nil
	}
	st, err := s.deps.Backend.LoadStack(id)
	if err != nil {
		return nil, err
	}
	s.deps.Stacks.Put(st.Clone())
	return st, nil
}

func (s *Service) handleItemNew(e dispatcher.Event) (any, error) {
	typ, ok := s.deps.Types.ByName(parser.Clean(e.Arg(0)))
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", e.Arg(0))
	}
	tree, err := parser.ParseTag(e.Arg(1))
	if err != nil {
		return nil, err
	}
	count, err := parser.ParseCount(e.Arg(2))
	if err != nil {
		return nil, err
	}

	st, err := item.NewStack(typ, count)
	if err != nil {
		return nil, err
	}
	st.Tag = tree

	s.deps.Stacks.Put(st.Clone())
	if err := s.deps.Persister.Save(st); err != nil {
		return nil, fmt.Errorf("failed to save stack: %w", err)
	}
	return st.ID.String(), nil
}

func (s *Service) handleItemGet(e dispatcher.Event) (any, error) {
	st, err := s.stack(e.Arg(0))
	if err != nil {
		return nil, err
	}
	if st.Tag == nil {
		return "{}", nil
	}
	return jsonResult(st.Tag)
}

func (s *Service) handleItemDelete(e dispatcher.Event) (any, error) {
	id, err := parser.ParseUUID(e.Arg(0))
	if err != nil {
		return nil, err
	}
	s.deps.Stacks.Delete(id)
	if err := s.deps.Persister.Delete(id); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) handleColorGet(e dispatcher.Event) (any, error) {
	st, err := s.stack(e.Arg(0))
	if err != nil {
		return nil, err
	}
	c, ok := s.deps.Colors.ItemColor(st)
	if !ok {
		return "none", nil
	}
	return c.Hex(), nil
}

func (s *Service) handleColorSet(e dispatcher.Event) (any, error) {
	c, err := parser.ParseColor(e.Arg(1))
	if err != nil {
		return nil, err
	}
	// loads into the cache on a miss
	st, err := s.stack(e.Arg(0))
	if err != nil {
		return nil, err
	}

	updated, ok, err := s.deps.Stacks.Update(st.ID, func(cached *item.Stack) error {
		return s.deps.Colors.SetItemColor(cached, c)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// evicted between load and update
		if err := s.deps.Colors.SetItemColor(st, c); err != nil {
			return nil, err
		}
		s.deps.Stacks.Put(st.Clone())
		updated = st
	}

	if err := s.deps.Persister.Save(updated); err != nil {
		s.writeLog("handleColorSet", fmt.Sprintf("Failed to persist %s: %v", updated.ID, err), "ERROR")
		return nil, fmt.Errorf("failed to save stack: %w", err)
	}
	return nil, nil
}

func (s *Service) handleColorHas(e dispatcher.Event) (any, error) {
	st, err := s.stack(e.Arg(0))
	if err != nil {
		return nil, err
	}
	return boolResult(s.deps.Colors.HasColorInMetadata(st)), nil
}

func (s *Service) handleColorInherent(e dispatcher.Event) (any, error) {
	st, err := s.stack(e.Arg(0))
	if err != nil {
		return nil, err
	}
	return boolResult(s.deps.Colors.HasInherentColor(st)), nil
}

var errUnknownDye = errors.New("unknown dye")

func (s *Service) handleDyeRGB(e dispatcher.Event) (any, error) {
	d, ok := api.DyeColorByName(parser.Clean(e.Arg(0)))
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownDye, e.Arg(0))
	}
	return s.deps.Colors.FromDyeColor(d).Hex(), nil
}

func (s *Service) handleDyeFrom(e dispatcher.Event) (any, error) {
	c, err := parser.ParseColor(e.Arg(0))
	if err != nil {
		return nil, err
	}
	return s.deps.Colors.FromColor(c).Name(), nil
}

func (s *Service) handleDyeList(dispatcher.Event) (any, error) {
	dyes := api.DyeColors()
	names := make([]string, len(dyes))
	for i, d := range dyes {
		names[i] = d.Name()
	}
	return jsonResult(names)
}
