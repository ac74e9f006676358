// Package memory implements storage.Backend with an in-process map and a JSON
// snapshot written on Close.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/config"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/storage"
)

// Backend stores stacks in memory and exports them to JSON on Close.
type Backend struct {
	cfg    config.MemoryConfig
	stacks map[uuid.UUID]*item.Stack
	mu     sync.RWMutex

	now            func() time.Time
	lastExportPath string
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:    cfg,
		stacks: make(map[uuid.UUID]*item.Stack),
		now:    time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the current stacks when an output directory is configured.
func (b *Backend) Close() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exportJSON()
}

func (b *Backend) SaveStack(s *item.Stack) error {
	if s == nil {
		return fmt.Errorf("save stack: %w", item.ErrNilType)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stacks[s.ID] = s.Clone()
	return nil
}

// SaveStacks stores a batch under one lock.
func (b *Backend) SaveStacks(stacks []*item.Stack) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range stacks {
		if s != nil {
			b.stacks[s.ID] = s.Clone()
		}
	}
	return nil
}

func (b *Backend) LoadStack(id uuid.UUID) (*item.Stack, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.stacks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return s.Clone(), nil
}

func (b *Backend) DeleteStack(id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.stacks[id]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(b.stacks, id)
	return nil
}

func (b *Backend) ListStacks() ([]uuid.UUID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(b.stacks))
	for id := range b.stacks {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids, nil
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

// ExportedFilePath returns the path of the last snapshot written by Close.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
