// Package gormstorage implements storage.Backend on any GORM dialect. The
// SQLite and Postgres backends embed it and only add connection handling.
package gormstorage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/logging"
	"github.com/itsmeow/SpongeCommon/internal/model"
	"github.com/itsmeow/SpongeCommon/internal/model/convert"
	"github.com/itsmeow/SpongeCommon/internal/storage"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 5 * time.Minute
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	Types      *item.Registry
	LogManager *logging.SlogManager
	CacheSize  int
	CacheTTL   time.Duration
}

// Backend implements storage.Backend with a read-through LRU in front of the
// item_stacks table.
type Backend struct {
	deps  Dependencies
	cache *expirable.LRU[uuid.UUID, *item.Stack]
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.CacheSize <= 0 {
		deps.CacheSize = defaultCacheSize
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = defaultCacheTTL
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{deps: deps}
}

// SetDB injects the connection when it is only known after New, as with the
// Postgres backend which connects in Init.
func (b *Backend) SetDB(db *gorm.DB) {
	b.deps.DB = db
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema and creates the cache.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend: no database")
	}
	if b.deps.Types == nil {
		return errors.New("gorm backend: no item registry")
	}
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.cache = expirable.NewLRU[uuid.UUID, *item.Stack](b.deps.CacheSize, nil, b.deps.CacheTTL)
	return nil
}

// Close drops the cache. The connection belongs to whoever opened it.
func (b *Backend) Close() error {
	if b.cache != nil {
		b.cache.Purge()
	}
	return nil
}

func (b *Backend) SaveStack(s *item.Stack) error {
	return b.SaveStacks([]*item.Stack{s})
}

// SaveStacks upserts rows by stack ID in one statement. Stacks that cannot be
// converted are left out and reported as *storage.InvalidStackError; the rest
// are still written.
func (b *Backend) SaveStacks(stacks []*item.Stack) error {
	var invalid []error
	rows := make([]model.ItemStack, 0, len(stacks))
	saved := make([]*item.Stack, 0, len(stacks))
	for _, s := range stacks {
		row, err := convert.StackToModel(s)
		if err != nil {
			b.deps.LogManager.WriteLog("gorm:SaveStacks", fmt.Sprintf("Skipping stack: %v", err), "WARN")
			inv := &storage.InvalidStackError{Err: err}
			if s != nil {
				inv.ID = s.ID
			}
			invalid = append(invalid, inv)
			continue
		}
		rows = append(rows, row)
		saved = append(saved, s)
	}
	if len(rows) == 0 {
		return errors.Join(invalid...)
	}

	err := b.deps.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stack_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "item_type", "count", "nbt", "tag", "color"}),
	}).Create(&rows).Error
	if err != nil {
		b.deps.LogManager.WriteLog("gorm:SaveStacks", fmt.Sprintf("Failed to save %d stacks: %v", len(rows), err), "ERROR")
		return errors.Join(append(invalid, fmt.Errorf("save stacks: %w", err))...)
	}

	for _, s := range saved {
		b.cache.Add(s.ID, s.Clone())
	}
	return errors.Join(invalid...)
}

func (b *Backend) LoadStack(id uuid.UUID) (*item.Stack, error) {
	if s, ok := b.cache.Get(id); ok {
		return s.Clone(), nil
	}

	var row model.ItemStack
	err := b.deps.DB.Where("stack_id = ?", id.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load stack %s: %w", id, err)
	}

	s, err := convert.ModelToStack(row, b.deps.Types)
	if err != nil {
		return nil, err
	}
	b.cache.Add(id, s.Clone())
	return s, nil
}

func (b *Backend) DeleteStack(id uuid.UUID) error {
	b.cache.Remove(id)

	res := b.deps.DB.Where("stack_id = ?", id.String()).Delete(&model.ItemStack{})
	if res.Error != nil {
		return fmt.Errorf("delete stack %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func (b *Backend) ListStacks() ([]uuid.UUID, error) {
	var raw []string
	if err := b.deps.DB.Model(&model.ItemStack{}).Order("stack_id").Pluck("stack_id", &raw).Error; err != nil {
		return nil, fmt.Errorf("list stacks: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			b.deps.LogManager.WriteLog("gorm:ListStacks", fmt.Sprintf("Skipping row with invalid stack id %q", r), "WARN")
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CachedCount returns the number of stacks held by the read cache.
func (b *Backend) CachedCount() int {
	if b.cache == nil {
		return 0
	}
	return b.cache.Len()
}
