// Package postgres implements storage.Backend on a PostgreSQL server.
package postgres

import (
	"fmt"

	"github.com/itsmeow/SpongeCommon/internal/database"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/logging"
	gormstorage "github.com/itsmeow/SpongeCommon/internal/storage/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
type Dependencies struct {
	Manager    *database.Manager
	Types      *item.Registry
	LogManager *logging.SlogManager
	// DSN overrides the connection string built from the db.* config keys.
	DSN       string
	Namespace string
}

// Backend connects in Init and delegates everything else to the GORM backend.
type Backend struct {
	*gormstorage.Backend
	deps Dependencies
}

// New creates a new Postgres storage backend. No connection is made until Init.
func New(deps Dependencies) *Backend {
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			Types:      deps.Types,
			LogManager: deps.LogManager,
		}),
		deps: deps,
	}
}

// Init connects, runs the schema setup and initializes the GORM backend.
func (b *Backend) Init() error {
	dsn := b.deps.DSN
	if dsn == "" {
		dsn = database.PostgresDSN()
	}
	if err := b.deps.Manager.OpenPostgres(dsn); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := b.deps.Manager.Setup(b.deps.Namespace); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.Backend.SetDB(b.deps.Manager.DB)
	return b.Backend.Init()
}

// Close releases the cache and the connection.
func (b *Backend) Close() error {
	_ = b.Backend.Close()
	return b.deps.Manager.Close()
}
