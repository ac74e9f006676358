// Package sqlitestorage implements storage.Backend with an in-memory SQLite
// database that is periodically written to disk via VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/itsmeow/SpongeCommon/internal/database"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/logging"
	gormstorage "github.com/itsmeow/SpongeCommon/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string
}

// Backend wraps the GORM backend with an in-memory database and dump loop.
type Backend struct {
	*gormstorage.Backend
	manager  *database.Manager
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New opens the in-memory database and wraps it.
func New(cfg Config, types *item.Registry, logManager *logging.SlogManager, dbLog zerolog.Logger) (*Backend, error) {
	m := database.NewManager(dbLog)
	if err := m.OpenSQLite(""); err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         m.DB,
			Types:      types,
			LogManager: logManager,
		}),
		manager:  m,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine, writes a final dump and closes the database.
func (b *Backend) Close() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.wg.Wait()

		if b.cfg.DumpPath != "" {
			if dumpErr := b.manager.DumpToDisk(b.cfg.DumpPath); dumpErr != nil {
				b.log.WriteLog("sqlite:Close", fmt.Sprintf("Error writing final dump: %v", dumpErr), "ERROR")
				err = dumpErr
			}
		}
		_ = b.Backend.Close()
		if closeErr := b.manager.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}

// ExportedFilePath returns the dump path once Close has written it.
func (b *Backend) ExportedFilePath() string {
	return b.cfg.DumpPath
}

func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := database.DumpMemoryDBToDisk(b.manager.DB, b.cfg.DumpPath); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
