package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/itsmeow/SpongeCommon/internal/config"
	"github.com/itsmeow/SpongeCommon/internal/database"
	"github.com/itsmeow/SpongeCommon/internal/storage"
	"github.com/itsmeow/SpongeCommon/internal/storage/memory"
	pgstorage "github.com/itsmeow/SpongeCommon/internal/storage/postgres"
	sqlitestorage "github.com/itsmeow/SpongeCommon/internal/storage/sqlite"
)

func (a *app) createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		a.logger.Info("Postgres storage backend initialized")
		return pgstorage.New(pgstorage.Dependencies{
			Manager:    database.NewManager(a.zlog),
			Types:      a.types,
			LogManager: a.slog,
			Namespace:  viper.GetString("namespace"),
		}), nil

	case "sqlite":
		dumpPath := storageCfg.SQLite.Path
		if dumpPath == "" {
			dumpPath = filepath.Join(viper.GetString("logsDir"),
				fmt.Sprintf("%s_%s.db", ServiceName, a.sessionStart.Format("20060102_150405")))
		}
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     dumpPath,
		}, a.types, a.slog, a.zlog)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		a.logger.Info("SQLite storage backend initialized", "dumpPath", dumpPath)
		return backend, nil

	case "memory", "":
		a.logger.Info("Memory storage backend initialized")
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}
