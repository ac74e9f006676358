package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmeow/SpongeCommon/internal/model"
)

func newMemoryManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSQLite(""))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestPostgresDSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db.local")
	viper.Set("db.port", "6543")
	viper.Set("db.username", "u")
	viper.Set("db.password", "p")
	viper.Set("db.database", "shim")

	assert.Equal(t, "host=db.local port=6543 user=u password=p dbname=shim sslmode=disable", PostgresDSN())
}

func TestSetup_MigratesAndRecordsInfo(t *testing.T) {
	m := newMemoryManager(t)
	require.NoError(t, m.Setup("minecraft"))

	assert.True(t, m.DB.Migrator().HasTable(&model.ItemStack{}))

	var info model.ShimInfo
	require.NoError(t, m.DB.First(&info).Error)
	assert.Equal(t, model.SchemaVersion, info.SchemaVersion)
	assert.Equal(t, "minecraft", info.Namespace)

	// idempotent
	require.NoError(t, m.Setup("minecraft"))
	var count int64
	m.DB.Model(&model.ShimInfo{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSetup_NotOpen(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Setup("minecraft"))
	assert.NoError(t, m.Close())
}

func TestMemoryDatabasesAreIsolated(t *testing.T) {
	a := newMemoryManager(t)
	b := newMemoryManager(t)
	require.NoError(t, a.Setup("minecraft"))

	assert.True(t, a.DB.Migrator().HasTable(&model.ItemStack{}))
	assert.False(t, b.DB.Migrator().HasTable(&model.ItemStack{}))
}

func TestDumpToDisk(t *testing.T) {
	m := newMemoryManager(t)
	require.NoError(t, m.Setup("minecraft"))
	require.NoError(t, m.DB.Create(&model.ItemStack{StackID: "abc", ItemType: "stick", Count: 1}).Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))
	require.NoError(t, m.DumpToDisk(path))

	disk := NewManager(zerolog.Nop())
	require.NoError(t, disk.OpenSQLite(path))
	t.Cleanup(func() { _ = disk.Close() })

	var row model.ItemStack
	require.NoError(t, disk.DB.Where("stack_id = ?", "abc").First(&row).Error)
	assert.Equal(t, "stick", row.ItemType)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	m := newMemoryManager(t)
	assert.Error(t, DumpMemoryDBToDisk(m.DB, ""))
}
