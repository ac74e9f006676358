package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmeow/SpongeCommon/internal/config"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/storage"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*Backend)(nil)
	_ storage.BatchSaver = (*Backend)(nil)
	_ storage.Exporter   = (*Backend)(nil)
)

var potion = &item.Type{Name: "potion"}

func newStack(t *testing.T, color int32) *item.Stack {
	t.Helper()
	s, err := item.NewStack(potion, 1)
	require.NoError(t, err)
	s.GetOrCreateSubCompound("display").SetInt("color", color)
	return s
}

func TestSaveLoad(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Init())

	s := newStack(t, 0x112233)
	require.NoError(t, b.SaveStack(s))

	// later mutation of the caller's stack must not leak into storage
	s.Count = 64

	got, err := b.LoadStack(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	display, _ := got.SubCompound("display")
	assert.Equal(t, int32(0x112233), display.Int("color"))
}

func TestLoadDelete_NotFound(t *testing.T) {
	b := New(config.MemoryConfig{})

	_, err := b.LoadStack(uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, b.DeleteStack(uuid.New()), storage.ErrNotFound)
	assert.Error(t, b.SaveStack(nil))
}

func TestDeleteAndList(t *testing.T) {
	b := New(config.MemoryConfig{})
	a, c := newStack(t, 1), newStack(t, 2)
	require.NoError(t, b.SaveStacks([]*item.Stack{a, c, nil}))

	ids, err := b.ListStacks()
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.True(t, ids[0].String() < ids[1].String())

	require.NoError(t, b.DeleteStack(a.ID))
	ids, err = b.ListStacks()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ID}, ids)
}

func TestClose_NoOutputDir(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Close())
	assert.Empty(t, b.ExportedFilePath())
}

func TestClose_ExportsJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	b.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	s := newStack(t, 0xABCDEF)
	require.NoError(t, b.SaveStack(s))
	require.NoError(t, b.Close())

	path := b.ExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "stacks_20260304_050607.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export StackExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, ExportVersion, export.Version)
	require.Len(t, export.Stacks, 1)
	assert.Equal(t, s.ID, export.Stacks[0].ID)
	assert.Equal(t, "potion", export.Stacks[0].Type)
}

func TestClose_ExportsGzip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	require.NoError(t, b.SaveStack(newStack(t, 1)))
	require.NoError(t, b.Close())

	path := b.ExportedFilePath()
	assert.Equal(t, ".gz", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export StackExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Len(t, export.Stacks, 1)
}
