package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmeow/SpongeCommon/internal/config"
)

// writeTestConfig points logs and snapshots at a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	content := fmt.Sprintf(`{
		"logLevel": "debug",
		"logsDir": %q,
		"storage": { "type": "memory", "memory": { "outputDir": "" } }
	}`, filepath.Join(dir, "logs"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0644))
	return dir
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--version"}, nil, &out))
	assert.Contains(t, out.String(), CurrentVersion)
}

func TestRun_NoCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(nil, nil, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	dir := writeTestConfig(t)
	var out bytes.Buffer
	err := run([]string{"--config", dir, "bogus"}, nil, &out)
	assert.EqualError(t, err, `unknown command "bogus"`)
}

func TestRun_Palette(t *testing.T) {
	dir := writeTestConfig(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"-c", dir, "palette"}, nil, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 17)
	assert.True(t, strings.HasPrefix(lines[0], "DYE"))
	assert.Contains(t, lines[1], "white")
	assert.Contains(t, lines[1], "#e6e6e6")
	for _, l := range lines[1:] {
		assert.True(t, strings.HasSuffix(l, "ok"), l)
	}
}

func TestRun_Variants(t *testing.T) {
	dir := writeTestConfig(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", dir, "variants"}, nil, &out))

	got := out.String()
	assert.Contains(t, got, "minecraft:sunflower")
	assert.Contains(t, got, "tile.doublePlant.syringa.name")
	assert.Contains(t, got, "Lilac")
	assert.Len(t, strings.Split(strings.TrimSpace(got), "\n"), 7)
}

func TestRun_VariantsSelected(t *testing.T) {
	dir := writeTestConfig(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", dir, "variants", "paeonia"}, nil, &out))
	assert.Contains(t, out.String(), "minecraft:paeonia")
	assert.NotContains(t, out.String(), "sunflower")

	out.Reset()
	err := run([]string{"--config", dir, "variants", "tulip"}, nil, &out)
	assert.EqualError(t, err, `unknown variant "tulip"`)
}

func TestRun_REPL(t *testing.T) {
	dir := writeTestConfig(t)
	in := strings.NewReader(strings.Join([]string{
		":VERSION:",
		"# comment",
		"",
		":VARIANT:ID:|sunflower",
		":NOPE:",
		"quit",
		":VERSION:",
	}, "\n"))

	var out bytes.Buffer
	require.NoError(t, run([]string{"--config", dir, "repl"}, in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		fmt.Sprintf(`["ok", ":VERSION:", "%s"]`, CurrentVersion),
		`["ok", ":VARIANT:ID:", "minecraft:sunflower"]`,
		`["error", ":NOPE:", "no handler registered"]`,
	}, lines)
}

func TestRun_REPLSnapshot(t *testing.T) {
	dir := writeTestConfig(t)
	outDir := filepath.Join(dir, "stacks")
	a, err := newApp(dir)
	require.NoError(t, err)
	viper.Set("storage.memory.outputDir", outDir)
	viper.Set("storage.memory.compressOutput", false)
	require.NoError(t, a.initStorage())

	var out bytes.Buffer
	in := strings.NewReader(":ITEM:NEW:|minecraft:leather_helmet\n")
	require.NoError(t, a.runREPL(in, &out))
	assert.True(t, strings.HasPrefix(out.String(), `["ok", ":ITEM:NEW:", "`), out.String())
	require.NoError(t, a.close())

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))
}

func TestRun_SetupDBRequiresDatabase(t *testing.T) {
	dir := writeTestConfig(t)
	var out bytes.Buffer
	err := run([]string{"--config", dir, "setupdb"}, nil, &out)
	assert.EqualError(t, err, "setupdb requires storage.type sqlite or postgres")
}

func TestRun_SetupDBSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stacks.db")
	cfgDir := writeTestConfig(t)
	a, err := newApp(cfgDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.close() })
	viper.Set("storage.type", "sqlite")
	viper.Set("storage.sqlite.path", dbPath)
	viper.Set("storage.sqlite.dumpInterval", "0s")

	require.NoError(t, a.runSetupDB())
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestLoadConfig_MissingFallsBackToDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	err := loadConfig(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, "memory", viper.GetString("storage.type"))
}
