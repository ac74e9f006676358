package influx

import (
	"bufio"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBackup(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var lines []string
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

// connectUnreachable points the client at a closed port so Connect falls back
// to the backup file.
func connectUnreachable(t *testing.T) (*Manager, string) {
	t.Helper()
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", true)
	viper.Set("influx.protocol", "http")
	viper.Set("influx.host", "127.0.0.1")
	viper.Set("influx.port", "1")
	viper.Set("influx.bucket", "spongeshim")

	path := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(zerolog.Nop(), path)
	require.NoError(t, m.Connect())
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)
	return m, path
}

func TestConnect_Disabled(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", false)

	m := NewManager(zerolog.Nop(), "")
	assert.EqualError(t, m.Connect(), "influx.enabled is false")
}

func TestConnect_NoBucket(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", true)

	m := NewManager(zerolog.Nop(), "")
	assert.EqualError(t, m.Connect(), "influx.bucket not set")
}

func TestWritePoint_NotConnected(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	err := m.WritePoint(influxdb2_write.NewPointWithMeasurement("x"))
	assert.Error(t, err)
}

func TestWritePoint_Backup(t *testing.T) {
	m, path := connectUnreachable(t)

	p := influxdb2_write.NewPointWithMeasurement(MeasurementStatus).
		AddTag("backend", "memory").
		AddField("queue", 3)
	require.NoError(t, m.WritePoint(p))
	require.NoError(t, m.Close())

	lines := readBackup(t, path)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "shim_status,backend=memory queue=3i"))
}

func TestObserveCall_Backup(t *testing.T) {
	m, path := connectUnreachable(t)

	m.ObserveCall(":COLOR:GET:", 1500*time.Microsecond, nil)
	m.ObserveCall(":COLOR:SET:", time.Millisecond, errors.New("bad"))
	require.NoError(t, m.Close())

	lines := readBackup(t, path)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "command=:COLOR:GET:")
	assert.Contains(t, lines[0], "status=ok")
	assert.Contains(t, lines[0], "duration_ms=1.5")
	assert.Contains(t, lines[1], "status=error")
}

func TestClose_Idempotent(t *testing.T) {
	m, _ := connectUnreachable(t)
	require.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}
