package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pointRecorder struct {
	mu     sync.Mutex
	points []*influxdb2_write.Point
}

func (r *pointRecorder) WritePoint(p *influxdb2_write.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points = append(r.points, p)
	return nil
}

func (r *pointRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.points)
}

func fixed(n int) Counter { return func() int { return n } }

func TestGetStatus(t *testing.T) {
	s := NewService(Dependencies{
		BackendName: "sqlite",
		QueueLen:    fixed(4),
		Resolvers:   fixed(2),
		Stacks:      fixed(9),
		LastFlush:   func() time.Duration { return 2500 * time.Microsecond },
	})

	st := s.GetStatus()
	assert.Equal(t, "sqlite", st.Backend)
	assert.Equal(t, 4, st.WriteQueue)
	assert.Equal(t, 2, st.CachedResolvers)
	assert.Equal(t, 9, st.CachedStacks)
	assert.Equal(t, 2.5, st.LastFlushMs)
}

func TestGetStatus_NilCounters(t *testing.T) {
	st := NewService(Dependencies{}).GetStatus()
	assert.Zero(t, st.WriteQueue)
	assert.Zero(t, st.LastFlushMs)
}

func TestStatusPoint(t *testing.T) {
	st := Status{Time: time.Unix(10, 0), Backend: "memory", WriteQueue: 1, CachedStacks: 3}
	line := influxdb2_write.PointToLineProtocol(st.Point(), time.Second)
	assert.Contains(t, line, "shim_status,backend=memory ")
	assert.Contains(t, line, "write_queue=1i")
	assert.Contains(t, line, "cached_stacks=3i")
}

func TestReport_WritesSinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	rec := &pointRecorder{}
	s := NewService(Dependencies{
		BackendName: "memory",
		Stacks:      fixed(1),
		Points:      rec,
		StatusFile:  path,
	})

	s.Report()
	assert.Equal(t, 1, rec.len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "memory", st.Backend)
	assert.Equal(t, 1, st.CachedStacks)
}

func TestStartStop(t *testing.T) {
	rec := &pointRecorder{}
	s := NewService(Dependencies{Points: rec, Interval: 5 * time.Millisecond})

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return rec.len() >= 2 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}
