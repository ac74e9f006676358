// Package monitor periodically reports shim status to the log, a status file
// and InfluxDB.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/itsmeow/SpongeCommon/internal/influx"
	"github.com/itsmeow/SpongeCommon/internal/logging"
)

// Counter is anything that can report a size.
type Counter func() int

// PointWriter receives status points. *influx.Manager implements it.
type PointWriter interface {
	WritePoint(point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager  *logging.SlogManager
	BackendName string
	QueueLen    Counter
	Resolvers   Counter
	Stacks      Counter
	LastFlush   func() time.Duration
	Points      PointWriter // optional
	StatusFile  string      // optional
	Interval    time.Duration
}

// Status is one snapshot of the shim's moving parts.
type Status struct {
	Time            time.Time `json:"time"`
	Backend         string    `json:"backend"`
	WriteQueue      int       `json:"writeQueue"`
	CachedResolvers int       `json:"cachedResolvers"`
	CachedStacks    int       `json:"cachedStacks"`
	LastFlushMs     float64   `json:"lastFlushMs"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Second
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func count(c Counter) int {
	if c == nil {
		return 0
	}
	return c()
}

// GetStatus takes a snapshot.
func (s *Service) GetStatus() Status {
	st := Status{
		Time:            time.Now(),
		Backend:         s.deps.BackendName,
		WriteQueue:      count(s.deps.QueueLen),
		CachedResolvers: count(s.deps.Resolvers),
		CachedStacks:    count(s.deps.Stacks),
	}
	if s.deps.LastFlush != nil {
		st.LastFlushMs = float64(s.deps.LastFlush().Microseconds()) / 1000
	}
	return st
}

// Point renders st as an InfluxDB point.
func (st Status) Point() *influxdb2_write.Point {
	return influxdb2_write.NewPoint(
		influx.MeasurementStatus,
		map[string]string{"backend": st.Backend},
		map[string]any{
			"write_queue":      st.WriteQueue,
			"cached_resolvers": st.CachedResolvers,
			"cached_stacks":    st.CachedStacks,
			"last_flush_ms":    st.LastFlushMs,
		},
		st.Time,
	)
}

// Report takes a snapshot and sends it to every configured sink.
func (s *Service) Report() Status {
	st := s.GetStatus()
	logger := s.deps.LogManager.Logger()
	logger.Debug("status",
		"backend", st.Backend,
		"writeQueue", st.WriteQueue,
		"cachedResolvers", st.CachedResolvers,
		"cachedStacks", st.CachedStacks,
		"lastFlushMs", st.LastFlushMs,
	)

	if s.deps.StatusFile != "" {
		if err := writeStatusFile(s.deps.StatusFile, st); err != nil {
			logger.Error("Error writing status file", "error", err)
		}
	}
	if s.deps.Points != nil {
		if err := s.deps.Points.WritePoint(st.Point()); err != nil {
			logger.Debug("Error writing status point", "error", err)
		}
	}
	return st
}

func writeStatusFile(path string, st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		s.deps.LogManager.Logger().Debug("Starting status monitor goroutine", "interval", s.deps.Interval)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Report()
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for the goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
