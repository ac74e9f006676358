// Package worker persists item stacks in the background. Handlers hand over
// snapshots, which wait in a buffer until the next flush writes them to the
// storage backend in one batch.
package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/channel"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/logging"
	"github.com/itsmeow/SpongeCommon/internal/queue"
	"github.com/itsmeow/SpongeCommon/internal/storage"
)

const (
	defaultFlushInterval = 2 * time.Second
	defaultBufferSize    = 1000
)

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Backend       storage.Backend
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
	BufferSize    int
}

// Manager owns the write-behind goroutine.
type Manager struct {
	deps    Dependencies
	saves   channel.Channel[*item.Stack]
	pending *queue.Queue[*item.Stack]

	// mu guards stopped against in-flight Saves; flushMu serialises flushes.
	mu      sync.RWMutex
	stopped bool
	flushMu sync.Mutex

	stopChan  chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	lastFlush atomic.Int64
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.BufferSize <= 0 {
		deps.BufferSize = defaultBufferSize
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Manager{
		deps:     deps,
		saves:    channel.New[*item.Stack](deps.BufferSize),
		pending:  queue.New[*item.Stack](),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. Calling it more than once has no effect.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		go m.run()
	})
}

// Save schedules s for persistence. The caller keeps ownership of s; a
// snapshot is queued. A full buffer is flushed first so queued snapshots stay
// ahead of newer ones. Once the manager is stopped the stack is written
// synchronously.
func (m *Manager) Save(s *item.Stack) error {
	if s == nil {
		return fmt.Errorf("save: %w", item.ErrNilType)
	}
	snapshot := s.Clone()

	if m.trySend(snapshot) {
		return nil
	}
	if !m.isStopped() {
		m.deps.LogManager.WriteLog("worker:Save", "Buffer full, flushing early", "DEBUG")
		if err := m.Flush(); err == nil && m.trySend(snapshot) {
			return nil
		}
	}

	m.deps.LogManager.WriteLog("worker:Save", fmt.Sprintf("Buffer unavailable, saving %s synchronously", s.ID), "DEBUG")
	return m.deps.Backend.SaveStack(snapshot)
}

func (m *Manager) trySend(s *item.Stack) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.stopped && m.saves.TrySend(s)
}

func (m *Manager) isStopped() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopped
}

// Delete writes pending saves and removes the stack while holding the flush
// lock, so no snapshot queued before the call can be written after it.
func (m *Manager) Delete(id uuid.UUID) error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	if err := m.flushLocked(); err != nil {
		return err
	}
	return m.deps.Backend.DeleteStack(id)
}

// Flush writes everything received so far.
func (m *Manager) Flush() error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()
	return m.flushLocked()
}

// flushLocked writes the pending batch. Stacks the backend reports as
// invalid are dropped; on any other failure the rest of the batch is queued
// again for the next flush.
func (m *Manager) flushLocked() error {
	m.collect()
	batch := m.pending.GetAndEmpty()
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	stacks := coalesce(batch)
	err := storage.SaveAll(m.deps.Backend, stacks)
	if err != nil {
		dropped, other := storage.InvalidStacks(err)
		for id := range dropped {
			m.deps.LogManager.WriteLog("worker:Flush", fmt.Sprintf("Dropping stack %s: %v", id, err), "ERROR")
		}
		if other {
			m.pending.PushFront(without(batch, dropped)...)
			m.deps.LogManager.WriteLog("worker:Flush", fmt.Sprintf("Failed to flush %d stacks: %v", len(stacks), err), "ERROR")
			return fmt.Errorf("flush: %w", err)
		}
	}
	took := time.Since(start)
	m.lastFlush.Store(int64(took))
	m.deps.LogManager.WriteLog("worker:Flush", fmt.Sprintf("Flushed %d stacks in %s", len(stacks), took), "DEBUG")
	return nil
}

// Stop ends the background loop and flushes what is left.
func (m *Manager) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.stopped = true
		m.mu.Unlock()

		close(m.stopChan)
		m.startOnce.Do(func() { close(m.done) })
		<-m.done
		err = m.Flush()
	})
	return err
}

// QueueLen returns the number of saves waiting to be written.
func (m *Manager) QueueLen() int {
	return m.pending.Len() + m.saves.Len()
}

// GetLastFlushDuration returns how long the last successful flush took.
func (m *Manager) GetLastFlushDuration() time.Duration {
	return time.Duration(m.lastFlush.Load())
}

func (m *Manager) run() {
	defer close(m.done)
	ticker := time.NewTicker(m.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.Flush()
		case <-m.stopChan:
			return
		}
	}
}

// collect moves buffered saves into the pending queue without blocking.
func (m *Manager) collect() {
	if batch := m.saves.Drain(0); len(batch) > 0 {
		m.pending.Push(batch...)
	}
}

func without(batch []*item.Stack, drop map[uuid.UUID]struct{}) []*item.Stack {
	if len(drop) == 0 {
		return batch
	}
	out := make([]*item.Stack, 0, len(batch))
	for _, s := range batch {
		if _, ok := drop[s.ID]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// coalesce keeps the latest snapshot per stack, ordered by first appearance.
func coalesce(batch []*item.Stack) []*item.Stack {
	index := make(map[uuid.UUID]int, len(batch))
	out := make([]*item.Stack, 0, len(batch))
	for _, s := range batch {
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
