// Package dispatcher routes host calls to registered command handlers.
package dispatcher

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrUnknownCommand is returned by Dispatch for unregistered commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQueueFull is returned when a non-blocking buffered handler is saturated.
	ErrQueueFull = errors.New("queue full")
	// ErrMissingArgs is returned when a call has fewer arguments than its
	// handler declared with MinArgs.
	ErrMissingArgs = errors.New("missing arguments")
)

// Event is one host call: the command and its positional arguments.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// Arg returns the i-th argument, or "" when absent.
func (e Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Observer is told about every completed handler call.
type Observer interface {
	ObserveCall(command string, took time.Duration, err error)
}

// Option configures handler registration.
type Option func(*handlerConfig)

type handlerConfig struct {
	minArgs    int
	bufferSize int
	blocking   bool
	logged     bool
}

// MinArgs rejects calls with fewer than n arguments before the handler runs.
func MinArgs(n int) Option {
	return func(c *handlerConfig) { c.minArgs = n }
}

// Buffered runs the handler on its own goroutine behind a queue of the given
// size. Dispatch answers "queued" immediately.
func Buffered(size int) Option {
	return func(c *handlerConfig) { c.bufferSize = size }
}

// Blocking makes a buffered handler wait for queue space instead of failing.
func Blocking() Option {
	return func(c *handlerConfig) { c.blocking = true }
}

// Logged logs each call at debug level and failures at error level.
func Logged() Option {
	return func(c *handlerConfig) { c.logged = true }
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	logger  Logger
	metrics *metrics

	mu       sync.RWMutex
	observer Observer
	handlers map[string]HandlerFunc
	queues   map[string]chan Event
	closed   bool
	workers  sync.WaitGroup
}

// New creates a Dispatcher. Metrics go to the global OTel meter provider.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
		queues:   make(map[string]chan Event),
	}
	m, err := newMetrics(d.queueLengths)
	if err != nil {
		return nil, err
	}
	d.metrics = m
	return d, nil
}

// SetObserver installs an observer for handler timings.
func (d *Dispatcher) SetObserver(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = o
}

// Register adds a handler for command, replacing any earlier one. Calls
// rejected by MinArgs are not timed or observed.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var cfg handlerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	handler := d.timed(command, h)
	if cfg.minArgs > 0 {
		handler = checkArgs(cfg.minArgs, handler)
	}
	if cfg.logged {
		handler = d.logged(command, handler)
	}
	if cfg.bufferSize > 0 {
		handler = d.queued(command, cfg.bufferSize, cfg.blocking, handler)
	}

	d.mu.Lock()
	d.handlers[command] = handler
	d.mu.Unlock()
}

// Dispatch routes an event to its handler. A zero Timestamp is set to now.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[e.Command]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(e)
}

// HasHandler reports whether command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[command]
	return ok
}

// Commands returns the registered commands in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for cmd := range d.handlers {
		out = append(out, cmd)
	}
	sort.Strings(out)
	return out
}

// Close unregisters buffered commands and waits for their queues to drain.
// It must not race with Dispatch.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for cmd, q := range d.queues {
		close(q)
		delete(d.handlers, cmd)
	}
	d.mu.Unlock()
	d.workers.Wait()
}

func (d *Dispatcher) queueLengths() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]int, len(d.queues))
	for cmd, q := range d.queues {
		out[cmd] = len(q)
	}
	return out
}

func checkArgs(n int, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		if len(e.Args) < n {
			return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrMissingArgs, e.Command, n, len(e.Args))
		}
		return h(e)
	}
}

func (d *Dispatcher) timed(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		result, err := h(e)
		took := time.Since(start)

		d.metrics.record(command, took, err)

		d.mu.RLock()
		o := d.observer
		d.mu.RUnlock()
		if o != nil {
			o.ObserveCall(command, took, err)
		}
		return result, err
	}
}

func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)
		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}
		return result, err
	}
}

func (d *Dispatcher) queued(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	q := make(chan Event, size)

	d.mu.Lock()
	d.queues[command] = q
	d.mu.Unlock()

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for e := range q {
			if _, err := h(e); err != nil && d.logger != nil {
				d.logger.Error("buffered event failed", "command", command, "error", err)
			}
		}
	}()

	return func(e Event) (any, error) {
		if blocking {
			q <- e
			return "queued", nil
		}
		select {
		case q <- e:
			return "queued", nil
		default:
			d.metrics.drop(command)
			return nil, fmt.Errorf("%w: %s", ErrQueueFull, command)
		}
	}
}
