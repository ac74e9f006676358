package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/itsmeow/SpongeCommon/internal/dispatcher"

// metrics holds the dispatcher's instruments. They come from the global meter
// provider, which is a no-op unless one has been installed.
type metrics struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	dropped  metric.Int64Counter
	latency  metric.Float64Histogram
}

func newMetrics(queueLengths func() map[string]int) (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)

	if out.calls, err = m.Int64Counter("shim.calls",
		metric.WithDescription("Host calls handled, per command")); err != nil {
		return nil, fmt.Errorf("calls counter: %w", err)
	}
	if out.failures, err = m.Int64Counter("shim.calls.failed",
		metric.WithDescription("Host calls whose handler returned an error")); err != nil {
		return nil, fmt.Errorf("failures counter: %w", err)
	}
	if out.dropped, err = m.Int64Counter("shim.calls.dropped",
		metric.WithDescription("Buffered calls refused because the queue was full")); err != nil {
		return nil, fmt.Errorf("dropped counter: %w", err)
	}
	if out.latency, err = m.Float64Histogram("shim.calls.duration",
		metric.WithDescription("Handler execution time"),
		metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("latency histogram: %w", err)
	}

	queued, err := m.Int64ObservableGauge("shim.queue.length",
		metric.WithDescription("Calls waiting in a buffered handler's queue"))
	if err != nil {
		return nil, fmt.Errorf("queue gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for cmd, n := range queueLengths() {
			o.ObserveInt64(queued, int64(n), commandAttr(cmd))
		}
		return nil
	}, queued)
	if err != nil {
		return nil, fmt.Errorf("queue gauge callback: %w", err)
	}
	return &out, nil
}

func commandAttr(command string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", command))
}

func (m *metrics) record(command string, took time.Duration, err error) {
	ctx := context.Background()
	attr := commandAttr(command)
	m.calls.Add(ctx, 1, attr)
	m.latency.Record(ctx, float64(took.Microseconds())/1000, attr)
	if err != nil {
		m.failures.Add(ctx, 1, attr)
	}
}

func (m *metrics) drop(command string) {
	m.dropped.Add(context.Background(), 1, commandAttr(command))
}
