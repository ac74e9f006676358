package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// SlogManager manages slog-based logging with optional OTel and Graylog output.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
}

// SetupOption customises Setup.
type SetupOption func(*setupOptions)

type setupOptions struct {
	serviceName string
	graylog     io.Writer
	context     ContextProvider
}

// WithServiceName sets the instrumentation scope name of the OTel handler.
func WithServiceName(name string) SetupOption {
	return func(o *setupOptions) { o.serviceName = name }
}

// WithGraylog adds a JSON handler writing to w, normally a GELF writer.
func WithGraylog(w io.Writer) SetupOption {
	return func(o *setupOptions) { o.graylog = w }
}

// WithContextProvider attaches dynamic attributes to every record.
func WithContextProvider(p ContextProvider) SetupOption {
	return func(o *setupOptions) { o.context = p }
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Text output goes to file when one is
// given and to stdout otherwise. If provider is nil, OTel logging is disabled.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, opts ...SetupOption) {
	o := setupOptions{serviceName: "spongeshim"}
	for _, opt := range opts {
		opt(&o)
	}

	m.logProvider = provider

	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}
	if o.graylog != nil {
		handlers = append(handlers, slog.NewJSONHandler(o.graylog, handlerOpts))
	}
	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler(o.serviceName, otelslog.WithLoggerProvider(provider)))
	}

	var root slog.Handler = NewMultiHandler(handlers...)
	if o.context != nil {
		root = NewContextHandler(root, o.context)
	}

	m.logger = slog.New(root)
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}

// WriteLog writes a log entry with the specified function name, data, and level.
func (m *SlogManager) WriteLog(functionName, data, level string) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), parseLevel(level), data, "function", functionName)
}
