package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestSetup_Destination(t *testing.T) {
	t.Run("file only", func(t *testing.T) {
		restore := captureStdout(t)

		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("stack saved", "id", "abc")

		assert.Empty(t, restore(), "stdout stays quiet when a file is given")
		assert.Contains(t, file.String(), "Logging initialized")
		assert.Contains(t, file.String(), "stack saved")
		assert.Contains(t, file.String(), "id=abc")
	})

	t.Run("stdout without file", func(t *testing.T) {
		restore := captureStdout(t)

		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("no file configured")

		assert.Contains(t, restore(), "no file configured")
	})
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"ERROR", false, false},
		{"bogus", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)
			m.Logger().Debug("dbg line")
			m.Logger().Info("info line")
			m.Logger().Error("err line")

			assert.Equal(t, tt.wantDebug, strings.Contains(buf.String(), "dbg line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(buf.String(), "info line"))
			assert.Contains(t, buf.String(), "err line")
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"trace": slog.LevelInfo,
	} {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestSetup_SecondCallSwitchesOutput(t *testing.T) {
	var first, second bytes.Buffer
	m := NewSlogManager()

	m.Setup(&first, "info", nil)
	m.Logger().Info("session one")
	m.Setup(&second, "info", nil)
	m.Logger().Info("session two")

	assert.Contains(t, first.String(), "session one")
	assert.NotContains(t, first.String(), "session two")
	assert.Contains(t, second.String(), "session two")
}

func TestSetup_TimeIsUTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)
	m.Logger().Info("stamped")

	line := strings.Split(strings.TrimSpace(buf.String()), "\n")[1]
	require.True(t, strings.HasPrefix(line, "time="), line)
	stamp := strings.Fields(line)[0][len("time="):]
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(stamp, "Z"), stamp)
}

func TestSetup_WithGraylog(t *testing.T) {
	var file, gelf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil, WithGraylog(&gelf))

	m.Logger().Info("color set", "stack", "abc")
	assert.Contains(t, gelf.String(), `"msg":"color set"`)
	assert.Contains(t, gelf.String(), `"stack":"abc"`)
	assert.Contains(t, file.String(), "color set")
}

func TestSetup_WithContextProvider(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, WithContextProvider(func() []slog.Attr {
		calls++
		return []slog.Attr{slog.String("storage", "memory"), slog.Int("cachedResolvers", calls)}
	}))

	m.Logger().Info("with context")
	assert.Contains(t, buf.String(), "storage=memory")
	assert.Contains(t, buf.String(), "cachedResolvers=2", "evaluated per record")
}

func TestSetup_WithOTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", provider, WithServiceName("spongeshim-test"))
	m.Logger().Info("bridged")

	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestSlogManager_BeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
	m.WriteLog("worker:Flush", "ignored", "info")
}

func TestWriteLog(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "debug", nil)

	m.WriteLog("worker:Flush", "Flushed 3 stacks", "DEBUG")
	m.WriteLog("sqlite:Close", "Error writing final dump", "ERROR")
	m.WriteLog("handlers", "unrecognised level", "loud")

	out := buf.String()
	assert.Contains(t, out, `level=DEBUG msg="Flushed 3 stacks" function=worker:Flush`)
	assert.Contains(t, out, `level=ERROR msg="Error writing final dump" function=sqlite:Close`)
	assert.Contains(t, out, `level=INFO msg="unrecognised level" function=handlers`)
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("handler error")
}

func TestMultiHandler(t *testing.T) {
	newText := func(buf *bytes.Buffer, lvl slog.Level) slog.Handler {
		return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: lvl})
	}
	ctx := context.Background()

	t.Run("fans out and skips nil", func(t *testing.T) {
		var a, b bytes.Buffer
		multi := NewMultiHandler(nil, newText(&a, slog.LevelInfo), newText(&b, slog.LevelInfo))
		require.Len(t, multi.handlers, 2)

		slog.New(multi).Info("to both")
		assert.Contains(t, a.String(), "to both")
		assert.Contains(t, b.String(), "to both")
	})

	t.Run("enabled if any child is", func(t *testing.T) {
		info := newText(&bytes.Buffer{}, slog.LevelInfo)
		debug := newText(&bytes.Buffer{}, slog.LevelDebug)

		assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
		assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
		assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelError))
	})

	t.Run("only enabled children handle", func(t *testing.T) {
		var info, debug bytes.Buffer
		multi := NewMultiHandler(newText(&info, slog.LevelInfo), newText(&debug, slog.LevelDebug))
		slog.New(multi).Debug("quiet")

		assert.Empty(t, info.String())
		assert.Contains(t, debug.String(), "quiet")
	})

	t.Run("attrs and groups", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(newText(&buf, slog.LevelInfo))

		slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "worker")})).Info("a")
		slog.New(multi.WithGroup("stack")).Info("b", "id", "abc")

		assert.Contains(t, buf.String(), "component=worker")
		assert.Contains(t, buf.String(), "stack.id=abc")
		assert.Same(t, multi, multi.WithGroup(""))
	})

	t.Run("failure does not stop delivery", func(t *testing.T) {
		var buf bytes.Buffer
		multi := NewMultiHandler(failingHandler{}, newText(&buf, slog.LevelInfo))

		err := multi.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "still delivered", 0))
		assert.EqualError(t, err, "handler error")
		assert.Contains(t, buf.String(), "still delivered")
	})
}

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), func() []slog.Attr {
		return []slog.Attr{slog.Bool("dynamic", true)}
	})

	slog.New(h.WithAttrs([]slog.Attr{slog.String("static", "x")})).Info("both")
	assert.Contains(t, buf.String(), "static=x")
	assert.Contains(t, buf.String(), "dynamic=true")
	assert.Same(t, h, h.WithGroup(""))

	buf.Reset()
	bare := NewContextHandler(slog.NewTextHandler(&buf, nil), nil)
	slog.New(bare).Info("no provider")
	assert.Contains(t, buf.String(), "no provider")
}

// captureStdout points the console writer at a pipe. The returned func
// restores it and returns what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)
	orig := osStdout
	osStdout = w

	return func() string {
		_ = w.Close()
		osStdout = orig
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		_ = r.Close()
		return buf.String()
	}
}
