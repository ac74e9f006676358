package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Swapped in tests to capture console output.
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, serviceName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", serviceName, sessionStart.Format("20060102_150405")),
	)
}

// OpenLogFile creates logsDir if needed and opens a fresh session log file.
func OpenLogFile(logsDir, serviceName string, sessionStart time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	path := LogFilePath(logsDir, serviceName, sessionStart)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// NewGraylogWriter opens a GELF UDP writer to addr.
func NewGraylogWriter(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("connect to graylog at %s: %w", addr, err)
	}
	return w, nil
}

// zerologLevel converts a string log level to a zerolog level.
func zerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewZerolog builds the zerolog logger used by the database layer and the
// dispatcher. Console output is colourless when it goes to a file; extra
// writers (e.g. a GELF writer) receive raw JSON.
func NewZerolog(file io.Writer, level string, extra ...io.Writer) zerolog.Logger {
	var writers []io.Writer
	if file != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true})
	} else {
		writers = append(writers, zerolog.ConsoleWriter{Out: osStdout, TimeFormat: time.RFC3339})
	}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerologLevel(level)).
		With().Timestamp().Logger()
}
