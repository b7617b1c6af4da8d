// Package logging routes zerolog output to a file so the TUI keeps the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// DefaultFile is the log file name inside the CLI config directory.
const DefaultFile = "balance.log"

// ParseLevel maps a config level string to a zerolog level. Unknown or empty
// strings fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup opens path for appending and installs a file logger as the global
// zerolog logger. An empty path discards all output. The returned closer
// releases the file.
func Setup(level, path string) (io.Closer, error) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if strings.TrimSpace(path) == "" {
		logger := zerolog.New(io.Discard)
		zlog.Logger = logger
		zerolog.DefaultContextLogger = &logger
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := New(f)
	zlog.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return f, nil
}

// New builds a plain-text timestamped logger writing to w.
func New(w io.Writer) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
	return zerolog.New(writer).With().Timestamp().Str("app", "balance").Logger()
}
