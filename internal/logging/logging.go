// =============================================================================
// Text Info Extractor - Logging
// =============================================================================
//
// This module builds the structured logger shared by the commands.
//
// OUTPUT:
//   - Text handler on stderr, plus the configured log file when set
//   - --verbose forces debug level
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// LOGGER CONSTRUCTION
// =============================================================================

// ParseLevel maps a config log level to a slog.Level. Unknown values map
// to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w and, when logFile is set, to that
// file as well. verbose forces debug level. The returned closer releases
// the log file and is never nil.
func New(w io.Writer, level, logFile string, verbose bool) (*slog.Logger, io.Closer, error) {
	lvl := ParseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}

	var closer io.Closer = nopCloser{}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closer = f
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	return logger, closer, nil
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
