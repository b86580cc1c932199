// Package logging routes log/slog output to a daily file, since the TUI owns
// the terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	mu       sync.Mutex
	file     *os.File
	filePath string
	level    = new(slog.LevelVar)
)

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Initialize opens nyaa-YYYY-MM-DD.log in logDir and installs it as the
// default slog logger.
func Initialize(logDir string, lvl slog.Level) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(logDir, fmt.Sprintf("nyaa-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	file, filePath = f, path
	level.Set(lvl)
	slog.SetDefault(New(f))
	return nil
}

// New returns a text logger writing to w at the shared level.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetLevel changes the level of every logger created by this package.
func SetLevel(lvl slog.Level) {
	level.Set(lvl)
}

// Discard silences the default logger.
func Discard() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Close closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Path returns the current log file path.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return filePath
}
