// Package logging builds the structured logger handed down to every component.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level string // debug, info, warn, error
	Dir   string // directory for the daily log file; empty disables file output
}

// New creates a logger writing to stderr and, when Dir is set, to a daily
// file named <YYYY-MM-DD>_log.log. The returned closer is the handler itself
// and closes the file.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	return newAt(cfg, os.Stderr, time.Now())
}

func newAt(cfg Config, console io.Writer, now time.Time) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: NewReplaceAttr(),
	}

	fanout := &Fanout{}
	fanout.AddOutput(slog.NewTextHandler(console, opts), nil)

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, err
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, DailyFileName(now)),
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		fanout.AddOutput(slog.NewTextHandler(file, opts), file)
	}

	return slog.New(fanout), fanout, nil
}

// NewWithWriter creates a logger writing only to w. Used by tests that
// capture output.
func NewWithWriter(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: NewReplaceAttr(),
	}))
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// DailyFileName returns the log file name for the given day.
func DailyFileName(t time.Time) string {
	return t.Format("2006-01-02") + "_log.log"
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
