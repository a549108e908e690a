// Package logger owns the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	once   sync.Once
	logger *slog.Logger
)

type Options struct {
	Level      slog.Leveler // default: slog.LevelInfo
	Writer     io.Writer    // default: os.Stderr
	TimeFormat string       // default: time.Kitchen
	NoColor    bool
	JSON       bool
}

// Init installs the logger as the slog default. Only the first call has an
// effect.
func Init(opts Options) {
	once.Do(func() {
		logger = New(opts)
		slog.SetDefault(logger)
	})
}

// New builds a logger without touching the default.
func New(opts Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	if opts.JSON {
		return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}))
	}

	timeFormat := opts.TimeFormat
	if timeFormat == "" {
		timeFormat = time.Kitchen
	}
	return slog.New(tint.NewHandler(writer, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    opts.NoColor,
	}))
}

// L returns the installed logger, or the slog default before Init.
func L() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// ParseLevel accepts debug, info, warn and error.
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
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
