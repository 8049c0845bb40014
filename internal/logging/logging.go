// Package logging builds the structured logger used by the minithonc
// command and the compile driver.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Log level (debug, info, warn, error)
	Level string

	// Output format: "text" or "json" (default: text)
	Format string
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  "warn",
		Format: "text",
	}
}

// New creates a logger writing to w.
func New(cfg LoggerConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// parseLevel converts a string level to slog.Level
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
