// Package logging configures the structured logger shared by the plugin
// subsystem and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config describes how the logger should behave.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// New builds a slog.Logger writing to w. A nil writer defaults to stderr.
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
