// Package logx builds the process logger from configuration strings.
package logx

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type Logger = slog.Logger

// ToLevel maps a configured level name to a slog level. Unknown names map
// to info.
func ToLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w. handler "json" selects structured JSON
// output; anything else gets tinted text for terminals.
func New(w io.Writer, level string, handler string) *Logger {
	lvl := ToLevel(level)

	var h slog.Handler
	switch handler {
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     lvl,
		})
	default:
		h = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		})
	}

	return slog.New(h)
}
