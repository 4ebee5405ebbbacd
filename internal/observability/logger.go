// Package observability provides structured logging and Prometheus
// instrumentation for the CLI and the MCP server.
package observability

import (
	"io"
	"log/slog"
)

// NewLogger builds an slog.Logger writing to out. Level is one of debug,
// info, warn, error; format is text or json. Unknown values fall back to
// info and text, the loader validates them before we get here.
func NewLogger(out io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
