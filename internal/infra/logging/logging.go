package logging

import (
	"io"
	"log/slog"
	"os"
)

// SetupJSON sets slog's default logger to use JSON output on stdout at the
// given level. attrs are attached to every record (e.g. "service", "api").
func SetupJSON(level slog.Level, attrs ...any) *slog.Logger {
	return SetupJSONTo(os.Stdout, level, attrs...)
}

func SetupJSONTo(w io.Writer, level slog.Level, attrs ...any) *slog.Logger {
	logger := slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	).With(attrs...)
	slog.SetDefault(logger)

	return logger
}
