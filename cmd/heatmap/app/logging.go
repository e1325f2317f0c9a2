package app

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// NewLogger returns a slog logger backed by a charmbracelet/log handler.
// Verbosity 0 logs warnings and errors, 1 adds info, 2 and more debug.
func NewLogger(w io.Writer, verbosity int) *slog.Logger {
	level := log.WarnLevel
	switch {
	case verbosity >= 2:
		level = log.DebugLevel
	case verbosity == 1:
		level = log.InfoLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		ReportCaller:    verbosity >= 2,
	})
	return slog.New(handler)
}
