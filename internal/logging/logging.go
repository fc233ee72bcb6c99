// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// Formats accepted by Setup.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds a logger writing to w at the given level.
// Format "json" emits one JSON object per line; anything else renders human-readable console output.
func New(level, format string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := &log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}

	if strings.EqualFold(format, FormatJSON) {
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    w == os.Stderr || w == os.Stdout,
			QuoteString:    true,
			EndWithMessage: true,
		}
	}

	return logger
}

// Setup replaces the package-level default logger so log.Info() and friends use the configured output.
func Setup(level, format string) {
	log.DefaultLogger = *New(level, format, os.Stderr)
}

func parseLevel(level string) log.Level {
	if strings.TrimSpace(level) == "" {
		return log.InfoLevel
	}
	return log.ParseLevel(strings.ToLower(level))
}
