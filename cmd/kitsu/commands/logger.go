package commands

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/viper"
)

// SlogLogger adapts a *slog.Logger to kitsu.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

// Debug logs at debug level.
func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(slog.LevelDebug, msg, fields)
}

// Info logs at info level.
func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log(slog.LevelInfo, msg, fields)
}

// Warn logs at warn level.
func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(slog.LevelWarn, msg, fields)
}

// Error logs at error level.
func (l *SlogLogger) Error(msg string, fields map[string]interface{}) {
	l.log(slog.LevelError, msg, fields)
}

func (l *SlogLogger) log(level slog.Level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.Any(key, fields[key]))
	}

	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// NewHandler returns a text or JSON slog handler writing to w. Verbose
// lowers the level to debug; otherwise only warnings and errors pass.
func NewHandler(w io.Writer, format string, verbose bool) slog.Handler {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	options := &slog.HandlerOptions{Level: level}

	if format == "json" {
		return slog.NewJSONHandler(w, options)
	}

	return slog.NewTextHandler(w, options)
}

// SetupLogger configures the default slog logger from the current settings.
func SetupLogger(w io.Writer) {
	slog.SetDefault(slog.New(NewHandler(w, viper.GetString(KeyLogFormat), viper.GetBool(KeyVerbose))))
}

func defaultLogger() *slog.Logger {
	return slog.Default()
}
