package logging

import (
	"context"
	"io"
	"log/slog"

	charm "github.com/charmbracelet/log"
)

type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// NewCharmLogger returns a Logger that renders human-readable lines to w
// through a charmbracelet/log handler. level is one of debug, info, warn or
// error; anything else falls back to info.
func NewCharmLogger(w io.Writer, level string) *SlogLogger {
	opts := charm.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
	}
	if opts.Level == charm.DebugLevel {
		opts.ReportCaller = true
	}
	return NewSlogLogger(slog.New(charm.NewWithOptions(w, opts)))
}

// NewDiscardLogger returns a Logger that drops everything. Handy in tests.
func NewDiscardLogger() *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ParseLevel maps a config value onto a charmbracelet/log level.
func ParseLevel(level string) charm.Level {
	switch level {
	case "debug":
		return charm.DebugLevel
	case "warn":
		return charm.WarnLevel
	case "error":
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
