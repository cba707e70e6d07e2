// Package logging builds the service logger and the request-scoped loggers
// derived from it.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cab_booking/internal/config"

	"github.com/rs/zerolog"
)

// Field names shared by the HTTP and GraphQL layers
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the service logger. Empty settings mean JSON at info level on
// stdout. The returned Closer is never nil and must be closed on exit.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	out, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str(FieldService, app.Name).
		Str("env", app.Environment).
		Str("version", app.Version).
		Logger()

	return &base, closer, nil
}

// parseLevel falls back to info for empty or unknown levels
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stdout":
		return os.Stdout, nopCloser{}, nil
	case "stderr":
		return os.Stderr, nopCloser{}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return file, file, nil
	}
	return nil, nil, fmt.Errorf("unknown logging.output %q", cfg.Output)
}

// Component derives a child logger tagged with the component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str(FieldComponent, name).Logger()
}

// WithRequest derives the logger for one HTTP request
func WithRequest(logger zerolog.Logger, requestID string) zerolog.Logger {
	return logger.With().Str(FieldRequestID, requestID).Logger()
}

// FromContext returns the request logger stored on ctx, or fallback when the
// request did not pass through the HTTP middleware.
func FromContext(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
