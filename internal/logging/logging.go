// Package logging builds the zerolog loggers used by the service.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/config"
)

// New returns the process logger. Development builds log to a console writer.
func New(cfg config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

// ErrorFile opens path for appending and returns a logger that records
// error level events there. The returned closer releases the file. When the
// file cannot be opened the logger writes to stderr and the error is returned.
func ErrorFile(path string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stderrLogger(), nopCloser{}, fmt.Errorf("create error log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return stderrLogger(), nopCloser{}, fmt.Errorf("open error log: %w", err)
	}

	logger := zerolog.New(file).Level(zerolog.ErrorLevel).With().Timestamp().Logger()
	return logger, file, nil
}

func stderrLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
