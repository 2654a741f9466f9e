// Package logging builds the zerolog logger from the log settings.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
)

// New returns a logger writing to w, or to the configured log file when one
// is set. The returned closer releases the file; it is a no-op otherwise.
func New(cfg config.Log, w io.Writer) (zerolog.Logger, io.Closer, error) {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	var closer io.Closer = nopCloser{}
	out := w
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	out = redactingWriter{w: out}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.File != "",
		}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var secrets = []*regexp.Regexp{
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`),
}

// Redact masks provider credentials in s.
func Redact(s string) string {
	for _, re := range secrets {
		s = re.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}

type redactingWriter struct {
	w io.Writer
}

func (r redactingWriter) Write(p []byte) (int, error) {
	if _, err := r.w.Write([]byte(Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
