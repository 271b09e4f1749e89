// Package logging builds zerolog loggers from configuration.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/config"
)

// New returns a logger for cfg. Output is "stdout", "stderr" or a file path
// opened for appending.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), errors.Wrap(err, "invalid log level")
	}

	var out io.Writer
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "stderr", "":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), errors.Wrap(err, "could not open log file")
		}
		out = f
	}
	return NewWithWriter(cfg, out, level), nil
}

// NewWithWriter is New with an explicit writer and level.
func NewWithWriter(cfg config.LogConfig, out io.Writer, level zerolog.Level) zerolog.Logger {
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
