// Package logger sets up the global zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/de-bkg/siteinfo/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New configures the global logger writing to stderr and returns it.
func New(cfg config.LoggerConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter configures the global logger writing to w.
func NewWithWriter(cfg config.LoggerConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    w != os.Stderr && w != os.Stdout,
		}
	}
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return log.Logger
}

// Get returns a child of the global logger with the component field set.
func Get(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
