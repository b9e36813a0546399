// Package logging builds the zerolog logger every binary in this module
// starts from, following the level/format conventions of NewLogger in
// adred-codev-ws_poc's src/logger.go: JSON to stdout by default, an
// optional human-readable console writer for local development, and a
// "role" field every node role stamps onto its own logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the wire shape of log output.
type Format string

const (
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Config configures the root logger.
type Config struct {
	Level  string
	Format Format
}

// New builds a root logger from cfg. An unrecognised Level falls back to
// info rather than erroring, since a bad log-level flag should never stop
// a node from starting.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output = os.Stdout
	var writer = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}

	if cfg.Format == FormatPretty {
		return zerolog.New(writer).With().Timestamp().Logger()
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// ForRole returns a child logger tagged with which node role produced a
// given log line, so a single aggregator can tell an info server's lines
// apart from a write shard's.
func ForRole(log zerolog.Logger, role string) zerolog.Logger {
	return log.With().Str("role", role).Logger()
}
