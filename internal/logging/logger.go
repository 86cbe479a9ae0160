// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package logging holds the process-wide zerolog logger.
//
// cmd/server and cmd/reelctl call Init once with the LOG_* settings; every
// other package logs through the level helpers or, inside a request, through
// Ctx so the line carries the request, correlation and user IDs:
//
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Review update rejected")
//
// An event chain that is not finished with Msg or Send writes nothing.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, encoding and destination of the global logger.
type Config struct {
	Level     string    // trace, debug, info, warn or error
	Format    string    // json or console
	Caller    bool      // add file:line
	Timestamp bool      // add the time field
	Output    io.Writer // nil means os.Stderr
}

// DefaultConfig is what the logger uses before Init runs.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Timestamp: true, Output: os.Stderr}
}

// levels maps configuration names to zerolog levels. Only the names marked
// configurable pass ValidLevel; the rest are accepted by Init for tests.
var levels = map[string]struct {
	level        zerolog.Level
	configurable bool
}{
	"trace":    {zerolog.TraceLevel, true},
	"debug":    {zerolog.DebugLevel, true},
	"info":     {zerolog.InfoLevel, true},
	"warn":     {zerolog.WarnLevel, true},
	"warning":  {zerolog.WarnLevel, false},
	"error":    {zerolog.ErrorLevel, true},
	"fatal":    {zerolog.FatalLevel, false},
	"disabled": {zerolog.Disabled, false},
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // the logger is usable before Init
func init() {
	Init(DefaultConfig())
}

// Init replaces the global logger. It may be called again, for example
// after the configuration has been loaded.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	c := zerolog.New(out).With()
	if cfg.Timestamp {
		c = c.Timestamp()
	}
	if cfg.Caller {
		c = c.Caller()
	}
	SetLogger(c.Logger())
}

// parseLevel falls back to info for empty or unknown names.
func parseLevel(name string) zerolog.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l.level
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether LOG_LEVEL may be set to level.
func ValidLevel(level string) bool {
	l, ok := levels[strings.ToLower(level)]
	return ok && l.configurable
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// SetLogger swaps the global logger; tests use it to capture output.
//
//nolint:gocritic // zerolog.Logger is passed by value
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

func Debug() *zerolog.Event { return current.Load().Debug() }
func Info() *zerolog.Event { return current.Load().Info() }
func Warn() *zerolog.Event { return current.Load().Warn() }
func Error() *zerolog.Event { return current.Load().Error() }

// Fatal exits the process with status 1 once the event is written.
func Fatal() *zerolog.Event { return current.Load().Fatal() }

// NewTestLogger writes JSON lines with timestamps to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
