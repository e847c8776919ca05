// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog loggers used across polychat.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/polychat/internal/config"
)

// Options controls logger construction.
type Options struct {
	Level   string    // zerolog level name; empty means info
	Format  string    // "console" or "json"
	Output  io.Writer // defaults to os.Stderr
	NoColor bool
}

// New creates a zerolog.Logger tagged with the application name.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Str("app", "polychat").
		Logger().
		Level(ParseLevel(opts.Level))
}

// Discard returns a logger that writes nothing.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// FromConfig builds the logger described by cfg.Log. When a log file is
// configured it is opened in append mode and returned as the closer; the
// caller closes it on exit. With no file, fallback receives the output.
// The TUI passes io.Discard so log lines never corrupt the screen.
func FromConfig(cfg config.LogConfig, fallback io.Writer) (zerolog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return New(Options{Level: cfg.Level, Format: cfg.Format, Output: fallback}), nopCloser{}, nil
	}

	f, err := OpenFile(cfg.File)
	if err != nil {
		return Discard(), nopCloser{}, err
	}
	return New(Options{Level: cfg.Level, Format: cfg.Format, Output: f, NoColor: true}), f, nil
}

// OpenFile opens path for appending, creating its directory if needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
