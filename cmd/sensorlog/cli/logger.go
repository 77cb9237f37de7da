// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

const verboseFlag = "verbose"

// LogOptions is an embeddable struct that adds the --verbose flag to a
// command's parameter struct. [Command.Execute] reads the flag after
// parsing and hands Run a logger at debug level when it is set.
type LogOptions struct {
	Verbose bool `json:"-" flag:"verbose,v" desc:"log debug detail to stderr"`
}

// NewCommandLogger creates a structured logger for CLI command
// operations. When stderr is a terminal, uses slog.TextHandler for
// human-readable output. When stderr is piped or redirected (a service
// manager, CI, scripts), uses slog.JSONHandler for machine-parseable
// output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(false).With(
//	    "command", "sensorlog run",
//	    "log_dir", cfg.LogDirectory,
//	)
func NewCommandLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
