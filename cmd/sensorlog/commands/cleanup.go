// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sensorlog/cmd/sensorlog/cli"
	"github.com/bureau-foundation/sensorlog/lib/clock"
	"github.com/bureau-foundation/sensorlog/lib/recordlog"
)

type cleanupParams struct {
	configOptions
	cli.JSONOutput
	cli.LogOptions
}

func cleanupCommand() *cli.Command {
	var params cleanupParams
	return &cli.Command{
		Name:    "cleanup",
		Summary: "Remove archives older than retention_days",
		Description: `Delete every archive whose modification time is older than
retention_days. The logger does this after each rotation; this command
runs it on demand, for example from a timer while the logger is
stopped.`,
		Usage: "sensorlog cleanup [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("cleanup", &params)
		},
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			return runCleanup(params, clock.Real(), stdout, logger)
		},
	}
}

func runCleanup(params cleanupParams, clk clock.Clock, w io.Writer, logger *slog.Logger) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}

	cleaner := recordlog.NewRetentionCleaner(cfg.ArchiveDirectory(), cfg.Retention(), clk, logger)
	removed, cleanupErr := cleaner.Cleanup()

	if done, err := params.EmitJSON(w, removed); done {
		if err != nil {
			return err
		}
		return cleanupErr
	}
	for _, path := range removed {
		fmt.Fprintf(w, "removed %s\n", path)
	}
	fmt.Fprintf(w, "%d archives removed (retention %d days)\n", len(removed), cfg.RetentionDays)
	return cleanupErr
}
