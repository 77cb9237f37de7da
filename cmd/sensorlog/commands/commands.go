// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the sensorlog command tree.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/sensorlog/cmd/sensorlog/cli"
	"github.com/bureau-foundation/sensorlog/lib/version"
)

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// Root builds and returns the complete sensorlog command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "sensorlog",
		Description: `sensorlog: sensor reading logger.

Records simulated sensor readings to rotating CSV files, archives
rotated files as zip, expires old archives, and answers time-range
queries across live files and archives.

Configuration is read from the file given by --config or the
SENSORLOG_CONFIG environment variable.`,
		Subcommands: []*cli.Command{
			runCommand(),
			queryCommand(),
			archiveCommand(),
			cleanupCommand(),
			configCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					version.Print(stdout, "sensorlog")
					return nil
				},
			},
		},
	}
}
