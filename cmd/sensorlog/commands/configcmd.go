// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/sensorlog/cmd/sensorlog/cli"
	"github.com/bureau-foundation/sensorlog/lib/clock"
	"github.com/bureau-foundation/sensorlog/lib/config"
	"github.com/bureau-foundation/sensorlog/lib/sensor"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "Validate configuration",
		Subcommands: []*cli.Command{
			configCheckCommand(),
		},
	}
}

type configCheckParams struct {
	configOptions
	cli.JSONOutput
	cli.LogOptions
}

// effectiveConfig is the printed form of a loaded configuration, with
// defaults filled in.
type effectiveConfig struct {
	LogDirectory          string                `yaml:"log_dir" json:"log_dir"`
	ArchiveDirectory      string                `yaml:"archive_dir" json:"archive_dir"`
	FilenamePattern       string                `yaml:"filename_pattern" json:"filename_pattern"`
	BufferSize            int                   `yaml:"buffer_size" json:"buffer_size"`
	RotateEveryHours      float64               `yaml:"rotate_every_hours" json:"rotate_every_hours"`
	MaxSizeMB             float64               `yaml:"max_size_mb" json:"max_size_mb"`
	MaxSizeBytes          int64                 `yaml:"max_size_bytes" json:"max_size_bytes"`
	RotateAfterLines      int                   `yaml:"rotate_after_lines,omitempty" json:"rotate_after_lines,omitempty"`
	RetentionDays         int                   `yaml:"retention_days" json:"retention_days"`
	ArchiveCompression    string                `yaml:"archive_compression" json:"archive_compression"`
	SampleIntervalSeconds float64               `yaml:"sample_interval_seconds" json:"sample_interval_seconds"`
	Sensors               []config.SensorConfig `yaml:"sensors" json:"sensors"`
}

func configCheckCommand() *cli.Command {
	var params configCheckParams
	return &cli.Command{
		Name:    "check",
		Summary: "Load and validate the config file, then print the effective settings",
		Description: `Load the config file, report every problem found, and print the
effective configuration with defaults applied. Sensor presets are
checked against the built-in preset table.`,
		Usage: "sensorlog config check [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("check", &params)
		},
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			return runConfigCheck(params, stdout, logger)
		},
	}
}

func runConfigCheck(params configCheckParams, w io.Writer, logger *slog.Logger) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	if _, err := sensor.FromConfig(cfg.Sensors, clock.Real(), 0); err != nil {
		return err
	}

	effective := effectiveConfig{
		LogDirectory:          cfg.LogDirectory,
		ArchiveDirectory:      cfg.ArchiveDirectory(),
		FilenamePattern:       cfg.FilenamePattern,
		BufferSize:            cfg.BufferSize,
		RotateEveryHours:      cfg.RotateEveryHours,
		MaxSizeMB:             cfg.MaxSizeMB,
		MaxSizeBytes:          cfg.MaxSizeBytes(),
		RotateAfterLines:      cfg.RotateAfterLines,
		RetentionDays:         cfg.RetentionDays,
		ArchiveCompression:    cfg.ArchiveCompression,
		SampleIntervalSeconds: cfg.SampleIntervalSeconds,
		Sensors:               cfg.Sensors,
	}
	if done, err := params.EmitJSON(w, effective); done {
		return err
	}

	data, err := yaml.Marshal(effective)
	if err != nil {
		return fmt.Errorf("formatting config: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	logger.Debug("config valid", "sensors", len(cfg.Sensors))
	return nil
}
