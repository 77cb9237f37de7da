// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sensorlog/cmd/sensorlog/cli"
	"github.com/bureau-foundation/sensorlog/lib/clock"
	"github.com/bureau-foundation/sensorlog/lib/recordlog"
	"github.com/bureau-foundation/sensorlog/lib/sensor"
)

type runParams struct {
	configOptions
	cli.LogOptions
	Duration time.Duration `json:"duration" flag:"duration" desc:"stop after this long (default: run until interrupted)"`
	Seed     uint64        `json:"seed" flag:"seed" desc:"random seed for simulated readings (default: derived from the start time)"`
}

func runCommand() *cli.Command {
	var params runParams
	return &cli.Command{
		Name:    "run",
		Summary: "Sample simulated sensors into the log directory",
		Description: `Start the logger and sample every configured sensor once per
sample_interval_seconds until interrupted (SIGINT or SIGTERM) or until
--duration elapses.

On shutdown pending readings are flushed, the active file is archived,
and expired archives are removed.`,
		Usage: "sensorlog run [flags]",
		Examples: []cli.Example{
			{
				Description: "Log until interrupted",
				Command:     "sensorlog run --config /etc/sensorlog.yaml",
			},
			{
				Description: "Log for ten minutes with a fixed seed",
				Command:     "sensorlog run --duration 10m --seed 42",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("run", &params)
		},
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			return runLogger(ctx, params, clock.Real(), logger)
		},
	}
}

func runLogger(ctx context.Context, params runParams, clk clock.Clock, logger *slog.Logger) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}

	if params.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Duration)
		defer cancel()
	}

	seed := params.Seed
	if seed == 0 {
		seed = uint64(clk.Now().UnixNano())
	}
	simulators, err := sensor.FromConfig(cfg.Sensors, clk, seed)
	if err != nil {
		return err
	}

	recorder, err := recordlog.New(cfg, recordlog.Options{Clock: clk, Logger: logger})
	if err != nil {
		return err
	}
	if err := recorder.Start(); err != nil {
		return err
	}

	logger.Info("sensor logger started",
		"log_dir", cfg.LogDirectory,
		"active_file", recorder.ActivePath(),
		"sensors", len(simulators),
		"buffer_size", cfg.BufferSize,
		"seed", seed,
	)

	sampler := sensor.NewSampler(simulators, recorder, clk, cfg.SampleInterval(), logger)
	runErr := sampler.Run(ctx)
	stopErr := recorder.Stop()

	stats := recorder.Stats()
	var rotations uint64
	for _, count := range stats.Rotations {
		rotations += count
	}
	logger.Info("sensor logger stopped",
		"records_written", stats.RecordsWritten,
		"flushes", stats.Flushes,
		"rotations", rotations,
		"archives_removed", stats.ArchivesRemoved,
	)
	return errors.Join(runErr, stopErr)
}
