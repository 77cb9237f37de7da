// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/sensorlog/lib/clock"
)

// Sampler reads a set of simulators on a fixed interval.
type Sampler struct {
	simulators []*Simulator
	sink       RecordSink
	clock      clock.Clock
	interval   time.Duration
	logger     *slog.Logger
}

// NewSampler returns a Sampler delivering readings from simulators to
// sink every interval.
func NewSampler(simulators []*Simulator, sink RecordSink, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		simulators: simulators,
		sink:       sink,
		clock:      clk,
		interval:   interval,
		logger:     logger.With("component", "sampler"),
	}
}

// Run reads every simulator immediately and then once per interval,
// in configuration order, until ctx is cancelled. It returns nil on
// cancellation. The first error from the sink stops sampling and is
// returned.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sampling started",
		"sensors", len(s.simulators),
		"interval", s.interval,
	)
	rounds := 0
	for {
		if err := s.sampleAll(); err != nil {
			return err
		}
		rounds++

		select {
		case <-ctx.Done():
			s.logger.Info("sampling stopped", "rounds", rounds)
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Sampler) sampleAll() error {
	for _, simulator := range s.simulators {
		if err := simulator.Read(s.sink); err != nil {
			return fmt.Errorf("recording reading from %s: %w", simulator.ID(), err)
		}
	}
	return nil
}
