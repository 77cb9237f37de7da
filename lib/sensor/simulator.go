// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sensor

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bureau-foundation/sensorlog/lib/clock"
	"github.com/bureau-foundation/sensorlog/lib/config"
)

// RecordSink receives sensor readings.
type RecordSink interface {
	Record(sensorID string, timestamp time.Time, value float64, unit string) error
}

// Simulator produces readings for one simulated sensor. A Simulator is
// not safe for concurrent use.
type Simulator struct {
	id     string
	preset Preset
	clock  clock.Clock
	random *rand.Rand
}

// NewSimulator returns a simulator for sensor id drawing values from
// preset with the given random source.
func NewSimulator(id string, preset Preset, clk clock.Clock, source rand.Source) *Simulator {
	return &Simulator{
		id:     id,
		preset: preset,
		clock:  clk,
		random: rand.New(source),
	}
}

// FromConfig builds one simulator per configured sensor. Simulators
// get independent random streams derived from seed. Unknown presets
// are reported as *config.ConfigError, all at once.
func FromConfig(sensors []config.SensorConfig, clk clock.Clock, seed uint64) ([]*Simulator, error) {
	var (
		simulators []*Simulator
		errs       []error
	)
	for index, sensor := range sensors {
		preset, err := LookupPreset(sensor.Preset)
		if err != nil {
			errs = append(errs, &config.ConfigError{
				Field:   fmt.Sprintf("sensors[%d].preset", index),
				Problem: err.Error(),
			})
			continue
		}
		simulators = append(simulators, NewSimulator(sensor.ID, preset, clk, rand.NewPCG(seed, uint64(index))))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return simulators, nil
}

// ID returns the sensor identifier.
func (s *Simulator) ID() string { return s.id }

// Preset returns the preset the simulator draws from.
func (s *Simulator) Preset() Preset { return s.preset }

// Read takes one reading and delivers it to sink.
func (s *Simulator) Read(sink RecordSink) error {
	value := s.preset.Min + s.random.Float64()*(s.preset.Max-s.preset.Min)
	return sink.Record(s.id, s.clock.Now(), value, s.preset.Unit)
}
