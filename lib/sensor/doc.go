// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sensor simulates environmental sensors and feeds their
// readings to a [RecordSink].
//
// Each [Simulator] draws uniformly distributed values from a [Preset]
// range (temperature, pressure, humidity, light) and timestamps them
// with an injected clock. A [Sampler] reads every simulator once per
// interval until its context ends. recordlog.Logger satisfies
// RecordSink.
package sensor
