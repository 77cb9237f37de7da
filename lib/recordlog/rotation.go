// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"time"

	"github.com/bureau-foundation/sensorlog/lib/config"
)

// RotationReason identifies which threshold closed a record file.
type RotationReason int

const (
	NoRotation RotationReason = iota
	// RotateForced is an explicit rotation: Logger.Rotate or Stop.
	RotateForced
	RotateAge
	RotateSize
	RotateLines
)

func (r RotationReason) String() string {
	switch r {
	case NoRotation:
		return "none"
	case RotateForced:
		return "forced"
	case RotateAge:
		return "age"
	case RotateSize:
		return "size"
	case RotateLines:
		return "lines"
	default:
		return "unknown"
	}
}

// Policy holds the rotation thresholds. A file rotates when any one of
// them is reached.
type Policy struct {
	MaxAge  time.Duration
	MaxSize int64

	// MaxLines is the record count threshold. Zero disables it.
	MaxLines int
}

// PolicyFromConfig derives rotation thresholds from cfg.
func PolicyFromConfig(cfg config.Config) Policy {
	return Policy{
		MaxAge:   cfg.RotationInterval(),
		MaxSize:  cfg.MaxSizeBytes(),
		MaxLines: cfg.RotateAfterLines,
	}
}

// FileState is the observable state of the active file that rotation
// decisions depend on.
type FileState struct {
	// Opened is when the current file was opened by this process.
	Opened time.Time

	// Size is the on-disk size in bytes, header included.
	Size int64

	// Lines counts records, not including the header.
	Lines int
}

// Check decides whether the active file should rotate. When several
// thresholds are met the first in the order forced, age, size, lines
// is reported.
func (p Policy) Check(state FileState, now time.Time, forced bool) RotationReason {
	switch {
	case forced:
		return RotateForced
	case now.Sub(state.Opened) >= p.MaxAge:
		return RotateAge
	case state.Size >= p.MaxSize:
		return RotateSize
	case p.MaxLines > 0 && state.Lines >= p.MaxLines:
		return RotateLines
	}
	return NoRotation
}
