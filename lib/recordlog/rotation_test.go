// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"testing"
	"time"

	"github.com/bureau-foundation/sensorlog/lib/config"
)

func TestPolicyCheck(t *testing.T) {
	policy := Policy{MaxAge: time.Hour, MaxSize: 1049, MaxLines: 100}
	fresh := FileState{Opened: epoch, Size: 31, Lines: 0}

	tests := []struct {
		name   string
		state  FileState
		now    time.Time
		forced bool
		want   RotationReason
	}{
		{"fresh file", fresh, epoch, false, NoRotation},
		{"forced", fresh, epoch, true, RotateForced},
		{"age just below", fresh, epoch.Add(time.Hour - time.Nanosecond), false, NoRotation},
		{"age at threshold", fresh, epoch.Add(time.Hour), false, RotateAge},
		{"size just below", FileState{Opened: epoch, Size: 1048}, epoch, false, NoRotation},
		{"size at threshold", FileState{Opened: epoch, Size: 1049}, epoch, false, RotateSize},
		{"lines just below", FileState{Opened: epoch, Lines: 99}, epoch, false, NoRotation},
		{"lines at threshold", FileState{Opened: epoch, Lines: 100}, epoch, false, RotateLines},
		{"forced wins", FileState{Opened: epoch, Size: 5000, Lines: 500}, epoch.Add(2 * time.Hour), true, RotateForced},
		{"age before size", FileState{Opened: epoch, Size: 5000}, epoch.Add(time.Hour), false, RotateAge},
		{"size before lines", FileState{Opened: epoch, Size: 5000, Lines: 500}, epoch, false, RotateSize},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := policy.Check(test.state, test.now, test.forced); got != test.want {
				t.Errorf("Check() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestPolicyLineThresholdDisabled(t *testing.T) {
	policy := Policy{MaxAge: time.Hour, MaxSize: 1 << 30}
	state := FileState{Opened: epoch, Lines: 1_000_000}
	if got := policy.Check(state, epoch, false); got != NoRotation {
		t.Errorf("Check() with MaxLines 0 = %v, want %v", got, NoRotation)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	policy := PolicyFromConfig(config.Config{
		RotateEveryHours: 0.5,
		MaxSizeMB:        0.001,
		RotateAfterLines: 42,
	})
	if policy.MaxAge != 30*time.Minute {
		t.Errorf("MaxAge = %v, want 30m", policy.MaxAge)
	}
	if policy.MaxSize != 1049 {
		t.Errorf("MaxSize = %d, want 1049", policy.MaxSize)
	}
	if policy.MaxLines != 42 {
		t.Errorf("MaxLines = %d, want 42", policy.MaxLines)
	}
}

func TestPolicyFromConfigLargestThresholds(t *testing.T) {
	policy := PolicyFromConfig(config.Config{
		RotateEveryHours: 2_000_000,
		MaxSizeMB:        8e12,
	})
	if policy.MaxAge <= 0 || policy.MaxSize <= 0 {
		t.Fatalf("thresholds overflowed: MaxAge=%v MaxSize=%d", policy.MaxAge, policy.MaxSize)
	}
	state := FileState{Opened: epoch, Size: 1 << 40, Lines: 1_000_000}
	if got := policy.Check(state, epoch.Add(100_000*time.Hour), false); got != NoRotation {
		t.Errorf("Check() = %v, want %v", got, NoRotation)
	}
}

func TestRotationReasonString(t *testing.T) {
	for reason, want := range map[RotationReason]string{
		NoRotation:         "none",
		RotateForced:       "forced",
		RotateAge:          "age",
		RotateSize:         "size",
		RotateLines:        "lines",
		RotationReason(99): "unknown",
	} {
		if got := reason.String(); got != want {
			t.Errorf("RotationReason(%d).String() = %q, want %q", int(reason), got, want)
		}
	}
}
