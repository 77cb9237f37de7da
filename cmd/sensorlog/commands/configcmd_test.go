// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/sensorlog/lib/config"
	"github.com/bureau-foundation/sensorlog/lib/testutil"
)

func TestConfigCheck(t *testing.T) {
	logDirectory, archiveDirectory := testutil.LogDir(t)
	params := configCheckParams{configOptions: configOptions{ConfigPath: writeConfig(t, logDirectory, "")}}

	var output bytes.Buffer
	if err := runConfigCheck(params, &output, discardLogger()); err != nil {
		t.Fatalf("runConfigCheck: %v", err)
	}
	for _, want := range []string{
		"archive_dir: " + archiveDirectory,
		"archive_compression: deflate",
		"max_size_bytes: 104857600",
		"id: L1",
		"preset: light",
	} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("output missing %q:\n%s", want, output.String())
		}
	}
	if strings.Contains(output.String(), "rotate_after_lines") {
		t.Errorf("unset rotate_after_lines printed:\n%s", output.String())
	}
}

func TestConfigCheckJSON(t *testing.T) {
	logDirectory, _ := testutil.LogDir(t)
	params := configCheckParams{configOptions: configOptions{
		ConfigPath: writeConfig(t, logDirectory, "archive_compression: zstd\nrotate_after_lines: 500\n"),
	}}
	params.OutputJSON = true

	var output bytes.Buffer
	if err := runConfigCheck(params, &output, discardLogger()); err != nil {
		t.Fatalf("runConfigCheck: %v", err)
	}
	var effective effectiveConfig
	if err := json.Unmarshal(output.Bytes(), &effective); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if effective.ArchiveCompression != config.CompressionZstd || effective.RotateAfterLines != 500 {
		t.Errorf("effective config = %+v", effective)
	}
	if len(effective.Sensors) != 4 {
		t.Errorf("got %d default sensors, want 4", len(effective.Sensors))
	}
}

func TestConfigCheckReportsEveryProblem(t *testing.T) {
	logDirectory, _ := testutil.LogDir(t)
	params := configCheckParams{configOptions: configOptions{
		ConfigPath: writeConfig(t, logDirectory, "archive_compression: lz4\nsample_interval_seconds: 0\n"),
	}}
	err := runConfigCheck(params, &bytes.Buffer{}, discardLogger())
	if err == nil {
		t.Fatal("runConfigCheck succeeded with an invalid config")
	}

	fields := map[string]bool{}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("error %v does not join multiple problems", err)
	}
	for _, inner := range joined.Unwrap() {
		var configErr *config.ConfigError
		if errors.As(inner, &configErr) {
			fields[configErr.Field] = true
		}
	}
	if !fields["archive_compression"] || !fields["sample_interval_seconds"] {
		t.Errorf("reported fields = %v", fields)
	}
}

func TestConfigCheckUnknownPreset(t *testing.T) {
	logDirectory, _ := testutil.LogDir(t)
	params := configCheckParams{configOptions: configOptions{
		ConfigPath: writeConfig(t, logDirectory, "sensors:\n  - id: X1\n    preset: radiation\n"),
	}}
	err := runConfigCheck(params, &bytes.Buffer{}, discardLogger())
	var configErr *config.ConfigError
	if !errors.As(err, &configErr) || configErr.Field != "sensors[0].preset" {
		t.Errorf("runConfigCheck error = %v, want ConfigError for sensors[0].preset", err)
	}
}
