// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/sensorlog/lib/clock"
	"github.com/bureau-foundation/sensorlog/lib/config"
	"github.com/bureau-foundation/sensorlog/lib/testutil"
)

// epoch is the fake clock's starting point in every test.
var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	logDirectory, _ := testutil.LogDir(t)
	return config.Config{
		LogDirectory:          logDirectory,
		FilenamePattern:       "sensors_%Y%m%d_%H%M%S.csv",
		BufferSize:            1,
		RotateEveryHours:      24,
		MaxSizeMB:             100,
		RetentionDays:         30,
		ArchiveCompression:    config.CompressionDeflate,
		SampleIntervalSeconds: 1,
		Sensors:               config.DefaultSensors(),
	}
}

// startLogger creates and starts a Logger over cfg with a fake clock at
// epoch. The Logger is stopped when the test ends.
func startLogger(t *testing.T, cfg config.Config) (*Logger, *clock.FakeClock) {
	t.Helper()
	fakeClock := clock.Fake(epoch)
	logger, err := New(cfg, Options{Clock: fakeClock, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := logger.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { logger.Stop() })
	return logger, fakeClock
}

func record(t *testing.T, logger *Logger, sensorID string, timestamp time.Time, value float64) {
	t.Helper()
	if err := logger.Record(sensorID, timestamp, value, "C"); err != nil {
		t.Fatalf("Record(%s, %v): %v", sensorID, timestamp, err)
	}
}

// queryAll collects every record from seq, failing the test on any
// error.
func queryAll(t *testing.T, seq func(yield func(Record, error) bool)) []Record {
	t.Helper()
	records, formatErrors, err := Collect(seq)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(formatErrors) > 0 {
		t.Fatalf("query returned format errors: %v", formatErrors)
	}
	return records
}

func wideQuery(logger *Logger) func(yield func(Record, error) bool) {
	return logger.Query(context.Background(), Query{})
}

func archiveNames(t *testing.T, archiveDirectory string) []string {
	t.Helper()
	paths, err := listFiles(archiveDirectory, archiveExtension)
	if err != nil {
		t.Fatalf("listing archives: %v", err)
	}
	names := make([]string, len(paths))
	for index, path := range paths {
		names[index] = filepath.Base(path)
	}
	return names
}

func liveNames(t *testing.T, logDirectory string) []string {
	t.Helper()
	paths, err := listFiles(logDirectory, config.RecordFileExtension)
	if err != nil {
		t.Fatalf("listing record files: %v", err)
	}
	names := make([]string, len(paths))
	for index, path := range paths {
		names[index] = filepath.Base(path)
	}
	return names
}

func readArchiveMember(t *testing.T, path string) (string, []byte) {
	t.Helper()
	archive, member, err := openArchive(path)
	if err != nil {
		t.Fatalf("opening archive %s: %v", path, err)
	}
	defer archive.Close()
	content, err := member.Open()
	if err != nil {
		t.Fatalf("opening member of %s: %v", path, err)
	}
	defer content.Close()
	data, err := io.ReadAll(content)
	if err != nil {
		t.Fatalf("reading member of %s: %v", path, err)
	}
	return member.Name, data
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}
