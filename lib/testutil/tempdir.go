// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// LogDir creates a temporary log directory containing an empty
// "archive" subdirectory and returns both paths. The directory is
// removed when the test completes.
func LogDir(t *testing.T) (logDirectory, archiveDirectory string) {
	t.Helper()

	logDirectory = filepath.Join(t.TempDir(), "logs")
	archiveDirectory = filepath.Join(logDirectory, "archive")
	if err := os.MkdirAll(archiveDirectory, 0755); err != nil {
		t.Fatalf("creating log directory: %v", err)
	}
	return logDirectory, archiveDirectory
}

// SetModTime sets both the access and modification time of path.
func SetModTime(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("setting modification time of %s: %v", path, err)
	}
}

// WriteFile writes content to path, creating it with mode 0644.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
