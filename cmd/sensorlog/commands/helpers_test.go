// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/sensorlog/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// writeConfig writes a YAML config for logDirectory with the required
// keys set, followed by extra, and returns its path.
func writeConfig(t *testing.T, logDirectory, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensorlog.yaml")
	content := fmt.Sprintf(`log_dir: %s
filename_pattern: "sensors_%%Y%%m%%d_%%H%%M%%S.csv"
buffer_size: 10
rotate_every_hours: 24
max_size_mb: 100
retention_days: 30
`, logDirectory) + extra
	testutil.WriteFile(t, path, content)
	return path
}

// writeRecordFile writes a record file holding the header and rows.
func writeRecordFile(t *testing.T, path string, rows ...string) {
	t.Helper()
	lines := append([]string{"timestamp,sensor_id,value,unit"}, rows...)
	testutil.WriteFile(t, path, strings.Join(lines, "\n")+"\n")
}
