// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// configErrorFields collects the Field of every ConfigError joined
// into err.
func configErrorFields(err error) []string {
	var fields []string
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, inner := range joined.Unwrap() {
			var configErr *ConfigError
			if errors.As(inner, &configErr) {
				fields = append(fields, configErr.Field)
			}
		}
		return fields
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		fields = append(fields, configErr.Field)
	}
	return fields
}

func TestLoadFileYAML(t *testing.T) {
	path := writeConfig(t, "sensorlog.yaml", `
log_dir: /var/lib/sensorlog
filename_pattern: sensors_%Y%m%d_%H%M%S.csv
buffer_size: 10
rotate_every_hours: 0.5
max_size_mb: 1.5
rotate_after_lines: 500
retention_days: 7
archive_compression: zstd
sensors:
  - {id: T9, preset: temperature}
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.LogDirectory != "/var/lib/sensorlog" {
		t.Errorf("expected log_dir=/var/lib/sensorlog, got %s", cfg.LogDirectory)
	}
	if cfg.BufferSize != 10 {
		t.Errorf("expected buffer_size=10, got %d", cfg.BufferSize)
	}
	if cfg.RotateAfterLines != 500 {
		t.Errorf("expected rotate_after_lines=500, got %d", cfg.RotateAfterLines)
	}
	if cfg.ArchiveCompression != CompressionZstd {
		t.Errorf("expected archive_compression=zstd, got %s", cfg.ArchiveCompression)
	}
	if got := cfg.RotationInterval(); got != 30*time.Minute {
		t.Errorf("RotationInterval() = %v, want 30m", got)
	}
	if got := cfg.Retention(); got != 7*24*time.Hour {
		t.Errorf("Retention() = %v, want 168h", got)
	}
	if got, want := cfg.ArchiveDirectory(), "/var/lib/sensorlog/archive"; got != want {
		t.Errorf("ArchiveDirectory() = %q, want %q", got, want)
	}
	if len(cfg.Sensors) != 1 || cfg.Sensors[0].ID != "T9" {
		t.Errorf("expected a single sensor T9, got %+v", cfg.Sensors)
	}
}

// The original program's config.json must load unchanged, including a
// null rotate_after_lines.
func TestLoadFileJSONWithComments(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  // Where the CSV files go.
  "log_dir": "logs",
  "filename_pattern": "sensors_%Y%m%d_%H%M%S.csv",
  "buffer_size": 10,
  "rotate_every_hours": 24,
  "max_size_mb": 5,
  "rotate_after_lines": null,
  "retention_days": 30,
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.RotateAfterLines != 0 {
		t.Errorf("expected line rotation disabled, got %d", cfg.RotateAfterLines)
	}
	if cfg.ArchiveCompression != CompressionDeflate {
		t.Errorf("expected default archive_compression=deflate, got %s", cfg.ArchiveCompression)
	}
	if cfg.SampleInterval() != time.Second {
		t.Errorf("expected default sample interval 1s, got %v", cfg.SampleInterval())
	}
	if len(cfg.Sensors) != 4 {
		t.Errorf("expected the four default sensors, got %d", len(cfg.Sensors))
	}
}

func TestLoadFileReportsAllMissingFields(t *testing.T) {
	path := writeConfig(t, "partial.yaml", `
log_dir: /tmp/logs
buffer_size: 5
`)

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for missing fields, got nil")
	}

	fields := configErrorFields(err)
	want := []string{"filename_pattern", "rotate_every_hours", "max_size_mb", "retention_days"}
	if strings.Join(fields, ",") != strings.Join(want, ",") {
		t.Errorf("missing fields = %v, want %v", fields, want)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	for _, name := range []string{"unknown.yaml", "unknown.json"} {
		t.Run(name, func(t *testing.T) {
			content := `
log_dir: /tmp/logs
filename_pattern: s_%Y.csv
buffer_size: 5
rotate_every_hours: 1
max_size_mb: 1
retention_days: 1
rotate_every_minutes: 5
`
			if strings.HasSuffix(name, ".json") {
				content = `{"log_dir": "/tmp/logs", "filename_pattern": "s_%Y.csv", "buffer_size": 5,
"rotate_every_hours": 1, "max_size_mb": 1, "retention_days": 1, "rotate_every_minutes": 5}`
			}
			if _, err := LoadFile(writeConfig(t, name, content)); err == nil {
				t.Fatal("expected error for unknown key, got nil")
			}
		})
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "config.toml", "log_dir = 'x'"))
	if err == nil || !strings.Contains(err.Error(), "unsupported extension") {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SENSORLOG_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "SENSORLOG_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, "sensorlog.yml", `
log_dir: ${SENSORLOG_TEST_ROOT:-/fallback}/logs
filename_pattern: s_%H.csv
buffer_size: 1
rotate_every_hours: 1
max_size_mb: 1
retention_days: 0
`)
	t.Setenv(EnvironmentVariable, path)
	t.Setenv("SENSORLOG_TEST_ROOT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.LogDirectory != "/fallback/logs" {
		t.Errorf("expected log_dir=/fallback/logs, got %s", cfg.LogDirectory)
	}
	if cfg.RetentionDays != 0 {
		t.Errorf("expected retention_days=0 to be accepted, got %d", cfg.RetentionDays)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		LogDirectory:          "/tmp/logs",
		FilenamePattern:       "sensors_%Y%m%d.csv",
		BufferSize:            10,
		RotateEveryHours:      1,
		MaxSizeMB:             1,
		RetentionDays:         1,
		ArchiveCompression:    CompressionDeflate,
		SampleIntervalSeconds: 1,
		Sensors:               DefaultSensors(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, "buffer_size"},
		{"negative hours", func(c *Config) { c.RotateEveryHours = -1 }, "rotate_every_hours"},
		{"zero size", func(c *Config) { c.MaxSizeMB = 0 }, "max_size_mb"},
		{"negative lines", func(c *Config) { c.RotateAfterLines = -3 }, "rotate_after_lines"},
		{"negative retention", func(c *Config) { c.RetentionDays = -1 }, "retention_days"},
		{"path in pattern", func(c *Config) { c.FilenamePattern = "sub/%Y.csv" }, "filename_pattern"},
		{"wrong extension", func(c *Config) { c.FilenamePattern = "sensors_%Y.log" }, "filename_pattern"},
		{"bad compression", func(c *Config) { c.ArchiveCompression = "lzma" }, "archive_compression"},
		{"duplicate sensor", func(c *Config) {
			c.Sensors = []SensorConfig{{ID: "T1", Preset: "temperature"}, {ID: "T1", Preset: "light"}}
		}, "sensors[1].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			fields := configErrorFields(cfg.Validate())
			if len(fields) != 1 || fields[0] != tt.field {
				t.Errorf("error fields = %v, want [%s]", fields, tt.field)
			}
		})
	}
}

func TestValidateUpperBounds(t *testing.T) {
	valid := Config{
		LogDirectory:          "/tmp/logs",
		FilenamePattern:       "sensors_%Y%m%d.csv",
		BufferSize:            10,
		RotateEveryHours:      1,
		MaxSizeMB:             1,
		RetentionDays:         1,
		ArchiveCompression:    CompressionDeflate,
		SampleIntervalSeconds: 1,
		Sensors:               DefaultSensors(),
	}

	// An empty field means the value must be accepted.
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"retention at limit", func(c *Config) { c.RetentionDays = MaxRetentionDays }, ""},
		{"retention past limit", func(c *Config) { c.RetentionDays = MaxRetentionDays + 1 }, "retention_days"},
		{"retention far past limit", func(c *Config) { c.RetentionDays = 200000 }, "retention_days"},
		{"hours below limit", func(c *Config) { c.RotateEveryHours = 2_000_000 }, ""},
		{"hours past limit", func(c *Config) { c.RotateEveryHours = 1e7 }, "rotate_every_hours"},
		{"hours infinite", func(c *Config) { c.RotateEveryHours = math.Inf(1) }, "rotate_every_hours"},
		{"size below limit", func(c *Config) { c.MaxSizeMB = 8e12 }, ""},
		{"size past limit", func(c *Config) { c.MaxSizeMB = 9e12 }, "max_size_mb"},
		{"interval below limit", func(c *Config) { c.SampleIntervalSeconds = 9e9 }, ""},
		{"interval past limit", func(c *Config) { c.SampleIntervalSeconds = 1e10 }, "sample_interval_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			fields := configErrorFields(cfg.Validate())
			if tt.field == "" {
				if len(fields) != 0 {
					t.Fatalf("error fields = %v, want none", fields)
				}
				if cfg.RotationInterval() <= 0 || cfg.MaxSizeBytes() <= 0 ||
					cfg.Retention() < 0 || cfg.SampleInterval() <= 0 {
					t.Errorf("accepted config overflows: interval=%v size=%d retention=%v sample=%v",
						cfg.RotationInterval(), cfg.MaxSizeBytes(), cfg.Retention(), cfg.SampleInterval())
				}
				return
			}
			if len(fields) != 1 || fields[0] != tt.field {
				t.Errorf("error fields = %v, want [%s]", fields, tt.field)
			}
		})
	}
}

func TestMaxSizeBytes(t *testing.T) {
	tests := []struct {
		megabytes float64
		want      int64
	}{
		{1, 1048576},
		{0.5, 524288},
		// 0.001 MiB is 1048.576 bytes: a 1048-byte file is below the
		// threshold, a 1049-byte file has reached it.
		{0.001, 1049},
		{8e12, 8_388_608_000_000_000_000},
	}
	for _, tt := range tests {
		cfg := Config{MaxSizeMB: tt.megabytes}
		if got := cfg.MaxSizeBytes(); got != tt.want {
			t.Errorf("MaxSizeBytes(%v MB) = %d, want %d", tt.megabytes, got, tt.want)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Config{LogDirectory: filepath.Join(t.TempDir(), "nested", "logs")}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	info, err := os.Stat(cfg.ArchiveDirectory())
	if err != nil {
		t.Fatalf("archive directory missing: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", cfg.ArchiveDirectory())
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/sensor-logs",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/sensor-logs",
		},
		{
			input:    "${SENSORLOG_UNSET_FOR_TEST:-/srv}/logs",
			vars:     map[string]string{},
			expected: "/srv/logs",
		},
		{
			input:    "/absolute/logs",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/absolute/logs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := expandVars(tt.input, tt.vars)
			if result != tt.expected {
				t.Errorf("expandVars(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
