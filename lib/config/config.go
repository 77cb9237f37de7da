// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the environment variable consulted by
// [Load] when no explicit path is given.
const EnvironmentVariable = "SENSORLOG_CONFIG"

// ArchiveSubdirectory is the directory under LogDirectory that holds
// compressed archives.
const ArchiveSubdirectory = "archive"

// RecordFileExtension is the extension every generated record file
// name must carry. The reader uses it to tell record files apart from
// anything else in the log directory.
const RecordFileExtension = ".csv"

// Archive compression methods accepted in archive_compression.
const (
	CompressionDeflate = "deflate"
	CompressionZstd    = "zstd"
)

// Config is the immutable set of operational parameters for the sensor
// logger. It is loaded once at startup and passed by value; nothing
// mutates it afterwards.
type Config struct {
	// LogDirectory holds the active record file and rotated files not
	// yet archived. Archives live in LogDirectory/archive.
	LogDirectory string

	// FilenamePattern is a strftime template (for example
	// "sensors_%Y%m%d_%H%M%S.csv") expanded with the current time to
	// name each new record file.
	FilenamePattern string

	// BufferSize is the number of readings held in memory before a
	// flush to the active file.
	BufferSize int

	// RotateEveryHours is the maximum age of the active file.
	RotateEveryHours float64

	// MaxSizeMB is the size (in MiB) at which the active file rotates.
	MaxSizeMB float64

	// RotateAfterLines rotates once this many records have been
	// written to the active file. Zero disables the line threshold.
	RotateAfterLines int

	// RetentionDays is how long archives are kept. Zero expires every
	// archive older than the moment cleanup runs.
	RetentionDays int

	// ArchiveCompression is CompressionDeflate or CompressionZstd.
	ArchiveCompression string

	// SampleIntervalSeconds is the period of the simulated sensor loop
	// run by "sensorlog run".
	SampleIntervalSeconds float64

	// Sensors lists the simulated sensors sampled by "sensorlog run".
	Sensors []SensorConfig
}

// SensorConfig names one simulated sensor and the preset it uses.
type SensorConfig struct {
	ID     string `yaml:"id" json:"id"`
	Preset string `yaml:"preset" json:"preset"`
}

// fileConfig mirrors the on-disk keys. Pointers distinguish "absent"
// from "zero" so required fields can be reported as missing.
type fileConfig struct {
	LogDirectory          *string        `yaml:"log_dir" json:"log_dir"`
	FilenamePattern       *string        `yaml:"filename_pattern" json:"filename_pattern"`
	BufferSize            *int           `yaml:"buffer_size" json:"buffer_size"`
	RotateEveryHours      *float64       `yaml:"rotate_every_hours" json:"rotate_every_hours"`
	MaxSizeMB             *float64       `yaml:"max_size_mb" json:"max_size_mb"`
	RotateAfterLines      *int           `yaml:"rotate_after_lines" json:"rotate_after_lines"`
	RetentionDays         *int           `yaml:"retention_days" json:"retention_days"`
	ArchiveCompression    *string        `yaml:"archive_compression" json:"archive_compression"`
	SampleIntervalSeconds *float64       `yaml:"sample_interval_seconds" json:"sample_interval_seconds"`
	Sensors               []SensorConfig `yaml:"sensors" json:"sensors"`
}

// ConfigError reports one missing or invalid configuration field.
// [LoadFile] and [Config.Validate] join every ConfigError they find so
// a single run reports all problems at once; use errors.As to inspect
// them.
type ConfigError struct {
	Field   string
	Problem string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Problem)
}

// DefaultSensors returns the sensors sampled when the config file has
// no sensors section: one of each preset.
func DefaultSensors() []SensorConfig {
	return []SensorConfig{
		{ID: "T1", Preset: "temperature"},
		{ID: "P1", Preset: "pressure"},
		{ID: "H1", Preset: "humidity"},
		{ID: "L1", Preset: "light"},
	}
}

// Load loads configuration from the file named by the SENSORLOG_CONFIG
// environment variable. There is no fallback location: if the variable
// is not set, Load fails.
func Load() (Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Config{}, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your sensorlog config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads and validates configuration from path. The format is
// chosen by extension: .yaml/.yml are YAML, .json/.jsonc are JSON with
// optional comments and trailing commas. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var raw fileConfig
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&raw); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml, .json, or .jsonc)", path, extension)
	}

	cfg, err := raw.resolve()
	if err != nil {
		return Config{}, err
	}
	cfg.LogDirectory = expandVars(cfg.LogDirectory, map[string]string{
		"HOME": os.Getenv("HOME"),
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolve converts the on-disk form into a Config, reporting required
// fields that are absent and filling defaults for optional ones.
func (raw fileConfig) resolve() (Config, error) {
	var errs []error
	missing := func(field string) {
		errs = append(errs, &ConfigError{Field: field, Problem: "is required"})
	}

	var cfg Config
	if raw.LogDirectory == nil {
		missing("log_dir")
	} else {
		cfg.LogDirectory = *raw.LogDirectory
	}
	if raw.FilenamePattern == nil {
		missing("filename_pattern")
	} else {
		cfg.FilenamePattern = *raw.FilenamePattern
	}
	if raw.BufferSize == nil {
		missing("buffer_size")
	} else {
		cfg.BufferSize = *raw.BufferSize
	}
	if raw.RotateEveryHours == nil {
		missing("rotate_every_hours")
	} else {
		cfg.RotateEveryHours = *raw.RotateEveryHours
	}
	if raw.MaxSizeMB == nil {
		missing("max_size_mb")
	} else {
		cfg.MaxSizeMB = *raw.MaxSizeMB
	}
	if raw.RetentionDays == nil {
		missing("retention_days")
	} else {
		cfg.RetentionDays = *raw.RetentionDays
	}

	if raw.RotateAfterLines != nil {
		cfg.RotateAfterLines = *raw.RotateAfterLines
		if cfg.RotateAfterLines <= 0 {
			errs = append(errs, &ConfigError{Field: "rotate_after_lines", Problem: "must be positive when set"})
		}
	}

	cfg.ArchiveCompression = CompressionDeflate
	if raw.ArchiveCompression != nil {
		cfg.ArchiveCompression = *raw.ArchiveCompression
	}
	cfg.SampleIntervalSeconds = 1
	if raw.SampleIntervalSeconds != nil {
		cfg.SampleIntervalSeconds = *raw.SampleIntervalSeconds
	}
	cfg.Sensors = raw.Sensors
	if len(cfg.Sensors) == 0 {
		cfg.Sensors = DefaultSensors()
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks every field and returns all problems joined into one
// error, or nil.
func (c Config) Validate() error {
	var errs []error
	invalid := func(field, problem string) {
		errs = append(errs, &ConfigError{Field: field, Problem: problem})
	}

	if c.LogDirectory == "" {
		invalid("log_dir", "must not be empty")
	}

	switch {
	case c.FilenamePattern == "":
		invalid("filename_pattern", "must not be empty")
	case strings.ContainsRune(c.FilenamePattern, '/'):
		invalid("filename_pattern", "must produce a file name, not a path")
	case !strings.HasSuffix(c.FilenamePattern, RecordFileExtension):
		invalid("filename_pattern", fmt.Sprintf("must end in %q", RecordFileExtension))
	}

	if c.BufferSize <= 0 {
		invalid("buffer_size", "must be positive")
	}
	switch {
	case !(c.RotateEveryHours > 0):
		invalid("rotate_every_hours", "must be positive")
	case !fitsInt64(c.RotateEveryHours, float64(time.Hour)):
		invalid("rotate_every_hours", fmt.Sprintf("must be below %.0f", maxFloat(float64(time.Hour))))
	}
	switch {
	case !(c.MaxSizeMB > 0):
		invalid("max_size_mb", "must be positive")
	case !fitsInt64(c.MaxSizeMB, bytesPerMB):
		invalid("max_size_mb", fmt.Sprintf("must be below %.0f", maxFloat(bytesPerMB)))
	}
	if c.RotateAfterLines < 0 {
		invalid("rotate_after_lines", "must be positive when set")
	}
	switch {
	case c.RetentionDays < 0:
		invalid("retention_days", "must not be negative")
	case c.RetentionDays > MaxRetentionDays:
		invalid("retention_days", fmt.Sprintf("must be at most %d", MaxRetentionDays))
	}

	if c.ArchiveCompression != CompressionDeflate && c.ArchiveCompression != CompressionZstd {
		invalid("archive_compression", fmt.Sprintf("must be one of: %s, %s", CompressionDeflate, CompressionZstd))
	}
	switch {
	case !(c.SampleIntervalSeconds > 0):
		invalid("sample_interval_seconds", "must be positive")
	case !fitsInt64(c.SampleIntervalSeconds, float64(time.Second)):
		invalid("sample_interval_seconds", fmt.Sprintf("must be below %.0f", maxFloat(float64(time.Second))))
	}

	seen := make(map[string]bool, len(c.Sensors))
	for index, sensor := range c.Sensors {
		field := fmt.Sprintf("sensors[%d]", index)
		if sensor.ID == "" {
			invalid(field+".id", "must not be empty")
		} else if seen[sensor.ID] {
			invalid(field+".id", fmt.Sprintf("duplicate sensor id %q", sensor.ID))
		}
		seen[sensor.ID] = true
		if sensor.Preset == "" {
			invalid(field+".preset", "must not be empty")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// MaxRetentionDays is the largest retention_days whose window fits in
// a time.Duration (about 292 years).
const MaxRetentionDays = int(math.MaxInt64 / int64(24*time.Hour))

const bytesPerMB = 1024 * 1024

// fitsInt64 reports whether value × unit converts to an int64 without
// overflow. float64(math.MaxInt64) rounds up to 2^63, which itself
// does not fit, hence the strict comparison.
func fitsInt64(value, unit float64) bool {
	return value*unit < float64(math.MaxInt64)
}

// maxFloat is the exclusive upper bound fitsInt64 enforces for unit.
func maxFloat(unit float64) float64 {
	return float64(math.MaxInt64) / unit
}

// ArchiveDirectory returns the directory holding compressed archives.
func (c Config) ArchiveDirectory() string {
	return filepath.Join(c.LogDirectory, ArchiveSubdirectory)
}

// RotationInterval returns the maximum active file age.
func (c Config) RotationInterval() time.Duration {
	return time.Duration(c.RotateEveryHours * float64(time.Hour))
}

// MaxSizeBytes returns the size threshold in bytes, rounded up so that
// an integer file size reaches it exactly when it reaches
// MaxSizeMB × 1024 × 1024.
func (c Config) MaxSizeBytes() int64 {
	return int64(math.Ceil(c.MaxSizeMB * bytesPerMB))
}

// Retention returns the archive retention window. Validate bounds
// RetentionDays so the product cannot overflow.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// SampleInterval returns the simulated sensor sampling period.
func (c Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalSeconds * float64(time.Second))
}

// EnsureDirectories creates the log and archive directories if they do
// not exist.
func (c Config) EnsureDirectories() error {
	for _, path := range []string{c.LogDirectory, c.ArchiveDirectory()} {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}
