// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the sensor logger.
//
// Configuration is loaded from a single file specified by either the
// SENSORLOG_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search.
//
// YAML (.yaml, .yml) and JSON with comments (.json, .jsonc) are both
// accepted with the same keys:
//
//	log_dir: ${HOME}/sensor-logs
//	filename_pattern: sensors_%Y%m%d_%H%M%S.csv
//	buffer_size: 10
//	rotate_every_hours: 24
//	max_size_mb: 5
//	rotate_after_lines: 10000   # optional
//	retention_days: 30
//	archive_compression: deflate # optional: deflate or zstd
//	sample_interval_seconds: 1   # optional
//	sensors:                     # optional, defaults to T1 P1 H1 L1
//	  - {id: T1, preset: temperature}
//
// The core fields have no defaults: a missing one is a [ConfigError].
// ${HOME} and ${VAR:-default} patterns are expanded in log_dir.
//
// This package depends on no other sensorlog packages.
package config
