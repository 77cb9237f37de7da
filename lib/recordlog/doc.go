// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recordlog persists sensor readings to rotating CSV record
// files and answers time-range queries over them.
//
// A [Logger] accepts readings through Record and holds them in a
// fixed-size buffer. When the buffer fills it is appended to the
// active file in the log directory and synced to disk, then the
// rotation [Policy] is checked: a file rotates once it is older than
// rotate_every_hours, at least max_size_mb on disk, or (when enabled)
// holding rotate_after_lines records. Rotation closes the file,
// compresses it into a single-member zip in the archive subdirectory,
// deletes the original, removes archives older than retention_days,
// and opens a new file named by expanding the strftime
// filename_pattern.
//
// Record files are CSV with a header row:
//
//	timestamp,sensor_id,value,unit
//	2026-03-01T12:00:00.123456789Z,T1,21.5,°C
//
// Timestamps are RFC 3339 with nanoseconds. Archives carry the BLAKE3
// digest of their member in the zip comment ("blake3:<hex>"), checked
// by [Verify]. Deflate and Zstandard (zip method 93) are supported.
//
// A [Reader] scans live files and archives without coordinating with
// the writer. Every record written is visible to a query exactly once:
// either in its live file or in that file's archive, never both,
// because the archive is complete before the original is removed and
// a file that vanishes mid-scan is skipped.
//
// Readings still in the buffer are not on disk. Callers that need
// them visible call Flush; Stop flushes and archives the final file.
package recordlog
