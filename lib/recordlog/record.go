// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Record is one timestamped sensor measurement. Records are values and
// are never modified after creation.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	SensorID  string    `json:"sensor_id"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// header is the first row of every record file.
var header = []string{"timestamp", "sensor_id", "value", "unit"}

// Header returns a copy of the record file header row.
func Header() []string {
	return slices.Clone(header)
}

// legacyTimestampLayout matches naive ISO-8601 timestamps without a
// zone offset, as written by earlier versions of the logger. They are
// interpreted in local time.
const legacyTimestampLayout = "2006-01-02T15:04:05.999999999"

// Row returns the record's CSV fields in header order. Values use the
// shortest decimal form that parses back to the same float64.
func (r Record) Row() []string {
	return []string{
		r.Timestamp.Format(time.RFC3339Nano),
		r.SensorID,
		strconv.FormatFloat(r.Value, 'f', -1, 64),
		r.Unit,
	}
}

// parseRow converts CSV fields back into a Record. The returned error
// describes the problem without location; callers wrap it in a
// FormatError.
func parseRow(fields []string) (Record, error) {
	if len(fields) != len(header) {
		return Record{}, fmt.Errorf("got %d fields, want %d", len(fields), len(header))
	}
	timestamp, err := parseTimestamp(fields[0])
	if err != nil {
		return Record{}, err
	}
	if fields[1] == "" {
		return Record{}, fmt.Errorf("empty sensor_id")
	}
	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid value %q", fields[2])
	}
	return Record{
		Timestamp: timestamp,
		SensorID:  fields[1],
		Value:     value,
		Unit:      fields[3],
	}, nil
}

func parseTimestamp(text string) (time.Time, error) {
	if timestamp, err := time.Parse(time.RFC3339Nano, text); err == nil {
		return timestamp, nil
	}
	if timestamp, err := time.ParseInLocation(legacyTimestampLayout, text, time.Local); err == nil {
		return timestamp, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", text)
}

// FormatError reports a record file, record, or archive that could not
// be parsed. Query yields one per bad record and keeps scanning; a bad
// header or archive layout yields one for the whole file, which is then
// skipped.
type FormatError struct {
	// Path is the record file or archive.
	Path string

	// Line is the 1-based line in the record file, or zero when the
	// problem concerns the whole file.
	Line int

	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// SortByTime orders records by timestamp. Records with equal
// timestamps keep their relative order. Query makes no ordering
// promise across files; collect and sort when a global order matters.
func SortByTime(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Compare(a.Timestamp.UnixNano(), b.Timestamp.UnixNano())
	})
}
