// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

// buffer holds records accepted by Logger.Record but not yet written.
// Its length stays below limit except between add reporting full and
// the flush that follows.
type buffer struct {
	records []Record
	limit   int
}

func newBuffer(limit int) *buffer {
	return &buffer{
		records: make([]Record, 0, limit),
		limit:   limit,
	}
}

// add appends record and reports whether the buffer reached its limit.
func (b *buffer) add(record Record) (full bool) {
	b.records = append(b.records, record)
	return len(b.records) >= b.limit
}

// pending returns the buffered records in arrival order. The slice is
// only valid until the next reset.
func (b *buffer) pending() []Record {
	return b.records
}

func (b *buffer) len() int {
	return len(b.records)
}

func (b *buffer) reset() {
	clear(b.records)
	b.records = b.records[:0]
}
