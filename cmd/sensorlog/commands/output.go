// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bureau-foundation/sensorlog/cmd/sensorlog/cli"
	"github.com/bureau-foundation/sensorlog/lib/codec"
	"github.com/bureau-foundation/sensorlog/lib/recordlog"
)

const (
	formatCSV   = "csv"
	formatJSON  = "json"
	formatCBOR  = "cbor"
	formatTable = "table"
)

// recordWriter renders query results. Close must be called once all
// records are written; formats that need the whole result (json,
// table) produce their output there.
type recordWriter interface {
	Write(recordlog.Record) error
	Close() error
}

func newRecordWriter(format string, w io.Writer) (recordWriter, error) {
	switch format {
	case formatCSV:
		writer := csv.NewWriter(w)
		if err := writer.Write(recordlog.Header()); err != nil {
			return nil, err
		}
		return &csvRecordWriter{writer: writer}, nil
	case formatJSON:
		return &jsonRecordWriter{w: w}, nil
	case formatCBOR:
		return &cborRecordWriter{encoder: codec.NewEncoder(w)}, nil
	case formatTable:
		return &tableRecordWriter{
			w: w,
			table: table.New().
				Border(lipgloss.NormalBorder()).
				Headers("TIMESTAMP", "SENSOR", "VALUE", "UNIT"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want %s, %s, %s, or %s)",
			format, formatCSV, formatJSON, formatCBOR, formatTable)
	}
}

// csvRecordWriter writes the record file format itself, so query
// output can be fed back to anything that reads record files.
type csvRecordWriter struct {
	writer *csv.Writer
}

func (c *csvRecordWriter) Write(record recordlog.Record) error {
	return c.writer.Write(record.Row())
}

func (c *csvRecordWriter) Close() error {
	c.writer.Flush()
	return c.writer.Error()
}

type jsonRecordWriter struct {
	w       io.Writer
	records []recordlog.Record
}

func (j *jsonRecordWriter) Write(record recordlog.Record) error {
	j.records = append(j.records, record)
	return nil
}

func (j *jsonRecordWriter) Close() error {
	return cli.WriteJSON(j.w, j.records)
}

// cborRecordWriter emits a CBOR sequence (RFC 8742): one map per
// record, no framing.
type cborRecordWriter struct {
	encoder *codec.Encoder
}

func (c *cborRecordWriter) Write(record recordlog.Record) error {
	return c.encoder.Encode(record)
}

func (c *cborRecordWriter) Close() error {
	return nil
}

type tableRecordWriter struct {
	w     io.Writer
	table *table.Table
	rows  int
}

func (t *tableRecordWriter) Write(record recordlog.Record) error {
	t.table.Row(
		record.Timestamp.Format(time.RFC3339Nano),
		record.SensorID,
		strconv.FormatFloat(record.Value, 'f', 3, 64),
		record.Unit,
	)
	t.rows++
	return nil
}

func (t *tableRecordWriter) Close() error {
	if t.rows == 0 {
		_, err := fmt.Fprintln(t.w, "no matching records")
		return err
	}
	_, err := fmt.Fprintln(t.w, t.table.String())
	return err
}
