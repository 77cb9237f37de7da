// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bureau-foundation/sensorlog/lib/config"
)

// Query selects records by inclusive time range and optional sensor.
type Query struct {
	Start time.Time

	// End is inclusive. The zero value leaves the range open-ended.
	End time.Time

	// SensorID restricts results to one sensor. Empty matches all.
	SensorID string
}

func (q Query) matches(record Record) bool {
	if record.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && record.Timestamp.After(q.End) {
		return false
	}
	return q.SensorID == "" || record.SensorID == q.SensorID
}

// Reader scans record files and archives under a log directory. It
// holds no state between queries and may be used while a Logger is
// writing: a file that disappears between listing and opening (rotated
// and archived in the meantime) is skipped.
type Reader struct {
	logDirectory     string
	archiveDirectory string
	logger           *slog.Logger
}

// NewReader returns a Reader over logDirectory and its archive
// subdirectory.
func NewReader(logDirectory string, logger *slog.Logger) *Reader {
	return &Reader{
		logDirectory:     logDirectory,
		archiveDirectory: filepath.Join(logDirectory, config.ArchiveSubdirectory),
		logger:           logger,
	}
}

type source struct {
	path     string
	archived bool
}

// recordName is the base name of the record file a source holds.
func (s source) recordName() string {
	name := filepath.Base(s.path)
	if s.archived {
		return strings.TrimSuffix(name, archiveExtension)
	}
	return name
}

// Query returns the records matching q. Live record files in the log
// directory are scanned first, then archives, each group in lexical
// filename order; within a file records keep their written order. No
// global timestamp order is promised (see SortByTime).
//
// Each record file is read once, live or archived. A live file that
// was archived between listing and opening is read from its archive
// instead, and an archive whose live file was already read is skipped.
//
// The sequence is lazy and single-pass. Errors are yielded in place of
// records: a *FormatError describes one bad record or file and the
// scan continues past it; any other error is an I/O or context
// failure after which the consumer should stop.
func (r *Reader) Query(ctx context.Context, q Query) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		sources, err := r.sources()
		if err != nil {
			yield(Record{}, err)
			return
		}

		// Base names of record files already read, live or archived.
		done := make(map[string]bool, len(sources))
		for _, src := range sources {
			if err := ctx.Err(); err != nil {
				yield(Record{}, err)
				return
			}
			name := src.recordName()
			if done[name] {
				continue
			}
			done[name] = true

			content, err := r.open(src)
			if errors.Is(err, fs.ErrNotExist) && !src.archived {
				r.logger.Debug("record file archived during query, reading archive", "path", src.path)
				src = source{path: filepath.Join(r.archiveDirectory, name+archiveExtension), archived: true}
				content, err = r.open(src)
			}
			if errors.Is(err, fs.ErrNotExist) {
				r.logger.Debug("skipping vanished record file", "path", src.path)
				continue
			}
			if err != nil {
				if !yield(Record{}, err) {
					return
				}
				continue
			}

			more := scanRecords(ctx, src.path, content, q, yield)
			content.Close()
			if !more {
				return
			}
		}
	}
}

func (r *Reader) sources() ([]source, error) {
	live, err := listFiles(r.logDirectory, config.RecordFileExtension)
	if err != nil {
		return nil, err
	}
	archived, err := listFiles(r.archiveDirectory, archiveExtension)
	if err != nil {
		return nil, err
	}

	sources := make([]source, 0, len(live)+len(archived))
	for _, path := range live {
		sources = append(sources, source{path: path})
	}
	for _, path := range archived {
		sources = append(sources, source{path: path, archived: true})
	}
	return sources, nil
}

func (r *Reader) open(src source) (io.ReadCloser, error) {
	if !src.archived {
		file, err := os.Open(src.path)
		if err != nil {
			return nil, err
		}
		return file, nil
	}

	archive, member, err := openArchive(src.path)
	if err != nil {
		return nil, err
	}
	content, err := member.Open()
	if err != nil {
		archive.Close()
		return nil, &FormatError{Path: src.path, Reason: err.Error()}
	}
	return &archiveMember{ReadCloser: content, archive: archive}, nil
}

// archiveMember closes both the member stream and its archive.
type archiveMember struct {
	io.ReadCloser
	archive io.Closer
}

func (m *archiveMember) Close() error {
	return errors.Join(m.ReadCloser.Close(), m.archive.Close())
}

func scanRecords(ctx context.Context, path string, content io.Reader, q Query, yield func(Record, error) bool) bool {
	reader := csv.NewReader(content)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		return yield(Record{}, readError(path, err))
	}
	if !slices.Equal(first, header) {
		return yield(Record{}, &FormatError{
			Path:   path,
			Line:   1,
			Reason: fmt.Sprintf("unexpected header %q", first),
		})
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return yield(Record{}, readError(path, err))
			}
			if !yield(Record{}, readError(path, err)) {
				return false
			}
			continue
		}

		line, _ := reader.FieldPos(0)
		record, err := parseRow(fields)
		if err != nil {
			if !yield(Record{}, &FormatError{Path: path, Line: line, Reason: err.Error()}) {
				return false
			}
			continue
		}
		if !q.matches(record) {
			continue
		}
		if err := ctx.Err(); err != nil {
			yield(Record{}, err)
			return false
		}
		if !yield(record, nil) {
			return false
		}
	}
}

// readError converts CSV syntax errors into a *FormatError and wraps
// anything else as an I/O failure on path.
func readError(path string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &FormatError{Path: path, Line: parseErr.StartLine, Reason: parseErr.Err.Error()}
	}
	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		return err
	}
	return fmt.Errorf("reading %s: %w", path, err)
}

// Collect drains seq into a slice. Format errors are gathered and
// returned alongside the records; any other error stops collection and
// is returned with the records gathered so far.
func Collect(seq iter.Seq2[Record, error]) ([]Record, []*FormatError, error) {
	var (
		records      []Record
		formatErrors []*FormatError
	)
	for record, err := range seq {
		if err != nil {
			var formatErr *FormatError
			if errors.As(err, &formatErr) {
				formatErrors = append(formatErrors, formatErr)
				continue
			}
			return records, formatErrors, err
		}
		records = append(records, record)
	}
	return records, formatErrors, nil
}
