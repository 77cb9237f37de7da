// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// activeFile is the record file currently accepting writes. Exactly
// one exists while the Logger is started.
type activeFile struct {
	path      string
	file      *os.File
	writer    *csv.Writer
	opened    time.Time
	lineCount int
	size      int64

	// appended is true when the file already held records when it was
	// opened (a restart within the same filename window).
	appended bool
}

// openActiveFile opens path for appending. An empty or new file gets
// the header row; an existing file keeps its header and its record
// count carries over to the line threshold.
func openActiveFile(path string, now time.Time) (*activeFile, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening record file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("opening record file: %w", err)
	}

	active := &activeFile{
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
		opened: now,
		size:   info.Size(),
	}

	if info.Size() == 0 {
		if err := active.writeRows([][]string{header}); err != nil {
			file.Close()
			return nil, err
		}
		return active, nil
	}

	records, err := countRecords(path)
	if err != nil {
		file.Close()
		return nil, err
	}
	active.lineCount = max(records-1, 0)
	active.appended = true
	return active, nil
}

// write appends records in order and forces them to stable storage.
func (a *activeFile) write(records []Record) error {
	rows := make([][]string, len(records))
	for index, record := range records {
		rows[index] = record.Row()
	}
	if err := a.writeRows(rows); err != nil {
		return err
	}
	a.lineCount += len(records)
	return nil
}

func (a *activeFile) writeRows(rows [][]string) error {
	if err := a.writer.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", a.path, err)
	}
	if err := syncFile(a.file); err != nil {
		return fmt.Errorf("syncing %s: %w", a.path, err)
	}
	info, err := a.file.Stat()
	if err != nil {
		return fmt.Errorf("writing %s: %w", a.path, err)
	}
	a.size = info.Size()
	return nil
}

func (a *activeFile) state() FileState {
	return FileState{
		Opened: a.opened,
		Size:   a.size,
		Lines:  a.lineCount,
	}
}

func (a *activeFile) close() error {
	a.writer.Flush()
	return errors.Join(a.writer.Error(), a.file.Close())
}

// countRecords returns the number of CSV records in path, header
// included. Quoted fields may span lines, so records are counted by
// parsing rather than by newlines. Rows with CSV syntax errors still
// count: they occupy the file all the same.
func countRecords(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	count := 0
	for {
		_, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return 0, fmt.Errorf("counting records in %s: %w", path, err)
		}
		count++
	}
}
