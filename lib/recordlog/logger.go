// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"github.com/bureau-foundation/sensorlog/lib/clock"
	"github.com/bureau-foundation/sensorlog/lib/config"
)

var (
	// ErrNotStarted is returned by Record, Flush, and Rotate before
	// Start or after Stop.
	ErrNotStarted = errors.New("recordlog: logger not started")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("recordlog: logger already started")
)

// Options holds the dependencies of a Logger.
type Options struct {
	// Clock supplies timestamps for rotation age, filenames, and
	// retention cutoffs. Required.
	Clock clock.Clock

	// Logger receives operational events (file opened, rotated,
	// archived, expired). Required.
	Logger *slog.Logger
}

// Stats counts what a Logger has done since it was created.
type Stats struct {
	RecordsAccepted uint64                    `json:"records_accepted"`
	RecordsWritten  uint64                    `json:"records_written"`
	Flushes         uint64                    `json:"flushes"`
	Rotations       map[RotationReason]uint64 `json:"rotations"`
	ArchivesRemoved uint64                    `json:"archives_removed"`
	Pending         int                       `json:"pending"`
}

// Logger buffers sensor records, appends them to the active record
// file, and rotates, archives, and expires files according to its
// configuration. All methods are safe for concurrent use, though the
// expected shape is a single sampling goroutine calling Record.
type Logger struct {
	config   config.Config
	clock    clock.Clock
	logger   *slog.Logger
	policy   Policy
	archiver *Archiver
	cleaner  *RetentionCleaner
	reader   *Reader

	mu     sync.Mutex
	buffer *buffer
	active *activeFile
	stats  Stats
}

// New validates cfg, creates the log and archive directories, and
// returns a Logger ready to Start.
func New(cfg config.Config, options Options) (*Logger, error) {
	if options.Clock == nil {
		return nil, errors.New("recordlog: Options.Clock is required")
	}
	if options.Logger == nil {
		return nil, errors.New("recordlog: Options.Logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger := options.Logger.With("component", "recordlog")
	archiver, err := NewArchiver(cfg.ArchiveDirectory(), cfg.ArchiveCompression, logger)
	if err != nil {
		return nil, err
	}

	return &Logger{
		config:   cfg,
		clock:    options.Clock,
		logger:   logger,
		policy:   PolicyFromConfig(cfg),
		archiver: archiver,
		cleaner:  NewRetentionCleaner(cfg.ArchiveDirectory(), cfg.Retention(), options.Clock, logger),
		reader:   NewReader(cfg.LogDirectory, logger),
		buffer:   newBuffer(cfg.BufferSize),
		stats:    Stats{Rotations: make(map[RotationReason]uint64)},
	}, nil
}

// Start opens the first active file. If a file with the generated name
// already exists in the log directory (a restart within the pattern's
// resolution) records are appended to it without a second header.
func (l *Logger) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active != nil {
		return ErrAlreadyStarted
	}
	return l.openNextLocked()
}

// Record accepts one reading. When the buffer reaches its configured
// size it is flushed to the active file and rotation thresholds are
// checked; an error from either is returned, and records that failed
// to write stay buffered.
func (l *Logger) Record(sensorID string, timestamp time.Time, value float64, unit string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return ErrNotStarted
	}

	l.stats.RecordsAccepted++
	full := l.buffer.add(Record{
		Timestamp: timestamp,
		SensorID:  sensorID,
		Value:     value,
		Unit:      unit,
	})
	if !full {
		return nil
	}
	if err := l.flushLocked(); err != nil {
		return err
	}
	return l.rotateIfNeededLocked()
}

// Flush writes buffered records to the active file without checking
// rotation thresholds.
func (l *Logger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return ErrNotStarted
	}
	return l.flushLocked()
}

// Rotate flushes, then closes and archives the active file regardless
// of thresholds, and opens a new one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return ErrNotStarted
	}
	if err := l.flushLocked(); err != nil {
		return err
	}
	return l.rotateLocked(RotateForced, true)
}

// Stop flushes pending records, closes and archives the active file,
// and runs retention cleanup. No new file is opened. Calling Stop on a
// stopped Logger does nothing.
//
// If the final flush fails the file is closed but not archived, so
// whatever reached disk stays queryable, and the error is returned.
func (l *Logger) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return nil
	}
	if err := l.flushLocked(); err != nil {
		path := l.active.path
		closeErr := l.active.close()
		l.active = nil
		return errors.Join(err, closeErr, fmt.Errorf("stopped without archiving %s", path))
	}
	return l.rotateLocked(RotateForced, false)
}

// Stats returns a snapshot of the Logger's counters.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := l.stats
	snapshot.Rotations = maps.Clone(l.stats.Rotations)
	snapshot.Pending = l.buffer.len()
	return snapshot
}

// ActivePath returns the path of the active file, or "" when the
// Logger is not started.
func (l *Logger) ActivePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return ""
	}
	return l.active.path
}

// Query scans the log directory for matching records. Records still in
// the buffer are not visible until flushed. See Reader.Query.
func (l *Logger) Query(ctx context.Context, q Query) iter.Seq2[Record, error] {
	return l.reader.Query(ctx, q)
}

func (l *Logger) flushLocked() error {
	pending := l.buffer.pending()
	if len(pending) == 0 {
		return nil
	}
	if err := l.active.write(pending); err != nil {
		return err
	}
	l.stats.RecordsWritten += uint64(len(pending))
	l.stats.Flushes++
	l.buffer.reset()
	return nil
}

func (l *Logger) rotateIfNeededLocked() error {
	reason := l.policy.Check(l.active.state(), l.clock.Now(), false)
	if reason == NoRotation {
		return nil
	}
	return l.rotateLocked(reason, true)
}

// rotateLocked closes and archives the active file, runs retention
// cleanup, and when reopen is set opens the next file. A failed
// archive leaves the closed file in the log directory where queries
// still find it; the next file is opened regardless.
func (l *Logger) rotateLocked(reason RotationReason, reopen bool) error {
	var errs []error
	closing := l.active
	l.active = nil
	if err := closing.close(); err != nil {
		errs = append(errs, fmt.Errorf("closing %s: %w", closing.path, err))
	}

	l.logger.Info("rotating record file",
		"path", closing.path,
		"reason", reason.String(),
		"records", closing.lineCount,
		"bytes", closing.size,
		"age", l.clock.Now().Sub(closing.opened),
	)

	if _, err := l.archiver.Archive(closing.path); err != nil {
		errs = append(errs, err)
	} else {
		l.stats.Rotations[reason]++
	}

	removed, err := l.cleaner.Cleanup()
	l.stats.ArchivesRemoved += uint64(len(removed))
	if err != nil {
		l.logger.Warn("retention cleanup incomplete", "error", err)
	}

	if reopen {
		if err := l.openNextLocked(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *Logger) openNextLocked() error {
	now := l.clock.Now()
	name, err := nextFilename(l.config.FilenamePattern, now, l.config.ArchiveDirectory())
	if err != nil {
		return err
	}

	active, err := openActiveFile(filepath.Join(l.config.LogDirectory, name), now)
	if err != nil {
		return err
	}
	l.active = active
	l.logger.Info("record file opened",
		"path", active.path,
		"appended", active.appended,
		"existing_records", active.lineCount,
	)
	return nil
}
