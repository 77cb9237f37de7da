// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/sensorlog/lib/clock"
)

// RetentionCleaner deletes archives older than the retention period.
// Cleanup is best-effort: a file that cannot be removed is reported
// and the scan continues with the rest.
type RetentionCleaner struct {
	directory string
	retention time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

// NewRetentionCleaner returns a cleaner for directory. A zero
// retention removes every archive whose modification time is before
// now.
func NewRetentionCleaner(directory string, retention time.Duration, clk clock.Clock, logger *slog.Logger) *RetentionCleaner {
	return &RetentionCleaner{
		directory: directory,
		retention: retention,
		clock:     clk,
		logger:    logger,
	}
}

// Cleanup removes every regular file in the directory whose
// modification time is strictly before now minus the retention period.
// It returns the paths removed and the joined removal errors.
// Subdirectories and other non-regular entries are left alone.
func (c *RetentionCleaner) Cleanup() ([]string, error) {
	cutoff := c.clock.Now().Add(-c.retention)

	entries, err := os.ReadDir(c.directory)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retention scan of %s: %w", c.directory, err)
	}

	var (
		removed []string
		errs    []error
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(c.directory, entry.Name())
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			c.logger.Warn("retention cleanup could not remove archive",
				"path", path,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		c.logger.Info("expired archive removed",
			"path", path,
			"modified", info.ModTime(),
			"cutoff", cutoff,
		)
		removed = append(removed, path)
	}
	return removed, errors.Join(errs...)
}
