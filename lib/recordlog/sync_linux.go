// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package recordlog

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data to stable storage. fdatasync skips the
// metadata-only updates (atime, mtime) that fsync would also write;
// the size change that matters for recovery is still persisted.
func syncFile(file *os.File) error {
	if err := unix.Fdatasync(int(file.Fd())); err != nil {
		return &os.PathError{Op: "fdatasync", Path: file.Name(), Err: err}
	}
	return nil
}
