// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit status
// (cli.ExitError). Such errors have already produced their output.
type exitCoder interface {
	ExitCode() int
}

// Fatal reports err and exits. Errors carrying an exit code exit with
// that code silently; anything else writes "error: err" to stderr and
// exits with code 1. Use it in main() for errors from run() where the
// structured logger may not be initialized.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err))
}

// report writes the error line (if any) and returns the exit code.
func report(w io.Writer, err error) int {
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
