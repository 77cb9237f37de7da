// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output, as "sensorlog archive verify" does before exiting 1 for
// a corrupt archive.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. process.Fatal checks for this method
// to distinguish "handled non-zero exit" from "unexpected error to
// display".
func (e *ExitError) ExitCode() int {
	return e.Code
}
