// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"testing"
)

type codedError struct{ code int }

func (e codedError) Error() string { return "coded" }
func (e codedError) ExitCode() int { return e.code }

func TestReport(t *testing.T) {
	var buffer bytes.Buffer
	if code := report(&buffer, errors.New("config: buffer_size: must be positive")); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if got, want := buffer.String(), "error: config: buffer_size: must be positive\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	buffer.Reset()
	if code := report(&buffer, codedError{code: 3}); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if buffer.Len() != 0 {
		t.Errorf("coded error should print nothing, got %q", buffer.String())
	}
}
