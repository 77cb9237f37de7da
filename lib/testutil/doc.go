// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for sensorlog packages.
//
// [LogDir] creates a temporary log directory together with its archive
// subdirectory, the layout every recordlog component expects.
//
// [SetModTime] backdates a file's modification time, which is what the
// retention cleaner compares against its cutoff.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so that individual tests do not
// need direct time.After calls. It is the only place in the test suite
// where real wall-clock timeouts are used; everything else runs on
// clock.Fake.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no sensorlog-internal dependencies.
package testutil
