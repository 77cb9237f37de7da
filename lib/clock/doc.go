// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock instead of calling time.Now or
// time.NewTicker directly. Real() provides the standard library
// behavior. Fake() provides a deterministic clock that advances only
// when Advance or Set is called.
//
// # Wiring Pattern
//
//	logger, err := recordlog.New(cfg, recordlog.Options{Clock: clock.Real()})
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	logger, err := recordlog.New(cfg, recordlog.Options{Clock: c})
//	c.Advance(2 * time.Hour) // the active file is now two hours old
//
// Goroutines that sample on a ticker register it with NewTicker; use
// WaitForTickers before Advance so the tick is not lost.
package clock
