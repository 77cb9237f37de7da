// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. It centralizes
// the one legitimate raw I/O pattern outside the structured logger:
// fatal error reporting to stderr after run() returns, when the logger
// may not have been initialized (for example a config file that failed
// to load).
package process
