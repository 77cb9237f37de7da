// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the sensorlog
// binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// For example:
//
//	go build -ldflags "-X github.com/bureau-foundation/sensorlog/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/sensorlog
//
// When GitCommit is not injected, [Current] falls back to the VCS
// stamp embedded by the Go toolchain, and to "unknown" / "0.1.0-dev"
// when there is none (test binaries, builds outside a checkout).
package version
