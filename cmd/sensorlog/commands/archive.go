// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sensorlog/cmd/sensorlog/cli"
	"github.com/bureau-foundation/sensorlog/lib/config"
	"github.com/bureau-foundation/sensorlog/lib/recordlog"
)

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:    "archive",
		Summary: "Inspect and verify compressed archives",
		Subcommands: []*cli.Command{
			archiveListCommand(),
			archiveVerifyCommand(),
		},
	}
}

type archiveListParams struct {
	sourceOptions
	cli.JSONOutput
	cli.LogOptions
}

func archiveListCommand() *cli.Command {
	var params archiveListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List archives with size, compression, and digest",
		Usage:   "sensorlog archive list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			return runArchiveList(params, stdout, logger)
		},
	}
}

func runArchiveList(params archiveListParams, w io.Writer, logger *slog.Logger) error {
	logDirectory, err := params.logDirectory()
	if err != nil {
		return err
	}

	// Unreadable archives are reported after the readable ones are
	// listed.
	infos, listErr := recordlog.ListArchives(filepath.Join(logDirectory, config.ArchiveSubdirectory))
	if done, err := params.EmitJSON(w, infos); done {
		return errors.Join(err, listErr)
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "no archives")
		return listErr
	}
	archives := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ARCHIVE", "MEMBER", "COMPRESSION", "SIZE", "COMPRESSED", "MODIFIED")
	var totalSize, totalCompressed uint64
	for _, info := range infos {
		archives.Row(
			filepath.Base(info.Path),
			info.Member,
			info.Compression,
			strconv.FormatUint(info.Size, 10),
			strconv.FormatUint(info.CompressedSize, 10),
			info.Modified.Format(time.RFC3339),
		)
		totalSize += info.Size
		totalCompressed += info.CompressedSize
	}
	fmt.Fprintln(w, archives.String())
	logger.Debug("archives listed",
		"count", len(infos),
		"bytes", totalSize,
		"compressed_bytes", totalCompressed,
	)
	return listErr
}

type archiveVerifyParams struct {
	sourceOptions
	cli.JSONOutput
	cli.LogOptions
}

// verifyResult is one row of "archive verify" output.
type verifyResult struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Digest string `json:"digest,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	verifyOK       = "ok"
	verifyNoDigest = "no-digest"
	verifyFailed   = "failed"
)

func archiveVerifyCommand() *cli.Command {
	var params archiveVerifyParams
	return &cli.Command{
		Name:    "verify",
		Summary: "Check archives against their recorded BLAKE3 digests",
		Description: `Decompress each archive and compare the BLAKE3 digest of its member
with the digest recorded in the archive comment. With no arguments
every archive in the archive directory is checked.

Exits 1 if any archive is corrupt or unreadable.`,
		Usage: "sensorlog archive verify [flags] [archive.zip ...]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			return runArchiveVerify(params, args, stdout, logger)
		},
	}
}

func runArchiveVerify(params archiveVerifyParams, paths []string, w io.Writer, logger *slog.Logger) error {
	if len(paths) == 0 {
		logDirectory, err := params.logDirectory()
		if err != nil {
			return err
		}
		paths, err = recordlog.ArchivePaths(filepath.Join(logDirectory, config.ArchiveSubdirectory))
		if err != nil {
			return err
		}
	}

	results := make([]verifyResult, 0, len(paths))
	failed := 0
	for _, path := range paths {
		info, err := recordlog.Verify(path)
		result := verifyResult{Path: path, Digest: info.Digest}
		switch {
		case err != nil:
			result.Status = verifyFailed
			result.Error = err.Error()
			failed++
			logger.Warn("archive verification failed", "path", path, "error", err)
		case info.DigestVerified:
			result.Status = verifyOK
		default:
			result.Status = verifyNoDigest
		}
		results = append(results, result)
	}

	if done, err := params.EmitJSON(w, results); done {
		if err != nil {
			return err
		}
	} else {
		for _, result := range results {
			switch result.Status {
			case verifyFailed:
				fmt.Fprintf(w, "FAILED  %s: %s\n", result.Path, result.Error)
			case verifyNoDigest:
				fmt.Fprintf(w, "no digest  %s\n", result.Path)
			default:
				fmt.Fprintf(w, "ok  %s\n", result.Path)
			}
		}
		fmt.Fprintf(w, "%d archives checked, %d failed\n", len(results), failed)
	}

	if failed > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
