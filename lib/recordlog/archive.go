// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/sensorlog/lib/config"
)

const archiveExtension = ".zip"

// digestPrefix starts the archive comment. The rest of the comment is
// the hex BLAKE3 digest of the member's uncompressed bytes.
const digestPrefix = "blake3:"

// ErrDigestMismatch is returned by Verify when an archive member does
// not hash to the digest recorded in the archive comment.
var ErrDigestMismatch = errors.New("archive digest mismatch")

// Archiver compresses rotated record files into single-member zip
// archives and removes the originals.
type Archiver struct {
	directory string
	method    uint16
	logger    *slog.Logger
}

// NewArchiver returns an Archiver writing into directory using the
// named compression (config.CompressionDeflate or
// config.CompressionZstd).
func NewArchiver(directory, compression string, logger *slog.Logger) (*Archiver, error) {
	method, err := compressionMethod(compression)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errors.New("recordlog: archiver requires a logger")
	}
	return &Archiver{
		directory: directory,
		method:    method,
		logger:    logger,
	}, nil
}

func compressionMethod(name string) (uint16, error) {
	switch name {
	case config.CompressionDeflate:
		return zip.Deflate, nil
	case config.CompressionZstd:
		return zstd.ZipMethodWinZip, nil
	default:
		return 0, fmt.Errorf("unsupported archive compression %q", name)
	}
}

func methodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return config.CompressionDeflate
	case zstd.ZipMethodWinZip:
		return config.CompressionZstd
	default:
		return fmt.Sprintf("method-%d", method)
	}
}

// Archive compresses the file at path into <directory>/<name>.zip with
// a single member named after the file, then deletes the original. The
// original is deleted only after the archive is complete and synced;
// on any failure the original stays in place and a partial archive is
// removed. Archive refuses to overwrite an existing archive.
func (a *Archiver) Archive(path string) (string, error) {
	name := filepath.Base(path)
	archivePath := filepath.Join(a.directory, name+archiveExtension)

	source, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}
	info, err := source.Stat()
	if err != nil {
		source.Close()
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}

	destination, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		source.Close()
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}

	digest, err := a.writeArchive(destination, source, name, info.ModTime())
	if err == nil {
		err = destination.Sync()
	}
	if closeErr := destination.Close(); err == nil {
		err = closeErr
	}
	source.Close()
	if err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		return archivePath, fmt.Errorf("removing archived %s: %w", path, err)
	}

	a.logger.Info("record file archived",
		"source", path,
		"archive", archivePath,
		"bytes", info.Size(),
		"compression", methodName(a.method),
		"digest", digest,
	)
	return archivePath, nil
}

func (a *Archiver) writeArchive(w io.Writer, source io.Reader, name string, modified time.Time) (string, error) {
	archive := zip.NewWriter(w)
	if a.method == zstd.ZipMethodWinZip {
		archive.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	}

	member, err := archive.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   a.method,
		Modified: modified,
	})
	if err != nil {
		return "", err
	}

	hasher := blake3.New()
	if _, err := io.Copy(io.MultiWriter(member, hasher), source); err != nil {
		return "", err
	}
	digest := hex.EncodeToString(hasher.Sum(nil))
	if err := archive.SetComment(digestPrefix + digest); err != nil {
		return "", err
	}
	return digest, archive.Close()
}

// ArchiveInfo describes one archive in the archive directory.
type ArchiveInfo struct {
	Path           string    `json:"path"`
	Member         string    `json:"member"`
	Compression    string    `json:"compression"`
	Size           uint64    `json:"size"`
	CompressedSize uint64    `json:"compressed_size"`
	Modified       time.Time `json:"modified"`
	Digest         string    `json:"digest,omitempty"`
	DigestVerified bool      `json:"digest_verified"`
}

// openArchive opens a record archive and returns its single member.
// Archives that do not hold exactly one member are reported as a
// *FormatError.
func openArchive(path string) (*zip.ReadCloser, *zip.File, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, nil, &FormatError{Path: path, Reason: err.Error()}
		}
		return nil, nil, err
	}
	archive.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	if len(archive.File) != 1 {
		count := len(archive.File)
		archive.Close()
		return nil, nil, &FormatError{
			Path:   path,
			Reason: fmt.Sprintf("archive holds %d members, want 1", count),
		}
	}
	return archive, archive.File[0], nil
}

// Describe reads the metadata of the archive at path without
// decompressing it.
func Describe(path string) (ArchiveInfo, error) {
	archive, member, err := openArchive(path)
	if err != nil {
		return ArchiveInfo{}, err
	}
	defer archive.Close()
	return describe(path, archive.Comment, member), nil
}

func describe(path, comment string, member *zip.File) ArchiveInfo {
	return ArchiveInfo{
		Path:           path,
		Member:         member.Name,
		Compression:    methodName(member.Method),
		Size:           member.UncompressedSize64,
		CompressedSize: member.CompressedSize64,
		Modified:       member.Modified,
		Digest:         strings.TrimPrefix(comment, digestPrefix),
	}
}

// Verify decompresses the archive at path and checks its member
// against the recorded digest. Archives without a digest comment are
// decompressed fully (which checks the zip CRC) and reported with
// DigestVerified false.
func Verify(path string) (ArchiveInfo, error) {
	archive, member, err := openArchive(path)
	if err != nil {
		return ArchiveInfo{}, err
	}
	defer archive.Close()

	info := describe(path, archive.Comment, member)
	content, err := member.Open()
	if err != nil {
		return info, fmt.Errorf("verifying %s: %w", path, err)
	}
	defer content.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, content); err != nil {
		return info, fmt.Errorf("verifying %s: %w", path, err)
	}

	if !strings.HasPrefix(archive.Comment, digestPrefix) {
		info.Digest = ""
		return info, nil
	}
	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != info.Digest {
		return info, fmt.Errorf("verifying %s: %w: recorded %s, computed %s",
			path, ErrDigestMismatch, info.Digest, actual)
	}
	info.DigestVerified = true
	return info, nil
}

// ArchivePaths returns the paths of the archives in directory in
// lexical order. A missing directory yields none.
func ArchivePaths(directory string) ([]string, error) {
	return listFiles(directory, archiveExtension)
}

// ListArchives describes every archive in directory in lexical order.
// A missing directory yields no archives. Archives that cannot be read
// are skipped and their errors joined into the returned error.
func ListArchives(directory string) ([]ArchiveInfo, error) {
	paths, err := ArchivePaths(directory)
	if err != nil {
		return nil, err
	}

	var (
		infos []ArchiveInfo
		errs  []error
	)
	for _, path := range paths {
		info, err := Describe(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		infos = append(infos, info)
	}
	return infos, errors.Join(errs...)
}

// listFiles returns the regular files in directory whose names end in
// extension, sorted lexically. A missing directory is not an error.
func listFiles(directory, extension string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", directory, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), extension) {
			continue
		}
		paths = append(paths, filepath.Join(directory, entry.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}
