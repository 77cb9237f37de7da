// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// maxFilenameAttempts bounds the numeric suffixes tried when the
// archive for a generated name already exists.
const maxFilenameAttempts = 1000

// nextFilename expands pattern with now and picks a name whose archive
// does not yet exist in archiveDirectory. A live file with the plain
// name is acceptable: the logger appends to it.
//
// Two rotations within the pattern's resolution produce the same base
// name; the second gets ".1" inserted before the extension, the third
// ".2", and so on.
func nextFilename(pattern string, now time.Time, archiveDirectory string) (string, error) {
	base := strftime.Format(pattern, now)
	if base == "" || strings.ContainsRune(base, filepath.Separator) || strings.ContainsRune(base, '/') {
		return "", fmt.Errorf("filename pattern %q expands to unusable name %q", pattern, base)
	}

	for attempt := range maxFilenameAttempts {
		candidate := withSuffix(base, attempt)
		_, err := os.Stat(filepath.Join(archiveDirectory, candidate+archiveExtension))
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking archive for %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("no free filename for %q after %d attempts", base, maxFilenameAttempts)
}

func withSuffix(name string, attempt int) string {
	if attempt == 0 {
		return name
	}
	extension := filepath.Ext(name)
	return strings.TrimSuffix(name, extension) + "." + strconv.Itoa(attempt) + extension
}
