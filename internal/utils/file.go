package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist. Creating an existing
// directory is not an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists and is not a directory.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// HasValidExtension reports whether the filename carries one of the dotted
// extensions in valid (e.g. ".svs", ".tiff"). The comparison is
// case-insensitive.
func HasValidExtension(filename string, valid []string) bool {
	ext := filepath.Ext(filename)
	for _, v := range valid {
		if strings.EqualFold(ext, v) {
			return true
		}
	}
	return false
}

// ListSlideFiles lists the regular files in dir whose extension is in the
// valid set. Results are base names sorted lexicographically, so callers
// get a deterministic order regardless of how the OS returns directory
// entries.
func ListSlideFiles(dir string, valid []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if HasValidExtension(entry.Name(), valid) {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	return files, nil
}
