package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReplaceDir creates a directory, deleting any existing directory at
// the same path first. Callers must not point this at a directory
// holding unrelated data. Refuses to replace a regular file.
func ReplaceDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s exists and is not a directory", dir)
	case err == nil:
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing existing directory %s: %w", dir, err)
		}
	case !os.IsNotExist(err):
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return info.IsDir()
}

// TileImagePath returns the image path for a tile id within a split.
func TileImagePath(outdir, split, tileID string) string {
	return filepath.Join(outdir, "images", split, fmt.Sprintf("tile_%s.tif", tileID))
}

// TileLabelPath returns the label path for a tile id within a split.
func TileLabelPath(outdir, split, tileID string) string {
	return filepath.Join(outdir, "labels", split, fmt.Sprintf("tile_%s.txt", tileID))
}
