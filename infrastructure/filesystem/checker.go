package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"video-translator/domain/media"
)

// Checker implements media.FileChecker and media.DirectoryLister using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListFiles returns the names of regular files in dir, following symlinks to files
func (c *Checker) ListFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", media.ErrInputDir, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", media.ErrInputDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", media.ErrInputDir, dir, err)
	}

	var files []string
	for _, entry := range entries {
		switch {
		case entry.Type().IsRegular():
			files = append(files, entry.Name())
		case entry.Type()&os.ModeSymlink != 0:
			target, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err == nil && target.Mode().IsRegular() {
				files = append(files, entry.Name())
			}
		}
	}
	return files, nil
}

// Ensure Checker implements the media ports
var (
	_ media.FileChecker     = (*Checker)(nil)
	_ media.DirectoryLister = (*Checker)(nil)
)
