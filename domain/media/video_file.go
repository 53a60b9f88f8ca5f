package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SupportedFormats is the allow-list of video container extensions accepted at discovery
var SupportedFormats = []string{"mp4", "avi", "mov", "mkv", "webm", "m4v"}

// VideoFile is an eligible input discovered in the batch input directory
type VideoFile struct {
	Path   string
	Name   string
	Format string // lower-case extension without the dot
}

// FormatOf returns the lower-case format of a filename and whether it is supported
func FormatOf(name string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", false
	}
	ext = strings.ToLower(ext)
	for _, f := range SupportedFormats {
		if f == ext {
			return ext, true
		}
	}
	return "", false
}

// IsSupported reports whether the filename carries a supported video extension
func IsSupported(name string) bool {
	_, ok := FormatOf(name)
	return ok
}

// NewVideoFile creates a VideoFile from a path, rejecting unsupported extensions
func NewVideoFile(path string) (*VideoFile, error) {
	if path == "" {
		return nil, fmt.Errorf("video path is required")
	}
	name := filepath.Base(path)
	format, ok := FormatOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return &VideoFile{
		Path:   path,
		Name:   name,
		Format: format,
	}, nil
}

// Stem returns the filename without its extension
func (v *VideoFile) Stem() string {
	return strings.TrimSuffix(v.Name, filepath.Ext(v.Name))
}
