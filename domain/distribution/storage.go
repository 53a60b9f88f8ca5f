package distribution

import "errors"

// ErrInsufficientStorage is returned when Drive cannot hold the files to publish
var ErrInsufficientStorage = errors.New("insufficient Google Drive storage")

// ErrNoFolder is returned when publishing without a results folder
var ErrNoFolder = errors.New("results folder id is required")

// StorageInfo represents Google Drive storage quota information
type StorageInfo struct {
	TotalBytes     int64
	UsedBytes      int64
	AvailableBytes int64
}

// HasSpaceFor returns true if there's enough space for the given bytes.
// An unlimited quota reports TotalBytes as zero.
func (s StorageInfo) HasSpaceFor(bytes int64) bool {
	if s.TotalBytes == 0 {
		return true
	}
	return s.AvailableBytes >= bytes
}
