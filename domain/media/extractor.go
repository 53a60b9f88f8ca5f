package media

import "context"

// AudioExtractor defines the interface for audio extraction operations
// This is a port that can be implemented by different infrastructure adapters
type AudioExtractor interface {
	// Extract writes the audio track of the requested video to a transient artifact.
	// The caller owns the returned artifact and must Release it.
	Extract(ctx context.Context, req *AudioExtractionRequest) (*AudioArtifact, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// DirectoryLister lists the regular files of a directory (non-recursive)
type DirectoryLister interface {
	// ListFiles returns file names (not paths). It fails with ErrInputDir when
	// dir is missing, unreadable, or not a directory.
	ListFiles(dir string) ([]string, error)
}
