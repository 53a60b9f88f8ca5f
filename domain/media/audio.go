package media

import (
	"fmt"
	"os"
	"sync"
)

const (
	// DefaultSampleRate is the sample rate used for speech recognition input
	DefaultSampleRate = 16000

	// DefaultChannels is mono, which is all speech recognition needs
	DefaultChannels = 1
)

// AudioExtractionRequest represents a request to extract audio from a video
type AudioExtractionRequest struct {
	Video      *VideoFile
	SampleRate int
	Channels   int
	TempDir    string // empty uses the OS temp directory
}

// NewAudioExtractionRequest creates a new AudioExtractionRequest with defaults applied
func NewAudioExtractionRequest(video *VideoFile, sampleRate, channels int, tempDir string) (*AudioExtractionRequest, error) {
	if video == nil || video.Path == "" {
		return nil, fmt.Errorf("source video path is required")
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}
	return &AudioExtractionRequest{
		Video:      video,
		SampleRate: sampleRate,
		Channels:   channels,
		TempDir:    tempDir,
	}, nil
}

// TempPattern returns the os.CreateTemp pattern for the extracted audio
func (r *AudioExtractionRequest) TempPattern() string {
	return r.Video.Stem() + "-*.wav"
}

// AudioArtifact is a transient audio file owned by a single pipeline run
type AudioArtifact struct {
	Path       string
	SourcePath string

	once    sync.Once
	release func(path string) error
	err     error
}

// NewAudioArtifact creates an artifact whose Release removes the file at path
func NewAudioArtifact(path, sourcePath string) *AudioArtifact {
	return &AudioArtifact{
		Path:       path,
		SourcePath: sourcePath,
		release:    removeIfExists,
	}
}

// NewAudioArtifactWithRelease creates an artifact with a custom release function
func NewAudioArtifactWithRelease(path, sourcePath string, release func(path string) error) *AudioArtifact {
	a := NewAudioArtifact(path, sourcePath)
	if release != nil {
		a.release = release
	}
	return a
}

// Release frees the artifact. Safe to call more than once; only the first call acts.
func (a *AudioArtifact) Release() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		a.err = a.release(a.Path)
	})
	return a.err
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
