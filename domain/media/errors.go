package media

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file extension is not in the allow-list
	ErrUnsupportedFormat = errors.New("unsupported video format")

	// ErrSourceNotFound is returned when the source video does not exist
	ErrSourceNotFound = errors.New("source video does not exist")

	// ErrNoAudioTrack is returned when the video has no audio stream
	ErrNoAudioTrack = errors.New("video has no audio track")
)

// ErrInputDir is returned when the batch input directory cannot be listed
var ErrInputDir = errors.New("input directory is not readable")
