package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// Extractor implements media.AudioExtractor using ffmpeg
type Extractor struct {
	ffmpegPath  string
	ffprobePath string
	probe       bool
	runner      CommandRunner
}

// ExtractorOption is a functional option for configuring Extractor
type ExtractorOption func(*Extractor)

// WithExtractorFFmpegPath sets a custom ffmpeg executable path
func WithExtractorFFmpegPath(path string) ExtractorOption {
	return func(e *Extractor) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithExtractorFFprobePath sets a custom ffprobe executable path
func WithExtractorFFprobePath(path string) ExtractorOption {
	return func(e *Extractor) {
		if path != "" {
			e.ffprobePath = path
		}
	}
}

// WithAudioProbe toggles the ffprobe audio stream check before extraction
func WithAudioProbe(enabled bool) ExtractorOption {
	return func(e *Extractor) {
		e.probe = enabled
	}
}

// WithExtractorCommandRunner sets a custom command runner (for testing)
func WithExtractorCommandRunner(runner CommandRunner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

// NewExtractor creates a new FFmpeg-based audio extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		probe:       true,
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract implements media.AudioExtractor. The audio is written as 16-bit PCM WAV
// into a fresh temp file; the file is removed again if extraction fails.
func (e *Extractor) Extract(ctx context.Context, req *media.AudioExtractionRequest) (*media.AudioArtifact, error) {
	src := req.Video.Path

	if e.probe {
		if err := e.probeAudio(ctx, src); err != nil {
			return nil, speech.NewExtractionError("probe "+req.Video.Name, err)
		}
	}

	tmp, err := os.CreateTemp(req.TempDir, req.TempPattern())
	if err != nil {
		return nil, speech.NewExtractionError("create temp audio", err)
	}
	outputPath := tmp.Name()
	tmp.Close()

	args := []string{
		"-y", // temp file already exists
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-vn", "-sn", "-dn",
		"-ac", strconv.Itoa(req.Channels),
		"-ar", strconv.Itoa(req.SampleRate),
		"-c:a", "pcm_s16le",
		outputPath,
	}

	if err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		os.Remove(outputPath)
		return nil, speech.NewExtractionError("ffmpeg "+req.Video.Name, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		os.Remove(outputPath)
		return nil, speech.NewExtractionError("ffmpeg "+req.Video.Name, fmt.Errorf("no audio written"))
	}

	return media.NewAudioArtifact(outputPath, src), nil
}

func (e *Extractor) probeAudio(ctx context.Context, src string) error {
	out, err := e.runner.Output(ctx, e.ffprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=index",
		"-of", "csv=p=0",
		src,
	)
	if err != nil {
		return fmt.Errorf("ffprobe failed: %w", err)
	}
	if strings.TrimSpace(string(out)) == "" {
		return media.ErrNoAudioTrack
	}
	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	if _, err := e.runner.Output(ctx, e.ffmpegPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	if e.probe {
		if _, err := e.runner.Output(ctx, e.ffprobePath, "-version"); err != nil {
			return fmt.Errorf("ffprobe not found or not executable: %w", err)
		}
	}
	return nil
}

// Ensure Extractor implements media.AudioExtractor
var _ media.AudioExtractor = (*Extractor)(nil)
