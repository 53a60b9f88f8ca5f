package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// AudioSettings controls the format of extracted audio
type AudioSettings struct {
	SampleRate int
	Channels   int
	TempDir    string
}

// ExtractService coordinates audio extraction and owns the lifetime of the artifact
type ExtractService struct {
	extractor   media.AudioExtractor
	fileChecker media.FileChecker
	settings    AudioSettings
	log         logrus.FieldLogger
}

// NewExtractService creates a new ExtractService
func NewExtractService(extractor media.AudioExtractor, fileChecker media.FileChecker, settings AudioSettings, log logrus.FieldLogger) *ExtractService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ExtractService{
		extractor:   extractor,
		fileChecker: fileChecker,
		settings:    settings,
		log:         log,
	}
}

// WithAudio extracts the audio of video, hands it to fn and releases it on every
// exit path, including a panic inside fn. Extraction failures are returned as
// extraction errors without calling fn.
func (s *ExtractService) WithAudio(ctx context.Context, video *media.VideoFile, fn func(*media.AudioArtifact) error) error {
	artifact, err := s.Extract(ctx, video)
	if err != nil {
		return err
	}
	defer func() {
		if err := artifact.Release(); err != nil {
			s.log.WithError(err).WithField("path", artifact.Path).Warn("Failed to remove temporary audio")
		}
	}()

	return fn(artifact)
}

// Extract produces a transient audio artifact. The caller must Release it.
func (s *ExtractService) Extract(ctx context.Context, video *media.VideoFile) (*media.AudioArtifact, error) {
	if !s.fileChecker.Exists(video.Path) {
		return nil, speech.NewExtractionError("open "+video.Name, fmt.Errorf("%w: %s", media.ErrSourceNotFound, video.Path))
	}

	req, err := media.NewAudioExtractionRequest(video, s.settings.SampleRate, s.settings.Channels, s.settings.TempDir)
	if err != nil {
		return nil, speech.NewExtractionError("request", err)
	}

	artifact, err := s.extractor.Extract(ctx, req)
	if err != nil {
		if errors.Is(err, speech.ErrExtraction) {
			return nil, err
		}
		return nil, speech.NewExtractionError("extract "+video.Name, err)
	}
	return artifact, nil
}
