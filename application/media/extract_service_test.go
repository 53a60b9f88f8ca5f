package media

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

type mockExtractor struct {
	err      error
	released int
	gotReq   *media.AudioExtractionRequest
}

func (m *mockExtractor) Extract(ctx context.Context, req *media.AudioExtractionRequest) (*media.AudioArtifact, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return media.NewAudioArtifactWithRelease("/tmp/a.wav", req.Video.Path, func(string) error {
		m.released++
		return nil
	}), nil
}

type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var video = &media.VideoFile{Path: "/videos/a.mp4", Name: "a.mp4", Format: "mp4"}

func newService(ext *mockExtractor) *ExtractService {
	checker := &mockFileChecker{existingFiles: map[string]bool{"/videos/a.mp4": true}}
	return NewExtractService(ext, checker, AudioSettings{SampleRate: 22050}, quiet())
}

func TestExtractService_WithAudio(t *testing.T) {
	tests := []struct {
		name         string
		fnErr        error
		wantErr      bool
		wantReleased int
	}{
		{name: "success releases", wantReleased: 1},
		{name: "downstream failure releases", fnErr: errors.New("transcription failed"), wantErr: true, wantReleased: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &mockExtractor{}
			var got *media.AudioArtifact
			err := newService(ext).WithAudio(context.Background(), video, func(a *media.AudioArtifact) error {
				got = a
				return tt.fnErr
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("WithAudio() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got == nil || got.SourcePath != "/videos/a.mp4" {
				t.Errorf("fn received %+v", got)
			}
			if ext.released != tt.wantReleased {
				t.Errorf("released %d times, want %d", ext.released, tt.wantReleased)
			}
			if ext.gotReq.SampleRate != 22050 || ext.gotReq.Channels != media.DefaultChannels {
				t.Errorf("request = %+v", ext.gotReq)
			}
		})
	}
}

func TestExtractService_WithAudio_ReleasesOnPanic(t *testing.T) {
	ext := &mockExtractor{}
	func() {
		defer func() { recover() }()
		newService(ext).WithAudio(context.Background(), video, func(*media.AudioArtifact) error {
			panic("boom")
		})
	}()
	if ext.released != 1 {
		t.Errorf("released %d times after panic, want 1", ext.released)
	}
}

func TestExtractService_Extract_Errors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		svc := NewExtractService(&mockExtractor{}, &mockFileChecker{}, AudioSettings{}, quiet())
		_, err := svc.Extract(context.Background(), video)
		if !errors.Is(err, speech.ErrExtraction) || !errors.Is(err, media.ErrSourceNotFound) {
			t.Errorf("error = %v, want extraction error wrapping ErrSourceNotFound", err)
		}
	})

	t.Run("extractor failure is an extraction error", func(t *testing.T) {
		called := false
		err := newService(&mockExtractor{err: errors.New("ffmpeg exited 1")}).WithAudio(context.Background(), video, func(*media.AudioArtifact) error {
			called = true
			return nil
		})
		if !errors.Is(err, speech.ErrExtraction) {
			t.Errorf("error = %v, want ErrExtraction", err)
		}
		if called {
			t.Error("fn called after extraction failed")
		}
	})
}
