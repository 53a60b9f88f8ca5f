package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewAudioExtractionRequest(t *testing.T) {
	video := &VideoFile{Path: "/videos/a.mp4", Name: "a.mp4", Format: "mp4"}

	tests := []struct {
		name           string
		video          *VideoFile
		sampleRate     int
		channels       int
		wantSampleRate int
		wantChannels   int
		wantErr        bool
	}{
		{
			name:           "defaults applied",
			video:          video,
			wantSampleRate: DefaultSampleRate,
			wantChannels:   DefaultChannels,
		},
		{
			name:           "explicit values kept",
			video:          video,
			sampleRate:     44100,
			channels:       2,
			wantSampleRate: 44100,
			wantChannels:   2,
		},
		{
			name:    "nil video",
			video:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAudioExtractionRequest(tt.video, tt.sampleRate, tt.channels, "")
			if tt.wantErr {
				if err == nil {
					t.Error("NewAudioExtractionRequest() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAudioExtractionRequest() unexpected error: %v", err)
			}
			if got.SampleRate != tt.wantSampleRate {
				t.Errorf("SampleRate = %d, want %d", got.SampleRate, tt.wantSampleRate)
			}
			if got.Channels != tt.wantChannels {
				t.Errorf("Channels = %d, want %d", got.Channels, tt.wantChannels)
			}
		})
	}
}

func TestAudioExtractionRequest_TempPattern(t *testing.T) {
	req, _ := NewAudioExtractionRequest(&VideoFile{Path: "/v/talk.mkv", Name: "talk.mkv"}, 0, 0, "")
	if got := req.TempPattern(); got != "talk-*.wav" {
		t.Errorf("TempPattern() = %q, want %q", got, "talk-*.wav")
	}
}

func TestAudioArtifact_ReleaseRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewAudioArtifact(path, "/v/a.mp4")
	if err := a.Release(); err != nil {
		t.Fatalf("Release() unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed", path)
	}

	// second release is a no-op
	if err := a.Release(); err != nil {
		t.Errorf("second Release() unexpected error: %v", err)
	}
}

func TestAudioArtifact_ReleaseOnce(t *testing.T) {
	calls := 0
	a := NewAudioArtifactWithRelease("/tmp/x.wav", "/v/x.mp4", func(string) error {
		calls++
		return errors.New("boom")
	})

	err1 := a.Release()
	err2 := a.Release()
	if calls != 1 {
		t.Errorf("release called %d times, want 1", calls)
	}
	if err1 == nil || err2 == nil {
		t.Error("expected the first release error to be returned on every call")
	}
}

func TestAudioArtifact_NilRelease(t *testing.T) {
	var a *AudioArtifact
	if err := a.Release(); err != nil {
		t.Errorf("nil Release() = %v, want nil", err)
	}
}
