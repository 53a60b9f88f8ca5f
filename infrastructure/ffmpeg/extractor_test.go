package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

type call struct {
	name string
	args []string
}

// mockRunner writes a fake wav to the last argument of an ffmpeg run
type mockRunner struct {
	calls      []call
	probeOut   string
	probeErr   error
	runErr     error
	writeAudio bool
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, call{name: name, args: args})
	if m.runErr != nil {
		return m.runErr
	}
	if m.writeAudio {
		return os.WriteFile(args[len(args)-1], []byte("RIFF....WAVE"), 0644)
	}
	return nil
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, call{name: name, args: args})
	return []byte(m.probeOut), m.probeErr
}

func newRequest(t *testing.T, dir string) *media.AudioExtractionRequest {
	t.Helper()
	video, err := media.NewVideoFile(filepath.Join(dir, "talk.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	req, err := media.NewAudioExtractionRequest(video, 0, 0, dir)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func tempWavs(t *testing.T, dir string) []string {
	t.Helper()
	matches, _ := filepath.Glob(filepath.Join(dir, "*.wav"))
	return matches
}

func TestExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	runner := &mockRunner{probeOut: "1\n", writeAudio: true}
	e := NewExtractor(WithExtractorCommandRunner(runner), WithExtractorFFmpegPath("/opt/ffmpeg"))

	artifact, err := e.Extract(context.Background(), newRequest(t, dir))
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	defer artifact.Release()

	if artifact.SourcePath != filepath.Join(dir, "talk.mp4") {
		t.Errorf("SourcePath = %q", artifact.SourcePath)
	}
	if !strings.HasPrefix(filepath.Base(artifact.Path), "talk-") || filepath.Ext(artifact.Path) != ".wav" {
		t.Errorf("Path = %q, want talk-*.wav", artifact.Path)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("expected probe and ffmpeg calls, got %d", len(runner.calls))
	}
	if runner.calls[0].name != "ffprobe" {
		t.Errorf("first call = %q, want ffprobe", runner.calls[0].name)
	}
	run := runner.calls[1]
	if run.name != "/opt/ffmpeg" {
		t.Errorf("ffmpeg path = %q, want /opt/ffmpeg", run.name)
	}
	joined := strings.Join(run.args, " ")
	for _, want := range []string{"-vn", "-ac 1", "-ar 16000", "-c:a pcm_s16le", "-i " + filepath.Join(dir, "talk.mp4")} {
		if !strings.Contains(joined, want) {
			t.Errorf("ffmpeg args %q missing %q", joined, want)
		}
	}

	if err := artifact.Release(); err != nil {
		t.Fatalf("Release() unexpected error: %v", err)
	}
	if len(tempWavs(t, dir)) != 0 {
		t.Error("temp audio left behind after Release")
	}
}

func TestExtractor_Extract_Errors(t *testing.T) {
	tests := []struct {
		name      string
		runner    *mockRunner
		wantNoTrk bool
	}{
		{
			name:      "no audio stream",
			runner:    &mockRunner{probeOut: ""},
			wantNoTrk: true,
		},
		{
			name:   "ffprobe fails",
			runner: &mockRunner{probeErr: errors.New("invalid data found")},
		},
		{
			name:   "ffmpeg fails",
			runner: &mockRunner{probeOut: "1", runErr: errors.New("exit status 1")},
		},
		{
			name:   "ffmpeg writes nothing",
			runner: &mockRunner{probeOut: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			e := NewExtractor(WithExtractorCommandRunner(tt.runner))

			artifact, err := e.Extract(context.Background(), newRequest(t, dir))
			if err == nil {
				t.Fatal("Extract() expected error, got nil")
			}
			if artifact != nil {
				t.Error("Extract() returned an artifact alongside an error")
			}
			if !errors.Is(err, speech.ErrExtraction) {
				t.Errorf("error = %v, want ErrExtraction", err)
			}
			if tt.wantNoTrk && !errors.Is(err, media.ErrNoAudioTrack) {
				t.Errorf("error = %v, want ErrNoAudioTrack", err)
			}
			if left := tempWavs(t, dir); len(left) != 0 {
				t.Errorf("temp audio left behind: %v", left)
			}
		})
	}
}

func TestExtractor_WithoutProbe(t *testing.T) {
	runner := &mockRunner{writeAudio: true}
	e := NewExtractor(WithExtractorCommandRunner(runner), WithAudioProbe(false))

	artifact, err := e.Extract(context.Background(), newRequest(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	defer artifact.Release()

	if len(runner.calls) != 1 || runner.calls[0].name != "ffmpeg" {
		t.Errorf("expected a single ffmpeg call, got %+v", runner.calls)
	}
}

func TestExtractor_VerifyInstalled(t *testing.T) {
	ok := NewExtractor(WithExtractorCommandRunner(&mockRunner{}))
	if err := ok.VerifyInstalled(context.Background()); err != nil {
		t.Errorf("VerifyInstalled() unexpected error: %v", err)
	}

	missing := NewExtractor(WithExtractorCommandRunner(&mockRunner{probeErr: errors.New("not found")}))
	if err := missing.VerifyInstalled(context.Background()); err == nil {
		t.Error("VerifyInstalled() expected error, got nil")
	}
}
