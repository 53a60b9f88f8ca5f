package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"video-translator/domain/batch"
	"video-translator/domain/speech"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "hello", n: 10, want: "hello"},
		{name: "exact", in: "hello", n: 5, want: "hello"},
		{name: "long", in: "hello world", n: 5, want: "hello..."},
		{name: "newlines collapse", in: "line one\nline   two", n: 50, want: "line one line two"},
		{name: "multibyte", in: "héllo wörld", n: 4, want: "héll..."},
		{name: "empty", in: "", n: 3, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &batch.BatchReport{
		RunID:      "run-123",
		InputDir:   "/videos",
		OutputDir:  "/results",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Outcomes: []*batch.PipelineOutcome{
			batch.NewSuccessOutcome("/videos/a.mp4",
				&speech.TranscriptResult{RawText: "hello"},
				&speech.TranslationResult{TranslatedText: "hola"}),
			batch.NewFailedOutcome("/videos/b.mkv", batch.StageTranscribing, nil, errors.New("rate limited")),
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, report)
	out := buf.String()

	for _, want := range []string{"a.mp4", "b.mkv", "rate limited", "Succeeded: 1", "Failed: 1", "Total: 2", "Results saved in /results", "Run ID: run-123"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "transcript:") {
		t.Error("saved batch should not print a preview")
	}
}

func TestPrintSummary_NoFiles(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &batch.BatchReport{NoFilesFound: true})
	printSummary(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
