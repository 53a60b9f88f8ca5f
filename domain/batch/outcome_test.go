package batch

import (
	"errors"
	"testing"

	"video-translator/domain/speech"
)

func TestNewFailedOutcome(t *testing.T) {
	transcript := &speech.TranscriptResult{SourceFile: "a.mp4", RawText: "hello"}

	tests := []struct {
		name           string
		stage          Stage
		wantStatus     Status
		wantTranscript bool
	}{
		{name: "extraction", stage: StageExtracting, wantStatus: StatusExtractionFailed},
		{name: "transcription", stage: StageTranscribing, wantStatus: StatusTranscriptionFailed},
		{name: "translation keeps transcript", stage: StageTranslating, wantStatus: StatusTranslationFailed, wantTranscript: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewFailedOutcome("a.mp4", tt.stage, transcript, errors.New("boom"))
			if o.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", o.Status, tt.wantStatus)
			}
			if (o.Transcript != nil) != tt.wantTranscript {
				t.Errorf("Transcript present = %v, want %v", o.Transcript != nil, tt.wantTranscript)
			}
			if o.Translation != nil {
				t.Error("Translation must be absent on failure")
			}
			if o.ErrorDetail != "boom" {
				t.Errorf("ErrorDetail = %q, want %q", o.ErrorDetail, "boom")
			}
			if o.Err() == nil {
				t.Error("Err() = nil, want error")
			}
		})
	}
}

func TestPipelineOutcome_MarkWriteFailedKeepsResults(t *testing.T) {
	o := NewSuccessOutcome("a.mp4",
		&speech.TranscriptResult{RawText: "hello world"},
		&speech.TranslationResult{TranslatedText: "hola mundo"},
	)
	o.MarkWriteFailed(errors.New("disk full"))

	if o.Status != StatusWriteFailed {
		t.Errorf("Status = %q, want %q", o.Status, StatusWriteFailed)
	}
	if o.Transcript == nil || o.Translation == nil {
		t.Fatal("results dropped after write failure")
	}
	if o.Translation.TranslatedText != "hola mundo" {
		t.Errorf("TranslatedText = %q", o.Translation.TranslatedText)
	}
}

func TestStage_CanTransition(t *testing.T) {
	tests := []struct {
		from Stage
		to   Stage
		want bool
	}{
		{StageDiscovered, StageExtracting, true},
		{StageExtracting, StageTranscribing, true},
		{StageExtracting, StageDone, true},
		{StageTranscribing, StageTranslating, true},
		{StageTranslating, StageWriting, true},
		{StageTranslating, StageDone, true},
		{StageWriting, StageDone, true},
		{StageDiscovered, StageTranslating, false},
		{StageTranscribing, StageExtracting, false},
		{StageDone, StageExtracting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBatchReport_Counts(t *testing.T) {
	r := &BatchReport{
		Outcomes: []*PipelineOutcome{
			{Status: StatusSuccess},
			{Status: StatusSuccess},
			{Status: StatusExtractionFailed},
			{Status: StatusWriteFailed},
		},
	}

	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
	if r.Succeeded() != 2 {
		t.Errorf("Succeeded() = %d, want 2", r.Succeeded())
	}
	if r.Failed() != 2 {
		t.Errorf("Failed() = %d, want 2", r.Failed())
	}
	if !r.Preview() {
		t.Error("Preview() = false with no output dir")
	}
}
