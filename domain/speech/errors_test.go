package speech

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStageError_Is(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		kind    error
		notKind error
	}{
		{name: "configuration", err: NewConfigurationError("load", cause), kind: ErrConfiguration, notKind: ErrTranscription},
		{name: "extraction", err: NewExtractionError("ffmpeg", cause), kind: ErrExtraction, notKind: ErrTranslation},
		{name: "transcription", err: NewTranscriptionError("whisper", ReasonNetwork, cause), kind: ErrTranscription, notKind: ErrExtraction},
		{name: "translation", err: NewTranslationError("chat", ReasonAuth, cause), kind: ErrTranslation, notKind: ErrPersistence},
		{name: "persistence", err: NewPersistenceError("write", cause), kind: ErrPersistence, notKind: ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if errors.Is(tt.err, tt.notKind) {
				t.Errorf("errors.Is(%v, %v) = true", tt.err, tt.notKind)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("cause not reachable through Unwrap")
			}
		})
	}
}

func TestStageError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("file a.mp4: %w", NewTranscriptionError("whisper", ReasonRateLimited, errors.New("429")))
	if !errors.Is(err, ErrTranscription) {
		t.Error("wrapped StageError lost its kind")
	}
	if got := ReasonOf(err); got != ReasonRateLimited {
		t.Errorf("ReasonOf() = %q, want %q", got, ReasonRateLimited)
	}
}

func TestStageError_Message(t *testing.T) {
	err := NewTranslationError("chat completion", ReasonRemote, errors.New("status 500"))
	msg := err.Error()
	for _, want := range []string{"translation error", "chat completion", "remote", "status 500"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestReasonOf_PlainError(t *testing.T) {
	if got := ReasonOf(errors.New("plain")); got != "" {
		t.Errorf("ReasonOf(plain) = %q, want empty", got)
	}
}
