package speech

import (
	"context"

	"video-translator/domain/media"
)

// Transcriber converts an audio artifact into text. An empty language lets the
// service detect it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *media.AudioArtifact, model, language string) (*TranscriptResult, error)
}

// Translator converts text with a prompt template and a model
type Translator interface {
	Translate(ctx context.Context, text, model string, prompt PromptTemplate) (*TranslationResult, error)
}
