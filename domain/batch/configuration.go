package batch

import (
	"fmt"

	"video-translator/domain/speech"
)

const (
	// DefaultTranscriptionModel is the Groq-hosted Whisper model
	DefaultTranscriptionModel = "whisper-large-v3"

	// DefaultTranslationModel is the Groq-hosted chat model used for translation
	DefaultTranslationModel = "openai/gpt-oss-120b"

	// DefaultLanguage is the fixed source language sent to the transcription service
	DefaultLanguage = "en"
)

// Configuration holds the models, prompt and source language for a batch run.
// It is a value: With* methods return modified copies, so a running batch
// never observes a change made after it started.
type Configuration struct {
	transcriptionModel string
	translationModel   string
	prompt             speech.PromptTemplate
	language           string
}

// NewConfiguration validates and builds a Configuration.
// Empty models fall back to the defaults; the prompt must contain {text} exactly once.
func NewConfiguration(transcriptionModel, translationModel, prompt, language string) (Configuration, error) {
	if transcriptionModel == "" {
		transcriptionModel = DefaultTranscriptionModel
	}
	if translationModel == "" {
		translationModel = DefaultTranslationModel
	}
	if prompt == "" {
		prompt = speech.DefaultPrompt
	}
	tmpl, err := speech.ParsePromptTemplate(prompt)
	if err != nil {
		return Configuration{}, err
	}
	return Configuration{
		transcriptionModel: transcriptionModel,
		translationModel:   translationModel,
		prompt:             tmpl,
		language:           language,
	}, nil
}

// DefaultConfiguration returns the built-in models and prompt
func DefaultConfiguration() Configuration {
	return Configuration{
		transcriptionModel: DefaultTranscriptionModel,
		translationModel:   DefaultTranslationModel,
		prompt:             speech.DefaultPromptTemplate(),
		language:           DefaultLanguage,
	}
}

// TranscriptionModel returns the speech-to-text model identifier
func (c Configuration) TranscriptionModel() string { return c.transcriptionModel }

// TranslationModel returns the text-generation model identifier
func (c Configuration) TranslationModel() string { return c.translationModel }

// Prompt returns the validated prompt template
func (c Configuration) Prompt() speech.PromptTemplate { return c.prompt }

// Language returns the source language hint, empty for none
func (c Configuration) Language() string { return c.language }

// WithTranscriptionModel returns a copy using model for transcription
func (c Configuration) WithTranscriptionModel(model string) (Configuration, error) {
	if model == "" {
		return c, speech.NewConfigurationError("transcription model", fmt.Errorf("model identifier is required"))
	}
	c.transcriptionModel = model
	return c, nil
}

// WithTranslationModel returns a copy using model for translation
func (c Configuration) WithTranslationModel(model string) (Configuration, error) {
	if model == "" {
		return c, speech.NewConfigurationError("translation model", fmt.Errorf("model identifier is required"))
	}
	c.translationModel = model
	return c, nil
}

// WithPrompt returns a copy using the given prompt template
func (c Configuration) WithPrompt(prompt string) (Configuration, error) {
	tmpl, err := speech.ParsePromptTemplate(prompt)
	if err != nil {
		return c, err
	}
	c.prompt = tmpl
	return c, nil
}

// WithLanguage returns a copy with a different source language hint
func (c Configuration) WithLanguage(language string) Configuration {
	c.language = language
	return c
}

// Validate checks a Configuration built as a zero value or by hand
func (c Configuration) Validate() error {
	if c.transcriptionModel == "" {
		return speech.NewConfigurationError("transcription model", fmt.Errorf("model identifier is required"))
	}
	if c.translationModel == "" {
		return speech.NewConfigurationError("translation model", fmt.Errorf("model identifier is required"))
	}
	if c.prompt.IsZero() {
		return speech.NewConfigurationError("prompt", fmt.Errorf("prompt template is required"))
	}
	return nil
}
