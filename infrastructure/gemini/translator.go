// Package gemini provides a translation backend on the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"video-translator/domain/speech"
)

// DefaultModel is used when no translation model is configured for Gemini
const DefaultModel = "gemini-2.5-flash"

// ContentGenerator is the subset of *genai.Models the translator needs
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Translator implements speech.Translator with Gemini
type Translator struct {
	models  ContentGenerator
	timeout time.Duration
}

// TranslatorOption is a functional option for configuring Translator
type TranslatorOption func(*Translator)

// WithTimeout bounds each GenerateContent call
func WithTimeout(d time.Duration) TranslatorOption {
	return func(t *Translator) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithContentGenerator replaces the Gemini models service (for testing)
func WithContentGenerator(g ContentGenerator) TranslatorOption {
	return func(t *Translator) {
		t.models = g
	}
}

// NewTranslator creates a Gemini translator for apiKey
func NewTranslator(ctx context.Context, apiKey string, opts ...TranslatorOption) (*Translator, error) {
	t := &Translator{timeout: 120 * time.Second}
	for _, opt := range opts {
		opt(t)
	}
	if t.models != nil {
		return t, nil
	}

	if strings.TrimSpace(apiKey) == "" {
		return nil, speech.NewConfigurationError("gemini", errors.New("GEMINI_API_KEY is not set"))
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, speech.NewConfigurationError("gemini", fmt.Errorf("create client: %w", err))
	}
	t.models = client.Models
	return t, nil
}

// Translate implements speech.Translator
func (t *Translator) Translate(ctx context.Context, text, model string, prompt speech.PromptTemplate) (*speech.TranslationResult, error) {
	const op = "gemini translate"

	model = strings.TrimSpace(model)
	if model == "" {
		return nil, speech.NewTranslationError(op, speech.ReasonInvalidInput, errors.New("model required"))
	}
	if prompt.IsZero() {
		return nil, speech.NewConfigurationError(op, errors.New("prompt template required"))
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.models.GenerateContent(callCtx, model, genai.Text(prompt.Render(text)), nil)
	if err != nil {
		return nil, speech.NewTranslationError(op, classify(err), err)
	}

	var out strings.Builder
	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				out.WriteString(part.Text)
			}
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return nil, speech.NewTranslationError(op, speech.ReasonEmptyResponse, errors.New("empty response from Gemini"))
	}

	return &speech.TranslationResult{
		TranslatedText: out.String(),
		ModelUsed:      model,
		PromptUsed:     prompt.String(),
	}, nil
}

func classify(err error) speech.Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return speech.ReasonTimeout
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return speech.ReasonAuth
		case http.StatusTooManyRequests:
			return speech.ReasonRateLimited
		default:
			return speech.ReasonRemote
		}
	}
	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "quota") {
		return speech.ReasonRateLimited
	}
	return speech.ReasonNetwork
}

var _ speech.Translator = (*Translator)(nil)
