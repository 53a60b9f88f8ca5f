package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"video-translator/domain/speech"
)

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Translate implements speech.Translator against /chat/completions.
// The model output is returned as produced.
func (c *Client) Translate(ctx context.Context, text, model string, prompt speech.PromptTemplate) (*speech.TranslationResult, error) {
	const op = "translate"

	model = strings.TrimSpace(model)
	if model == "" {
		return nil, speech.NewTranslationError(op, speech.ReasonInvalidInput, errors.New("model required"))
	}
	if prompt.IsZero() {
		return nil, speech.NewConfigurationError(op, errors.New("prompt template required"))
	}

	encoded, err := json.Marshal(chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt.Render(text)},
		},
	})
	if err != nil {
		return nil, speech.NewTranslationError(op, speech.ReasonInvalidInput, errors.Wrap(err, "encode body"))
	}

	c.log.WithFields(logrus.Fields{"model": model, "chars": len(text)}).Debug("Sending text for translation")

	resp, err := c.do(ctx, op, request{
		method:      http.MethodPost,
		path:        "chat/completions",
		contentType: "application/json",
		body:        encoded,
	})
	if err != nil {
		return nil, speech.NewTranslationError(op, classify(err), err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(resp, &completion); err != nil {
		return nil, speech.NewTranslationError(op, speech.ReasonRemote, errors.Wrap(err, "decode response"))
	}

	var content, finish string
	for _, choice := range completion.Choices {
		if strings.TrimSpace(choice.Message.Content) != "" {
			content = choice.Message.Content
			break
		}
		if finish == "" {
			finish = choice.FinishReason
		}
	}
	if content == "" {
		return nil, speech.NewTranslationError(op, speech.ReasonEmptyResponse,
			errors.Errorf("empty content (choices=%d, finish_reason=%q)", len(completion.Choices), finish))
	}

	return &speech.TranslationResult{
		TranslatedText: content,
		ModelUsed:      model,
		PromptUsed:     prompt.String(),
	}, nil
}

var _ speech.Translator = (*Client)(nil)
