package groq

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"video-translator/domain/media"
	"video-translator/domain/speech"
)

// Transcribe implements speech.Transcriber against /audio/transcriptions.
func (c *Client) Transcribe(ctx context.Context, audio *media.AudioArtifact, model, language string) (*speech.TranscriptResult, error) {
	const op = "transcribe"

	model = strings.TrimSpace(model)
	if model == "" {
		return nil, speech.NewTranscriptionError(op, speech.ReasonInvalidInput, errors.New("model required"))
	}
	if audio == nil || audio.Path == "" {
		return nil, speech.NewTranscriptionError(op, speech.ReasonInvalidInput, errors.New("audio required"))
	}

	body, contentType, err := c.transcriptionForm(audio.Path, model, language)
	if err != nil {
		return nil, speech.NewTranscriptionError(op, speech.ReasonInvalidInput, err)
	}

	log := c.log.WithFields(logrus.Fields{"model": model, "audio": filepath.Base(audio.Path)})
	log.Debug("Sending audio for transcription")

	resp, err := c.do(ctx, op, request{
		method:      http.MethodPost,
		path:        "audio/transcriptions",
		contentType: contentType,
		body:        body,
	})
	if err != nil {
		return nil, speech.NewTranscriptionError(op, classify(err), err)
	}

	text := strings.TrimSpace(string(resp))
	if text == "" {
		return nil, speech.NewTranscriptionError(op, speech.ReasonEmptyResponse, errors.New("service returned no text"))
	}
	log.WithField("chars", len(text)).Debug("Transcription received")

	return &speech.TranscriptResult{
		SourceFile: audio.SourcePath,
		RawText:    text,
		ModelUsed:  model,
	}, nil
}

func (c *Client) transcriptionForm(path, model, language string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "open audio")
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", errors.Wrap(err, "read audio")
	}

	fields := map[string]string{
		"model":           model,
		"response_format": "text",
		"prompt":          "",
	}
	if language != "" {
		fields["language"] = language
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", errors.Wrapf(err, "write field %s", k)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close form")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var _ speech.Transcriber = (*Client)(nil)
