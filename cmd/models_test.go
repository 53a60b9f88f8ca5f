package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"video-translator/infrastructure/config"
	"video-translator/infrastructure/groq"
)

func TestRunModelsWithDependencies(t *testing.T) {
	tests := []struct {
		name    string
		lister  ModelLister
		wantErr bool
		want    []string
		notWant []string
	}{
		{
			name: "built-in list",
			want: []string{"whisper-large-v3-turbo", "llama-3.1-70b-versatile", "gemini"},
		},
		{
			name: "remote list",
			lister: &mockModelLister{models: []groq.Model{
				{ID: "whisper-large-v3", OwnedBy: "OpenAI", Active: true},
				{ID: "distil-whisper", OwnedBy: "Hugging Face", Active: false},
			}},
			want:    []string{"OpenAI", "distil-whisper", "no"},
			notWant: []string{"llama-3.1-70b-versatile"},
		},
		{
			name:   "remote list empty",
			lister: &mockModelLister{},
			want:   []string{"No models available."},
		},
		{
			name:    "remote error",
			lister:  &mockModelLister{err: errors.New("401 unauthorized")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := RunModelsWithDependencies(context.Background(), config.Default(), tt.lister, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(buf.String(), w) {
					t.Errorf("output should not contain %q", w)
				}
			}
		})
	}
}

func TestMarker(t *testing.T) {
	cfg := config.Default()
	if marker(cfg, cfg.Models.Transcription) != "*" {
		t.Error("configured transcription model not marked")
	}
	if marker(cfg, "whisper-large-v3-turbo") != "" {
		t.Error("unconfigured model marked")
	}
	if marker(nil, "anything") != "" {
		t.Error("nil config should mark nothing")
	}
}
