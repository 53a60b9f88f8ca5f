package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video-translator/domain/batch"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/gemini"
)

func TestRunSetupWithPrompter_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	var buf bytes.Buffer

	if err := RunSetupWithPrompter(&mockPrompter{}, path, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if cfg.Models.Transcription != batch.DefaultTranscriptionModel || cfg.Models.Translation != batch.DefaultTranslationModel {
		t.Errorf("models = %+v", cfg.Models)
	}
	if cfg.Performance.Workers != 1 || cfg.Paths.OutputDirectory != "" {
		t.Errorf("processing = %+v %+v", cfg.Performance, cfg.Paths)
	}
	if cfg.Email.FromAddress != "" || len(cfg.Email.Recipients) != 0 {
		t.Errorf("email should be empty: %+v", cfg.Email)
	}
	if !strings.Contains(buf.String(), "Configuration saved to "+path) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunSetupWithPrompter_Full(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	prompter := &mockPrompter{
		inputs: []string{
			"groq", "whisper-large-v3-turbo", "", "",
			"Traduce al español: {text}",
			"3", "/results",
			"", "folder-9",
			"Batch Bot", "bot@example.com",
			"Mary Jones", "mary@example.com",
			"jane", "Jane Doe", "jane@example.com",
		},
		confirms: []bool{
			true,              // custom prompt
			true,              // google
			true,              // email
			true, false,       // cc loop
			true, true, false, // recipient loop with default
		},
	}

	if err := RunSetupWithPrompter(prompter, path, &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("loading saved config: %v", err)
	}

	if cfg.Models.Transcription != "whisper-large-v3-turbo" {
		t.Errorf("transcription model = %q", cfg.Models.Transcription)
	}
	if cfg.Models.Translation != batch.DefaultTranslationModel {
		t.Errorf("translation model = %q", cfg.Models.Translation)
	}
	if cfg.Prompt != "Traduce al español: {text}" {
		t.Errorf("prompt = %q", cfg.Prompt)
	}
	if cfg.Performance.Workers != 3 || cfg.Paths.OutputDirectory != "/results" {
		t.Errorf("processing = %+v %+v", cfg.Performance, cfg.Paths)
	}
	if cfg.Google.ResultsFolderID != "folder-9" || cfg.Google.CredentialsFile != "config/credentials.json" {
		t.Errorf("google = %+v", cfg.Google)
	}
	if cfg.Email.FromName != "Batch Bot" || cfg.Email.FromAddress != "bot@example.com" {
		t.Errorf("from = %q <%s>", cfg.Email.FromName, cfg.Email.FromAddress)
	}
	if len(cfg.Email.DefaultCC) != 1 || cfg.Email.DefaultCC[0].Address != "mary@example.com" {
		t.Errorf("default cc = %+v", cfg.Email.DefaultCC)
	}
	if cfg.Email.Recipients["jane"].Address != "jane@example.com" {
		t.Errorf("recipients = %+v", cfg.Email.Recipients)
	}
	if len(cfg.Email.DefaultRecipients) != 1 || cfg.Email.DefaultRecipients[0] != "jane" {
		t.Errorf("default recipients = %v", cfg.Email.DefaultRecipients)
	}
}

func TestRunSetupWithPrompter_Gemini(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := RunSetupWithPrompter(&mockPrompter{inputs: []string{"Gemini"}}, path, &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Translation.Provider != config.ProviderGemini || cfg.Models.Translation != gemini.DefaultModel {
		t.Errorf("provider = %q, model = %q", cfg.Translation.Provider, cfg.Models.Translation)
	}
}

func TestRunSetupWithPrompter_Errors(t *testing.T) {
	tests := []struct {
		name     string
		prompter *mockPrompter
		wantMsg  string
	}{
		{
			name:     "unknown provider",
			prompter: &mockPrompter{inputs: []string{"openai"}},
			wantMsg:  "unknown translation provider",
		},
		{
			name:     "prompt without placeholder",
			prompter: &mockPrompter{inputs: []string{"", "", "", "", "Translate this"}, confirms: []bool{true}},
			wantMsg:  "{text}",
		},
		{
			name:     "zero workers",
			prompter: &mockPrompter{inputs: []string{"", "", "", "", "0"}},
			wantMsg:  "workers must be a positive number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			err := RunSetupWithPrompter(tt.prompter, path, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantMsg)
			}
			if _, statErr := os.Stat(path); statErr == nil {
				t.Error("config written despite error")
			}
		})
	}
}

func TestRunSetupWithPrompter_KeepsExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := writeFile(path, "language: fr\n"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer

	prompter := &mockPrompter{confirms: []bool{false}}
	if err := RunSetupWithPrompter(prompter, path, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "language: fr\n" {
		t.Errorf("config was overwritten: %q", data)
	}
	if !strings.Contains(buf.String(), "Setup cancelled.") {
		t.Errorf("output = %q", buf.String())
	}
}
