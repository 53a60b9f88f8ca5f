package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"video-translator/domain/batch"
	"video-translator/domain/speech"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Models.Transcription != batch.DefaultTranscriptionModel {
		t.Errorf("Transcription = %q", cfg.Models.Transcription)
	}
	if cfg.Models.Translation != batch.DefaultTranslationModel {
		t.Errorf("Translation = %q", cfg.Models.Translation)
	}
	if cfg.Performance.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Performance.Workers)
	}
	if cfg.API.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", cfg.API.Timeout)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
models:
  translation: llama-3.3-70b-versatile
api:
  timeout: 45s
  max_retries: 2
performance:
  workers: 4
email:
  recipients:
    jane:
      name: Jane Doe
      address: jane@example.com
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Models.Translation != "llama-3.3-70b-versatile" {
		t.Errorf("Translation = %q", cfg.Models.Translation)
	}
	if cfg.Models.Transcription != batch.DefaultTranscriptionModel {
		t.Errorf("Transcription should keep default, got %q", cfg.Models.Transcription)
	}
	if cfg.API.Timeout != 45*time.Second || cfg.API.MaxRetries != 2 {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Performance.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Performance.Workers)
	}
	if cfg.Email.Recipients["jane"].Address != "jane@example.com" {
		t.Errorf("Recipients = %+v", cfg.Email.Recipients)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("models: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Google.ResultsFolderID = "folder1"
	cfg.API.Timeout = 90 * time.Second

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Google.ResultsFolderID != "folder1" {
		t.Errorf("ResultsFolderID = %q", loaded.Google.ResultsFolderID)
	}
	if loaded.API.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v", loaded.API.Timeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero workers", func(c *Config) { c.Performance.Workers = 0 }, "performance.workers"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }, "api.max_retries"},
		{"negative rpm", func(c *Config) { c.API.RequestsPerMinute = -5 }, "requests_per_minute"},
		{"bad sample rate", func(c *Config) { c.Audio.SampleRate = 0 }, "audio.sample_rate"},
		{"bad channels", func(c *Config) { c.Audio.Channels = 6 }, "audio.channels"},
		{"unknown provider", func(c *Config) { c.Translation.Provider = "openai" }, "translation.provider"},
		{"gemini provider", func(c *Config) { c.Translation.Provider = "Gemini" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, speech.ErrConfiguration) {
				t.Errorf("Validate() error = %v, want configuration error", err)
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestConfig_BatchConfiguration(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		got, err := Default().BatchConfiguration()
		if err != nil {
			t.Fatalf("BatchConfiguration() error = %v", err)
		}
		if got.Prompt().String() != speech.DefaultPrompt {
			t.Errorf("Prompt = %q", got.Prompt().String())
		}
	})

	t.Run("prompt file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "prompt.txt")
		if err := os.WriteFile(file, []byte("Translate to French: {text}"), 0644); err != nil {
			t.Fatal(err)
		}
		cfg := Default()
		cfg.PromptFile = file

		got, err := cfg.BatchConfiguration()
		if err != nil {
			t.Fatalf("BatchConfiguration() error = %v", err)
		}
		if got.Prompt().Render("hi") != "Translate to French: hi" {
			t.Errorf("Render = %q", got.Prompt().Render("hi"))
		}
	})

	t.Run("missing prompt file", func(t *testing.T) {
		cfg := Default()
		cfg.PromptFile = filepath.Join(t.TempDir(), "none.txt")
		if _, err := cfg.BatchConfiguration(); !errors.Is(err, speech.ErrConfiguration) {
			t.Errorf("error = %v, want configuration error", err)
		}
	})

	t.Run("prompt without placeholder", func(t *testing.T) {
		cfg := Default()
		cfg.Prompt = "Translate this"
		if _, err := cfg.BatchConfiguration(); !errors.Is(err, speech.ErrConfiguration) {
			t.Errorf("error = %v, want configuration error", err)
		}
	})
}

func TestConfig_Provider(t *testing.T) {
	cfg := Default()
	cfg.Translation.Provider = ""
	if cfg.Provider() != ProviderGroq {
		t.Errorf("Provider() = %q, want groq", cfg.Provider())
	}
	cfg.Translation.Provider = "GEMINI"
	if cfg.Provider() != ProviderGemini {
		t.Errorf("Provider() = %q, want gemini", cfg.Provider())
	}
}
