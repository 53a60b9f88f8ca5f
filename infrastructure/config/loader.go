package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"video-translator/domain/batch"
	"video-translator/domain/media"
	"video-translator/domain/speech"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file
const DefaultPath = "config/config.yaml"

// Translation providers
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Config represents the complete application configuration
type Config struct {
	Models      ModelsConfig      `yaml:"models"`
	Prompt      string            `yaml:"prompt,omitempty"`
	PromptFile  string            `yaml:"prompt_file,omitempty"`
	Language    string            `yaml:"language"`
	Translation TranslationConfig `yaml:"translation"`
	API         APIConfig         `yaml:"api"`
	Performance PerformanceConfig `yaml:"performance"`
	Audio       AudioConfig       `yaml:"audio"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Google      GoogleConfig      `yaml:"google"`
	Email       EmailConfig       `yaml:"email"`
}

// ModelsConfig names the remote models used by the pipeline
type ModelsConfig struct {
	Transcription string `yaml:"transcription"`
	Translation   string `yaml:"translation"`
}

// TranslationConfig selects the translation backend
type TranslationConfig struct {
	Provider string `yaml:"provider"`
}

// APIConfig contains remote API settings
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// PerformanceConfig controls batch concurrency
type PerformanceConfig struct {
	Workers int `yaml:"workers"`
}

// AudioConfig contains audio extraction settings
type AudioConfig struct {
	SampleRate  int    `yaml:"sample_rate"`
	Channels    int    `yaml:"channels"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	TempDir     string `yaml:"temp_dir,omitempty"`
}

// PathsConfig contains directory paths
type PathsConfig struct {
	OutputDirectory string `yaml:"output_directory,omitempty"`
}

// LoggingConfig controls log level and rotation
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	ResultsFolderID string `yaml:"results_folder_id,omitempty"`
	CallbackPort    int    `yaml:"callback_port,omitempty"`
}

// EmailConfig contains email notification settings
type EmailConfig struct {
	FromName          string                     `yaml:"from_name,omitempty"`
	FromAddress       string                     `yaml:"from_address,omitempty"`
	DefaultCC         []RecipientConfig          `yaml:"default_cc,omitempty"`
	DefaultRecipients []string                   `yaml:"default_recipients,omitempty"`
	Recipients        map[string]RecipientConfig `yaml:"recipients,omitempty"`
}

// RecipientConfig represents an email recipient
type RecipientConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Models: ModelsConfig{
			Transcription: batch.DefaultTranscriptionModel,
			Translation:   batch.DefaultTranslationModel,
		},
		Language:    batch.DefaultLanguage,
		Translation: TranslationConfig{Provider: ProviderGroq},
		API: APIConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Timeout: 120 * time.Second,
		},
		Performance: PerformanceConfig{Workers: 1},
		Audio: AudioConfig{
			SampleRate:  media.DefaultSampleRate,
			Channels:    media.DefaultChannels,
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Google: GoogleConfig{
			CredentialsFile: "config/credentials.json",
			TokenFile:       "config/token.json",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// A missing file yields the defaults; values in the file override them.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail deep inside a run.
// Every failure is a configuration error.
func (c *Config) Validate() error {
	var problems []string

	if c.Performance.Workers < 1 {
		problems = append(problems, fmt.Sprintf("performance.workers must be at least 1, got %d", c.Performance.Workers))
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}
	if c.API.MaxRetries < 0 {
		problems = append(problems, "api.max_retries cannot be negative")
	}
	if c.API.RequestsPerMinute < 0 {
		problems = append(problems, "api.requests_per_minute cannot be negative")
	}
	if c.Audio.SampleRate <= 0 {
		problems = append(problems, "audio.sample_rate must be positive")
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		problems = append(problems, "audio.channels must be 1 or 2")
	}
	switch strings.ToLower(c.Translation.Provider) {
	case ProviderGroq, ProviderGemini:
	default:
		problems = append(problems, fmt.Sprintf("translation.provider %q is not supported (groq, gemini)", c.Translation.Provider))
	}

	if len(problems) > 0 {
		return speech.NewConfigurationError("validate config", errors.New(strings.Join(problems, "; ")))
	}
	return nil
}

// PromptText returns the translation prompt, reading PromptFile when set
func (c *Config) PromptText() (string, error) {
	if c.PromptFile == "" {
		return c.Prompt, nil
	}
	data, err := os.ReadFile(c.PromptFile)
	if err != nil {
		return "", speech.NewConfigurationError("read prompt file", err)
	}
	return string(data), nil
}

// BatchConfiguration builds the immutable run configuration
func (c *Config) BatchConfiguration() (batch.Configuration, error) {
	prompt, err := c.PromptText()
	if err != nil {
		return batch.Configuration{}, err
	}
	return batch.NewConfiguration(c.Models.Transcription, c.Models.Translation, prompt, c.Language)
}

// Provider returns the normalized translation provider
func (c *Config) Provider() string {
	if c.Translation.Provider == "" {
		return ProviderGroq
	}
	return strings.ToLower(c.Translation.Provider)
}
