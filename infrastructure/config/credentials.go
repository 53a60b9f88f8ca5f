package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"video-translator/domain/speech"

	"github.com/joho/godotenv"
)

// Environment variables holding API credentials
const (
	EnvGroqAPIKey   = "GROQ_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// Credentials holds the secrets read from the environment
type Credentials struct {
	GroqAPIKey   string
	GeminiAPIKey string
}

// LoadDotEnv loads variables from .env files without overriding the
// existing environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return speech.NewConfigurationError("load "+p, err)
		}
	}
	return nil
}

// LoadCredentials reads the API keys required by provider.
// GROQ_API_KEY is always required because transcription runs on Groq.
func LoadCredentials(provider string) (Credentials, error) {
	creds := Credentials{
		GroqAPIKey:   strings.TrimSpace(os.Getenv(EnvGroqAPIKey)),
		GeminiAPIKey: strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)),
	}

	if creds.GroqAPIKey == "" {
		return creds, speech.NewConfigurationError("load credentials", errors.New(EnvGroqAPIKey+" is not set"))
	}
	if strings.EqualFold(provider, ProviderGemini) && creds.GeminiAPIKey == "" {
		return creds, speech.NewConfigurationError("load credentials", errors.New(EnvGeminiAPIKey+" is not set"))
	}
	return creds, nil
}
