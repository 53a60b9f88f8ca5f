package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"video-translator/domain/speech"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/gemini"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file
with models, the translation prompt, concurrency, the output directory,
Google Drive settings, and email recipients.

API keys are never written to the config file. Put GROQ_API_KEY (and
GEMINI_API_KEY when using Gemini) in the environment or a .env file.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, DefaultOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to video-translator setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	// Models section
	if err := promptModels(prompter, cfg); err != nil {
		return err
	}

	// Processing section
	if err := promptProcessing(prompter, cfg); err != nil {
		return err
	}

	// Google section
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	// Email section
	if err := promptEmail(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptModels(prompter Prompter, cfg *config.Config) error {
	provider, err := prompter.Input("Translation provider (groq or gemini)?", cfg.Translation.Provider)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = config.ProviderGroq
	}
	if provider != config.ProviderGroq && provider != config.ProviderGemini {
		return fmt.Errorf("unknown translation provider %q", provider)
	}
	cfg.Translation.Provider = provider
	if provider == config.ProviderGemini {
		cfg.Models.Translation = gemini.DefaultModel
	}

	transcription, err := prompter.Input("Transcription model?", cfg.Models.Transcription)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if transcription != "" {
		cfg.Models.Transcription = transcription
	}

	translation, err := prompter.Input("Translation model?", cfg.Models.Translation)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if translation != "" {
		cfg.Models.Translation = translation
	}

	language, err := prompter.Input("Source language of the videos?", cfg.Language)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if language != "" {
		cfg.Language = language
	}

	customPrompt, err := prompter.Confirm("Use a custom translation prompt?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if customPrompt {
		prompt, err := prompter.Input("Prompt (must contain {text} exactly once):", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if _, err := speech.ParsePromptTemplate(prompt); err != nil {
			return err
		}
		cfg.Prompt = prompt
	}

	return nil
}

func promptProcessing(prompter Prompter, cfg *config.Config) error {
	workers, err := prompter.Input("How many videos should be processed at once?", strconv.Itoa(cfg.Performance.Workers))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if workers != "" {
		n, err := strconv.Atoi(strings.TrimSpace(workers))
		if err != nil || n < 1 {
			return fmt.Errorf("workers must be a positive number, got %q", workers)
		}
		cfg.Performance.Workers = n
	}

	output, err := prompter.Input("Default output directory (empty for preview mode)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.OutputDirectory = output

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	useDrive, err := prompter.Confirm("Publish results to Google Drive or send summary emails?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !useDrive {
		return nil
	}

	credentials, err := prompter.Input("Path to Google credentials file?", cfg.Google.CredentialsFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials != "" {
		cfg.Google.CredentialsFile = credentials
	}

	folder, err := prompter.Input("Google Drive folder ID for results (empty to skip publishing)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Google.ResultsFolderID = folder

	return nil
}

func promptEmail(prompter Prompter, cfg *config.Config) error {
	sendEmail, err := prompter.Confirm("Configure summary emails?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !sendEmail {
		return nil
	}

	// From details
	fromName, err := prompter.Input("Display name for outgoing emails?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if fromName == "" {
		return fmt.Errorf("from name is required")
	}
	cfg.Email.FromName = fromName

	fromAddress, err := prompter.Input("Gmail address to send from?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if fromAddress == "" {
		return fmt.Errorf("from address is required")
	}
	cfg.Email.FromAddress = fromAddress

	// Default CC recipients
	cfg.Email.DefaultCC = []config.RecipientConfig{}
	for {
		addCC, err := prompter.Confirm("Add a CC recipient?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !addCC {
			break
		}

		recipient, err := promptRecipientWithPrompter(prompter)
		if err != nil {
			return err
		}
		cfg.Email.DefaultCC = append(cfg.Email.DefaultCC, recipient)
	}

	// Quick-lookup recipients
	cfg.Email.Recipients = make(map[string]config.RecipientConfig)
	for {
		addRecipient, err := prompter.Confirm("Add a quick-lookup recipient?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !addRecipient {
			break
		}

		nickname, err := prompter.Input("  Nickname:", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if nickname == "" {
			return fmt.Errorf("nickname is required")
		}

		recipient, err := promptRecipientWithPrompter(prompter)
		if err != nil {
			return err
		}
		cfg.Email.Recipients[nickname] = recipient

		isDefault, err := prompter.Confirm("  Mail every batch summary to this recipient?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if isDefault {
			cfg.Email.DefaultRecipients = append(cfg.Email.DefaultRecipients, nickname)
		}
	}

	return nil
}

func promptRecipientWithPrompter(prompter Prompter) (config.RecipientConfig, error) {
	name, err := prompter.Input("  Full name:", "")
	if err != nil {
		return config.RecipientConfig{}, fmt.Errorf("prompt cancelled")
	}
	if name == "" {
		return config.RecipientConfig{}, fmt.Errorf("name is required")
	}

	address, err := prompter.Input("  Email:", "")
	if err != nil {
		return config.RecipientConfig{}, fmt.Errorf("prompt cancelled")
	}
	if address == "" {
		return config.RecipientConfig{}, fmt.Errorf("email is required")
	}

	return config.RecipientConfig{
		Name:    name,
		Address: address,
	}, nil
}
