package cmd

import (
	"context"
	"fmt"

	"video-translator/domain/batch"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/gemini"
	"video-translator/infrastructure/groq"

	"github.com/spf13/cobra"
)

// ModelLister lists the models available to an API key
type ModelLister interface {
	ListModels(ctx context.Context) ([]groq.Model, error)
}

type knownModel struct {
	ID       string
	Use      string
	Provider string
}

var knownModels = []knownModel{
	{ID: batch.DefaultTranscriptionModel, Use: "transcription", Provider: config.ProviderGroq},
	{ID: "whisper-large-v3-turbo", Use: "transcription", Provider: config.ProviderGroq},
	{ID: batch.DefaultTranslationModel, Use: "translation", Provider: config.ProviderGroq},
	{ID: "openai/gpt-oss-20b", Use: "translation", Provider: config.ProviderGroq},
	{ID: "llama-3.1-70b-versatile", Use: "translation", Provider: config.ProviderGroq},
	{ID: gemini.DefaultModel, Use: "translation", Provider: config.ProviderGemini},
}

var modelsRemote bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List transcription and translation models",
	Long: `List the models known to work with video-translator. The configured models
are marked with *.

With --remote, query Groq for every model available to GROQ_API_KEY.
The full list is documented at https://console.groq.com/docs/models`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsRemote, "remote", false, "Query the Groq API for available models")
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	var lister ModelLister
	if modelsRemote {
		creds, err := config.LoadCredentials(config.ProviderGroq)
		if err != nil {
			return withCredentialHint(err)
		}
		lister = newGroqClient(cfg, creds)
	}

	return RunModelsWithDependencies(cmd.Context(), cfg, lister, DefaultOutput)
}

// RunModelsWithDependencies runs the models command with injected dependencies (for testing).
// A nil lister prints the built-in list.
func RunModelsWithDependencies(ctx context.Context, cfg *config.Config, lister ModelLister, out OutputWriter) error {
	if lister == nil {
		rows := make([][]string, 0, len(knownModels))
		for _, m := range knownModels {
			rows = append(rows, []string{marker(cfg, m.ID), m.ID, m.Use, m.Provider})
		}
		fmt.Fprintln(out, renderTable([]string{"", "Model", "Use", "Provider"}, rows, nil))
		return nil
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	if len(models) == 0 {
		fmt.Fprintln(out, "No models available.")
		return nil
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		active := "yes"
		if !m.Active {
			active = "no"
		}
		rows = append(rows, []string{marker(cfg, m.ID), m.ID, m.OwnedBy, active})
	}
	fmt.Fprintln(out, renderTable([]string{"", "Model", "Owner", "Active"}, rows, nil))
	return nil
}

func marker(cfg *config.Config, id string) string {
	if cfg != nil && (cfg.Models.Transcription == id || cfg.Models.Translation == id) {
		return "*"
	}
	return ""
}
