package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	appdistribution "video-translator/application/distribution"
	appmedia "video-translator/application/media"
	appnotification "video-translator/application/notification"
	"video-translator/application/pipeline"
	"video-translator/domain/batch"
	"video-translator/domain/media"
	"video-translator/domain/notification"
	"video-translator/domain/speech"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/drive"
	"video-translator/infrastructure/ffmpeg"
	"video-translator/infrastructure/filesystem"
	"video-translator/infrastructure/gemini"
	"video-translator/infrastructure/googleauth"
	"video-translator/infrastructure/groq"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runInput RunInput

var runCmd = &cobra.Command{
	Use:   "run <input_dir> [output_dir] [transcription_model translation_model]",
	Short: "Transcribe and translate every video in a directory",
	Long: `Run every video in input_dir through audio extraction, transcription and
translation. Without an output directory the batch runs in preview mode and
only prints a sample of each result.

Positional forms:
  run <input_dir>                                   preview, default models
  run <input_dir> <output_dir>                      save results, default models
  run <input_dir> <transcription> <translation>     preview, custom models
  run <input_dir> <output_dir> <transcription> <translation>

Flags take precedence over positional arguments and the config file.

Transcription models: whisper-large-v3 (default), whisper-large-v3-turbo
Translation models:   openai/gpt-oss-120b (default), openai/gpt-oss-20b, llama-3.1-70b-versatile

Examples:
  video-translator run ./videos
  video-translator run ./videos ./results
  video-translator run ./videos whisper-large-v3-turbo llama-3.1-70b-versatile
  video-translator run ./videos ./results --workers 3 --publish --notify jane`,
	Args: cobra.RangeArgs(1, 4),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runInput.OutputDir, "output", "o", "", "Directory to save results in")
	runCmd.Flags().BoolVar(&runInput.Preview, "preview", false, "Do not save results even if an output directory is configured")
	runCmd.Flags().StringVar(&runInput.TranscriptionModel, "transcription-model", "", "Transcription model")
	runCmd.Flags().StringVar(&runInput.TranslationModel, "translation-model", "", "Translation model")
	runCmd.Flags().StringVar(&runInput.PromptFile, "prompt-file", "", "File holding the translation prompt, must contain {text} once")
	runCmd.Flags().IntVar(&runInput.Workers, "workers", 0, "Number of files processed concurrently")
	runCmd.Flags().StringVar(&runInput.Language, "language", "", "Source language of the audio (e.g. en)")
	runCmd.Flags().BoolVar(&runInput.ReportJSON, "report-json", false, "Print the batch report as JSON instead of a table")
	runCmd.Flags().BoolVar(&runInput.Publish, "publish", false, "Upload the results to the configured Google Drive folder")
	runCmd.Flags().StringArrayVar(&runInput.Notify, "notify", nil, "Mail a summary to these recipients (config keys or names, \"default\" for default_recipients)")
}

// RunInput contains the input parameters for the run command
type RunInput struct {
	InputDir           string
	OutputDir          string
	Preview            bool
	TranscriptionModel string
	TranslationModel   string
	PromptFile         string
	Workers            int
	Language           string
	ReportJSON         bool
	Publish            bool
	Notify             []string
}

// Publisher uploads the results of a finished batch
type Publisher interface {
	Publish(ctx context.Context, report *batch.BatchReport) (*appdistribution.PublishResult, error)
}

// Notifier mails the summary of a finished batch
type Notifier interface {
	SendReport(ctx context.Context, req appnotification.SendRequest) error
}

// Unlocker releases an output directory lock
type Unlocker interface {
	Unlock() error
}

// RunDependencies are the collaborators of the run command
type RunDependencies struct {
	Lister      media.DirectoryLister
	Audio       pipeline.AudioSource
	Transcriber speech.Transcriber
	Translator  speech.Translator
	Writer      batch.ResultWriter
	Reports     batch.ReportWriter

	// Publisher and Notifier are required only when the input asks for them
	Publisher Publisher
	Notifier  Notifier

	LockDir func(dir string) (Unlocker, error)
	Logger  logrus.FieldLogger
}

// applyRunArgs maps the positional forms onto input. Flags already set win.
func applyRunArgs(args []string, input RunInput) (RunInput, error) {
	var outputDir, transcription, translation string
	switch len(args) {
	case 1:
	case 2:
		outputDir = args[1]
	case 3:
		transcription, translation = args[1], args[2]
	case 4:
		outputDir, transcription, translation = args[1], args[2], args[3]
	default:
		return input, fmt.Errorf("expected 1 to 4 arguments, got %d", len(args))
	}

	input.InputDir = args[0]
	if input.OutputDir == "" {
		input.OutputDir = outputDir
	}
	if input.TranscriptionModel == "" {
		input.TranscriptionModel = transcription
	}
	if input.TranslationModel == "" {
		input.TranslationModel = translation
	}
	return input, nil
}

// resolveRunConfig layers the command input over a copy of the loaded config
func resolveRunConfig(base *config.Config, input RunInput) (*config.Config, RunInput, error) {
	eff := *base

	if input.TranscriptionModel != "" {
		eff.Models.Transcription = input.TranscriptionModel
	}
	if input.TranslationModel != "" {
		eff.Models.Translation = input.TranslationModel
	} else if eff.Provider() == config.ProviderGemini && eff.Models.Translation == batch.DefaultTranslationModel {
		eff.Models.Translation = gemini.DefaultModel
	}
	if input.PromptFile != "" {
		eff.PromptFile = input.PromptFile
	}
	if input.Workers != 0 {
		eff.Performance.Workers = input.Workers
	}
	if input.Language != "" {
		eff.Language = input.Language
	}

	switch {
	case input.Preview:
		input.OutputDir = ""
	case input.OutputDir == "":
		input.OutputDir = eff.Paths.OutputDirectory
	}

	if err := eff.Validate(); err != nil {
		return nil, input, err
	}
	if input.Publish && input.OutputDir == "" {
		return nil, input, speech.NewConfigurationError("run", errors.New("--publish needs an output directory"))
	}
	if input.Publish && eff.Google.ResultsFolderID == "" {
		return nil, input, speech.NewConfigurationError("run", errors.New("--publish needs google.results_folder_id in the config"))
	}
	return &eff, input, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	base, err := requireConfig()
	if err != nil {
		return err
	}
	input, err := applyRunArgs(args, runInput)
	if err != nil {
		return err
	}
	eff, input, err := resolveRunConfig(base, input)
	if err != nil {
		return err
	}
	if _, err := eff.BatchConfiguration(); err != nil {
		return err
	}

	creds, err := config.LoadCredentials(eff.Provider())
	if err != nil {
		return withCredentialHint(err)
	}

	ctx := cmd.Context()
	deps, err := buildRunDependencies(ctx, eff, creds, input)
	if err != nil {
		return err
	}

	_, err = RunWithDependencies(ctx, eff, deps, input, DefaultOutput)
	return err
}

// buildRunDependencies creates the production adapters for a batch run
func buildRunDependencies(ctx context.Context, cfg *config.Config, creds config.Credentials, input RunInput) (RunDependencies, error) {
	extractor := ffmpeg.NewExtractor(
		ffmpeg.WithExtractorFFmpegPath(cfg.Audio.FFmpegPath),
		ffmpeg.WithExtractorFFprobePath(cfg.Audio.FFprobePath),
	)
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := extractor.VerifyInstalled(verifyCtx); err != nil {
		return RunDependencies{}, speech.NewConfigurationError("ffmpeg verification", err)
	}

	checker := filesystem.NewChecker()
	writer := filesystem.NewResultWriter()
	groqClient := newGroqClient(cfg, creds)

	deps := RunDependencies{
		Lister:      checker,
		Audio:       appmedia.NewExtractService(extractor, checker, audioSettings(cfg), logger),
		Transcriber: groqClient,
		Translator:  groqClient,
		Writer:      writer,
		Reports:     writer,
		LockDir: func(dir string) (Unlocker, error) {
			return filesystem.LockOutputDir(dir)
		},
		Logger: logger,
	}

	if cfg.Provider() == config.ProviderGemini {
		translator, err := gemini.NewTranslator(ctx, creds.GeminiAPIKey, gemini.WithTimeout(cfg.API.Timeout))
		if err != nil {
			return RunDependencies{}, err
		}
		deps.Translator = translator
	}

	if input.Publish || len(input.Notify) > 0 {
		httpClient, err := googleAuthHTTPClient(ctx, cfg)
		if err != nil {
			return RunDependencies{}, err
		}
		if input.Publish {
			driveClient, err := drive.NewClient(ctx, httpClient)
			if err != nil {
				return RunDependencies{}, fmt.Errorf("failed to create Google Drive client: %w", err)
			}
			deps.Publisher = appdistribution.NewPublishService(driveClient, cfg.Google.ResultsFolderID, DefaultOutput, logger)
		}
		if len(input.Notify) > 0 {
			deps.Notifier, err = newNotifier(ctx, cfg, httpClient)
			if err != nil {
				return RunDependencies{}, err
			}
		}
	}

	return deps, nil
}

// RunWithDependencies runs a batch with injected dependencies (for testing).
// The report is returned whenever the batch started, even alongside an error.
func RunWithDependencies(ctx context.Context, cfg *config.Config, deps RunDependencies, input RunInput, out OutputWriter) (*batch.BatchReport, error) {
	eff, input, err := resolveRunConfig(cfg, input)
	if err != nil {
		return nil, err
	}
	batchCfg, err := eff.BatchConfiguration()
	if err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = logger
	}

	// resolve recipients before the batch so a typo does not cost a full run
	var to, cc []notification.Recipient
	if len(input.Notify) > 0 {
		if deps.Notifier == nil {
			return nil, fmt.Errorf("notification requested but no mail sender is configured")
		}
		to, cc, err = resolveRecipients(eff, input.Notify)
		if err != nil {
			return nil, err
		}
	}
	if input.Publish && deps.Publisher == nil {
		return nil, fmt.Errorf("publishing requested but no Drive client is configured")
	}

	progress := out
	if input.ReportJSON {
		progress = nil
	}

	svc := newPipelineService(eff, batchCfg, deps, progress, log)

	report, runErr := svc.Run(ctx, input.InputDir, input.OutputDir)
	if report == nil {
		return nil, runErr
	}

	if input.ReportJSON {
		if err := printReportJSON(out, report); err != nil {
			return report, err
		}
	} else {
		printSummary(out, report)
	}

	if runErr != nil || report.NoFilesFound {
		return report, runErr
	}

	var postErrs []error
	var links map[string]string
	var resultsURL string
	if input.Publish {
		fmt.Fprintln(out)
		result, err := deps.Publisher.Publish(ctx, report)
		if result != nil {
			links = result.Links
			resultsURL = result.FolderURL
			fmt.Fprintf(out, "Published %d file(s) to %s\n", len(result.Uploaded), result.FolderURL)
		}
		if err != nil {
			postErrs = append(postErrs, fmt.Errorf("publish failed: %w", err))
		}
	}

	if len(to) > 0 {
		err := deps.Notifier.SendReport(ctx, appnotification.SendRequest{
			To:         to,
			CC:         cc,
			Report:     report,
			Links:      links,
			ResultsURL: resultsURL,
		})
		if err != nil {
			postErrs = append(postErrs, fmt.Errorf("notification failed: %w", err))
		} else {
			fmt.Fprintf(out, "Summary sent to %s\n", recipientNames(to))
		}
	}

	return report, errors.Join(postErrs...)
}

func newPipelineService(cfg *config.Config, batchCfg batch.Configuration, deps RunDependencies, progress OutputWriter, log logrus.FieldLogger) *pipeline.Service {
	opts := []pipeline.Option{
		pipeline.WithWorkers(cfg.Performance.Workers),
		pipeline.WithLogger(log),
	}
	if deps.Reports != nil {
		opts = append(opts, pipeline.WithReportWriter(deps.Reports))
	}
	if deps.LockDir != nil {
		lockDir := deps.LockDir
		opts = append(opts, pipeline.WithOutputLocker(func(dir string) (func() error, error) {
			lock, err := lockDir(dir)
			if err != nil {
				return nil, err
			}
			return lock.Unlock, nil
		}))
	}
	return pipeline.NewService(deps.Lister, deps.Audio, deps.Transcriber, deps.Translator, deps.Writer, batchCfg, progress, opts...)
}

func newGroqClient(cfg *config.Config, creds config.Credentials) *groq.Client {
	return groq.NewClient(groq.Config{
		APIKey:            creds.GroqAPIKey,
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		MaxRetries:        cfg.API.MaxRetries,
		RequestsPerMinute: cfg.API.RequestsPerMinute,
	}, groq.WithLogger(logger))
}

func audioSettings(cfg *config.Config) appmedia.AudioSettings {
	return appmedia.AudioSettings{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		TempDir:    cfg.Audio.TempDir,
	}
}

func googleAuthConfig(cfg *config.Config) googleauth.Config {
	return googleauth.Config{
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
		CallbackPort:    cfg.Google.CallbackPort,
		Output:          DefaultOutput,
	}
}

func googleAuthHTTPClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	client, err := googleauth.NewHTTPClient(ctx, googleAuthConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to authorize with Google: %w", err)
	}
	return client, nil
}

// withCredentialHint explains how to provide a missing API key
func withCredentialHint(err error) error {
	return fmt.Errorf("%w\n\nTo configure your API keys:\n"+
		"  1. Get a Groq API key at https://console.groq.com/\n"+
		"  2. Create a .env file in the working directory with GROQ_API_KEY=your_key\n"+
		"     (and GEMINI_API_KEY=your_key when translation.provider is gemini)\n"+
		"  3. Or export the variables in your shell", err)
}
