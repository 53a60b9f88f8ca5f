package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-translator/infrastructure/config"
	"video-translator/infrastructure/watcher"

	"github.com/spf13/cobra"
)

var (
	watchInput  RunInput
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <input_dir> [output_dir]",
	Short: "Process videos as they are dropped into a directory",
	Long: `Watch input_dir and run every new video through the pipeline as soon as it
has finished copying. Each file is processed as a batch of one; files already
in the directory when the watch starts are left alone.

Press Ctrl+C to stop.

Example:
  video-translator watch ./inbox ./results
  video-translator watch ./inbox ./results --settle 5s`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchInput.OutputDir, "output", "o", "", "Directory to save results in")
	watchCmd.Flags().StringVar(&watchInput.TranscriptionModel, "transcription-model", "", "Transcription model")
	watchCmd.Flags().StringVar(&watchInput.TranslationModel, "translation-model", "", "Translation model")
	watchCmd.Flags().StringVar(&watchInput.PromptFile, "prompt-file", "", "File holding the translation prompt, must contain {text} once")
	watchCmd.Flags().StringVar(&watchInput.Language, "language", "", "Source language of the audio (e.g. en)")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watcher.DefaultSettle, "How long a new file must stay unchanged before it is processed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	base, err := requireConfig()
	if err != nil {
		return err
	}
	input, err := applyRunArgs(args, watchInput)
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

	err = RunWatchWithDependencies(ctx, eff, deps, input, watchSettle, DefaultOutput)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(DefaultOutput, "\nStopped watching.")
		return nil
	}
	return err
}

// RunWatchWithDependencies watches input.InputDir until ctx is cancelled (for testing)
func RunWatchWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	deps RunDependencies,
	input RunInput,
	settle time.Duration,
	out OutputWriter,
) error {
	eff, input, err := resolveRunConfig(cfg, input)
	if err != nil {
		return err
	}
	batchCfg, err := eff.BatchConfiguration()
	if err != nil {
		return err
	}

	log := deps.Logger
	if log == nil {
		log = logger
	}

	if input.OutputDir != "" && deps.LockDir != nil {
		lock, err := deps.LockDir(input.OutputDir)
		if err != nil {
			return err
		}
		defer lock.Unlock()
	}
	// the watch holds the lock for its whole session
	deps.LockDir = nil

	svc := newPipelineService(eff, batchCfg, deps, out, log)

	handler := func(ctx context.Context, path string) error {
		report, err := svc.RunFiles(ctx, []string{path}, input.OutputDir)
		if report != nil {
			printSummary(out, report)
		}
		return err
	}

	w, err := watcher.New(input.InputDir, handler, watcher.WithSettle(settle), watcher.WithLogger(log))
	if err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(out, "Watching %s for new videos (Ctrl+C to stop)\n", input.InputDir)
	if input.OutputDir == "" {
		fmt.Fprintln(out, "Preview mode: results will not be written")
	}
	return w.Start(ctx)
}
