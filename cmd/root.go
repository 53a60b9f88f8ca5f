package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"video-translator/domain/speech"
	"video-translator/infrastructure/config"
	"video-translator/infrastructure/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitFailure       = 1
	exitConfiguration = 2
	exitInterrupted   = 130
)

var (
	cfgFile  string
	logLevel string
	logFile  string

	cfg       *config.Config
	cfgErr    error
	logger    = logrus.StandardLogger()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "video-translator",
	Short: "Transcribe and translate a directory of videos",
	Long: `video-translator runs every video in a directory through the same pipeline:

  - Extract the audio track with ffmpeg
  - Transcribe it with Groq Whisper
  - Translate the transcript with a language model
  - Optionally save the results, publish them to Google Drive and mail a summary

Example:
  video-translator run ./videos ./results`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status that reflects the failure kind
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLogging()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, speech.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitFailure
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rotated file")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// commands that need the config report cfgErr themselves
		cfg = nil
	}

	initLogging()
}

func initLogging() {
	opts := logging.Options{Level: logLevel, File: logFile}
	if cfg != nil {
		if opts.Level == "" {
			opts.Level = cfg.Logging.Level
		}
		if opts.File == "" {
			opts.File = cfg.Logging.File
		}
		opts.MaxSizeMB = cfg.Logging.MaxSizeMB
		opts.MaxBackups = cfg.Logging.MaxBackups
		opts.MaxAgeDays = cfg.Logging.MaxAgeDays
	}

	l, closer, err := logging.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using default logger\n", err)
		return
	}
	logger = l
	logCloser = closer
}

func closeLogging() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// requireConfig returns the loaded configuration or the reason it is unavailable
func requireConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil {
		return nil, speech.NewConfigurationError("load config", cfgErr)
	}
	return nil, speech.NewConfigurationError("load config", fmt.Errorf("configuration not loaded from %s", cfgFile))
}
