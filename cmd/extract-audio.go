package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	appmedia "video-translator/application/media"
	"video-translator/domain/media"
	"video-translator/infrastructure/ffmpeg"
	"video-translator/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var extractOutPath string

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio <video>",
	Short: "Extract the audio track of a video as WAV",
	Long: `Extract the audio of a single video exactly as a batch run would, and keep
the resulting WAV file. Useful to check what is sent for transcription.

The output defaults to <video name>.wav in the current directory.

Example:
  video-translator extract-audio ./videos/lecture.mp4
  video-translator extract-audio ./videos/lecture.mp4 --out /tmp/lecture.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractOutPath, "out", "", "Where to write the WAV file")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	extractor := ffmpeg.NewExtractor(
		ffmpeg.WithExtractorFFmpegPath(cfg.Audio.FFmpegPath),
		ffmpeg.WithExtractorFFprobePath(cfg.Audio.FFprobePath),
	)

	return RunExtractAudioWithDependencies(
		cmd.Context(),
		extractor,
		filesystem.NewChecker(),
		audioSettings(cfg),
		args[0],
		extractOutPath,
		DefaultOutput,
	)
}

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	extractor media.AudioExtractor,
	fileChecker media.FileChecker,
	settings appmedia.AudioSettings,
	sourcePath string,
	outPath string,
	output OutputWriter,
) error {
	// Verify ffmpeg is available if extractor supports it
	if verifiable, ok := extractor.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	video, err := media.NewVideoFile(sourcePath)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = video.Stem() + ".wav"
	}

	service := appmedia.NewExtractService(extractor, fileChecker, settings, logger)

	fmt.Fprintf(output, "Extracting audio from %s (%d Hz, %d channel(s))...\n", video.Path, settings.SampleRate, settings.Channels)

	err = service.WithAudio(ctx, video, func(audio *media.AudioArtifact) error {
		return keepFile(audio.Path, outPath)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Successfully created: %s\n", outPath)
	return nil
}

// keepFile moves a transient file to dst, copying when a rename is not possible
func keepFile(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open extracted audio: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy extracted audio: %w", err)
	}
	return out.Close()
}
