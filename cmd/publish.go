package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	appdistribution "video-translator/application/distribution"
	"video-translator/domain/distribution"
	"video-translator/infrastructure/drive"
	"video-translator/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var publishFolderID string

var publishCmd = &cobra.Command{
	Use:   "publish <output_dir|report.json>",
	Short: "Upload saved results to Google Drive with public sharing",
	Long: `Upload the transcripts, translations and report.json of a finished batch to
Google Drive and make them accessible to anyone with the link.

Files already in the folder with the same name are replaced. The folder
defaults to google.results_folder_id from the config.

Example:
  video-translator publish ./results
  video-translator publish ./results --folder 1AbCdEf`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishFolderID, "folder", "", "Google Drive folder ID (defaults to google.results_folder_id)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	folderID := publishFolderID
	if folderID == "" {
		folderID = cfg.Google.ResultsFolderID
	}
	if folderID == "" {
		return distribution.ErrNoFolder
	}

	ctx := cmd.Context()
	httpClient, err := googleAuthHTTPClient(ctx, cfg)
	if err != nil {
		return err
	}
	client, err := drive.NewClient(ctx, httpClient)
	if err != nil {
		return fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	return RunPublishWithDependencies(ctx, client, folderID, args[0], DefaultOutput)
}

// RunPublishWithDependencies runs the publish command with injected dependencies (for testing)
func RunPublishWithDependencies(
	ctx context.Context,
	driveClient distribution.DriveClient,
	folderID string,
	reportPath string,
	output OutputWriter,
) error {
	report, err := filesystem.ReadReport(reportPath)
	if err != nil {
		return err
	}

	service := appdistribution.NewPublishService(driveClient, folderID, output, logger)
	result, err := service.Publish(ctx, report)
	if result != nil {
		printPublishResult(output, result)
	}
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	fmt.Fprintf(output, "Upload complete!\n")
	return nil
}

func printPublishResult(output OutputWriter, result *appdistribution.PublishResult) {
	fmt.Fprintln(output)
	fmt.Fprintf(output, "Folder: %s\n", result.FolderURL)
	if result.ReportURL != "" {
		fmt.Fprintf(output, "Report: %s\n", result.ReportURL)
	}

	sources := make([]string, 0, len(result.Links))
	for src := range result.Links {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	rows := make([][]string, 0, len(sources))
	for _, src := range sources {
		rows = append(rows, []string{filepath.Base(src), result.Links[src]})
	}
	if len(rows) > 0 {
		fmt.Fprintln(output, renderTable([]string{"File", "Translation"}, rows, nil))
	}
}
