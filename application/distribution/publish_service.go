package distribution

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"video-translator/domain/batch"
	"video-translator/domain/distribution"

	"github.com/sirupsen/logrus"
)

// PublishService uploads persisted batch results to a Google Drive folder
type PublishService struct {
	driveClient distribution.DriveClient
	folderID    string
	output      io.Writer
	log         logrus.FieldLogger
}

// NewPublishService creates a new publish service
func NewPublishService(client distribution.DriveClient, folderID string, output io.Writer, log logrus.FieldLogger) *PublishService {
	if output == nil {
		output = io.Discard
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PublishService{
		driveClient: client,
		folderID:    folderID,
		output:      output,
		log:         log,
	}
}

// PublishResult maps each source file to the shared URL of its translation
type PublishResult struct {
	FolderURL string
	Links     map[string]string // source file -> translation URL
	ReportURL string
	Uploaded  []distribution.UploadResult
	Failed    map[string]error // local path -> upload error
}

// Publish uploads every file written by the batch plus the JSON report.
// A failed upload is recorded and the remaining files are still attempted.
func (s *PublishService) Publish(ctx context.Context, report *batch.BatchReport) (*PublishResult, error) {
	if s.folderID == "" {
		return nil, distribution.ErrNoFolder
	}
	if report.Preview() {
		return nil, fmt.Errorf("nothing to publish: batch ran in preview mode")
	}

	type pending struct {
		source string
		path   string
	}
	var files []pending
	var total int64
	for _, o := range report.Outcomes {
		for _, p := range o.Written {
			files = append(files, pending{source: o.SourceFile, path: p})
		}
	}
	reportPath := filepath.Join(report.OutputDir, batch.ReportFilename)
	if _, err := os.Stat(reportPath); err == nil {
		files = append(files, pending{path: reportPath})
	}
	for _, f := range files {
		info, err := os.Stat(f.path)
		if err != nil {
			return nil, fmt.Errorf("file does not exist: %s", f.path)
		}
		total += info.Size()
	}

	storage, err := s.driveClient.GetStorageQuota(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage: %w", err)
	}
	if !storage.HasSpaceFor(total) {
		return nil, fmt.Errorf("%w: need %d bytes, %d available", distribution.ErrInsufficientStorage, total, storage.AvailableBytes)
	}

	result := &PublishResult{
		FolderURL: distribution.FolderURL(s.folderID),
		Links:     make(map[string]string),
		Failed:    make(map[string]error),
	}

	fmt.Fprintf(s.output, "Publishing %d file(s) to Google Drive...\n", len(files))
	for _, f := range files {
		uploaded, err := s.uploadAndShare(ctx, f.path)
		if err != nil {
			result.Failed[f.path] = err
			s.log.WithError(err).WithField("file", f.path).Warn("Upload failed")
			fmt.Fprintf(s.output, "      %s: %v\n", filepath.Base(f.path), err)
			continue
		}
		result.Uploaded = append(result.Uploaded, *uploaded)
		switch {
		case f.source == "":
			result.ReportURL = uploaded.ShareableURL
		case isTranslation(f.path):
			result.Links[f.source] = uploaded.ShareableURL
		}
		fmt.Fprintf(s.output, "      %s -> %s\n", uploaded.FileName, uploaded.ShareableURL)
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%d of %d upload(s) failed", len(result.Failed), len(files))
	}
	return result, nil
}

// uploadAndShare uploads a file and sets public sharing permissions,
// replacing any previous upload with the same name
func (s *PublishService) uploadAndShare(ctx context.Context, filePath string) (*distribution.UploadResult, error) {
	fileName := filepath.Base(filePath)

	existing, err := s.driveClient.FindFileByName(ctx, s.folderID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		fmt.Fprintf(s.output, "      Replacing existing %s\n", existing.Name)
		if err := s.driveClient.DeletePermanently(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete existing file %s: %w", existing.Name, err)
		}
	}

	req := distribution.UploadRequest{
		LocalPath: filePath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  distribution.MimeTypeFor(filePath),
	}

	result, err := s.driveClient.UploadAndShare(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload and share %s: %w", fileName, err)
	}
	return result, nil
}

func isTranslation(path string) bool {
	_, suffix := batch.OutputNames("")
	return strings.HasSuffix(path, suffix)
}
