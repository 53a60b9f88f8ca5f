package distribution

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UploadRequest contains the parameters needed to upload a file to Google Drive
type UploadRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target filename in Google Drive
	FolderID  string // Target folder ID in Google Drive
	MimeType  string // MIME type of the file
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	FileID       string // Google Drive file ID
	FileName     string // Name of the uploaded file
	ShareableURL string // URL for sharing the file
	Size         int64  // Size of the uploaded file in bytes
}

// MIME types for persisted results
const (
	MimeTypeText = "text/plain"
	MimeTypeJSON = "application/json"
)

// MimeTypeFor picks the upload MIME type from the file extension
func MimeTypeFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return MimeTypeJSON
	}
	return MimeTypeText
}

// ShareableURL builds the browser URL for a Drive file
func ShareableURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view?usp=sharing", fileID)
}

// FolderURL builds the browser URL for a Drive folder
func FolderURL(folderID string) string {
	return fmt.Sprintf("https://drive.google.com/drive/folders/%s", folderID)
}
