package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"video-translator/domain/batch"
	"video-translator/domain/speech"
	"video-translator/infrastructure/filesystem"
)

// writeSavedBatch persists a finished one-file batch the way a run would
func writeSavedBatch(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writer := filesystem.NewResultWriter()

	outcome := batch.NewSuccessOutcome("/videos/sample.mp4",
		&speech.TranscriptResult{RawText: "hello world"},
		&speech.TranslationResult{TranslatedText: "hola mundo"})
	written, err := writer.Write(dir, outcome)
	if err != nil {
		t.Fatalf("writing results: %v", err)
	}
	outcome.Written = written

	report := &batch.BatchReport{RunID: "run-7", InputDir: "/videos", OutputDir: dir, Outcomes: []*batch.PipelineOutcome{outcome}}
	if _, err := writer.WriteReport(dir, report); err != nil {
		t.Fatalf("writing report: %v", err)
	}
	return dir
}

func TestRunPublishWithDependencies(t *testing.T) {
	dir := writeSavedBatch(t)
	client := &mockDriveClient{}
	var buf bytes.Buffer

	err := RunPublishWithDependencies(context.Background(), client, "folder-1", filepath.Join(dir, batch.ReportFilename), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := make([]string, 0, len(client.uploaded))
	for _, u := range client.uploaded {
		names = append(names, u.FileName)
		if u.FolderID != "folder-1" {
			t.Errorf("%s uploaded to folder %q", u.FileName, u.FolderID)
		}
	}
	want := []string{"sample_transcript.txt", "sample_translated.txt", batch.ReportFilename}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("uploaded = %v, want %v", names, want)
	}

	out := buf.String()
	for _, w := range []string{"folder-1", "sample.mp4", "id-sample_translated.txt", "Upload complete!"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestRunPublishWithDependencies_PartialFailure(t *testing.T) {
	dir := writeSavedBatch(t)
	client := &mockDriveClient{failName: "sample_transcript.txt", err: errors.New("network down")}
	var buf bytes.Buffer

	err := RunPublishWithDependencies(context.Background(), client, "folder-1", dir, &buf)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 upload(s) failed") {
		t.Fatalf("error = %v", err)
	}
	if len(client.uploaded) != 2 {
		t.Errorf("uploaded %d file(s), want 2", len(client.uploaded))
	}
	if strings.Contains(buf.String(), "Upload complete!") {
		t.Error("partial failure reported as complete")
	}
}

func TestRunPublishWithDependencies_PreviewReport(t *testing.T) {
	// a report without an output directory falls back to the directory it was read from
	dir := t.TempDir()
	report := &batch.BatchReport{RunID: "run-8", InputDir: "/videos"}
	if _, err := filesystem.NewResultWriter().WriteReport(dir, report); err != nil {
		t.Fatal(err)
	}

	client := &mockDriveClient{}
	if err := RunPublishWithDependencies(context.Background(), client, "folder-1", dir, &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.uploaded) != 1 || client.uploaded[0].FileName != batch.ReportFilename {
		t.Errorf("uploaded = %+v", client.uploaded)
	}
}
