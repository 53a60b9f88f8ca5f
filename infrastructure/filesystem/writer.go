package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-translator/domain/batch"
	"video-translator/domain/speech"
)

// ResultWriter implements batch.ResultWriter and batch.ReportWriter on the local disk
type ResultWriter struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewResultWriter creates a writer producing 0755 directories and 0644 files
func NewResultWriter() *ResultWriter {
	return &ResultWriter{dirPerm: 0755, filePerm: 0644}
}

// Write stores <stem>_transcript.txt and <stem>_translated.txt for a successful outcome
func (w *ResultWriter) Write(outputDir string, outcome *batch.PipelineOutcome) ([]string, error) {
	if outcome == nil || outcome.Transcript == nil || outcome.Translation == nil {
		return nil, speech.NewPersistenceError("write results", fmt.Errorf("outcome has no results to write"))
	}
	if err := os.MkdirAll(outputDir, w.dirPerm); err != nil {
		return nil, speech.NewPersistenceError("create output directory", err)
	}

	name := filepath.Base(outcome.SourceFile)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	transcriptName, translationName := batch.OutputNames(stem)

	files := []struct {
		name    string
		content string
	}{
		{transcriptName, outcome.Transcript.RawText},
		{translationName, outcome.Translation.TranslatedText},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(outputDir, f.name)
		if err := w.writeAtomic(path, []byte(f.content)); err != nil {
			return written, speech.NewPersistenceError("write "+f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteReport stores the batch report as indented JSON
func (w *ResultWriter) WriteReport(outputDir string, report *batch.BatchReport) (string, error) {
	if err := os.MkdirAll(outputDir, w.dirPerm); err != nil {
		return "", speech.NewPersistenceError("create output directory", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", speech.NewPersistenceError("encode report", err)
	}
	path := filepath.Join(outputDir, batch.ReportFilename)
	if err := w.writeAtomic(path, append(data, '\n')); err != nil {
		return "", speech.NewPersistenceError("write report", err)
	}
	return path, nil
}

// ReadReport loads a report.json written by WriteReport. path may be the
// report file itself or the output directory holding it.
func ReadReport(path string) (*batch.BatchReport, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, batch.ReportFilename)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var report batch.BatchReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	if report.OutputDir == "" {
		report.OutputDir = filepath.Dir(path)
	}
	return &report, nil
}

// writeAtomic writes to a sibling temp file and renames it into place so
// readers never see a half-written result.
func (w *ResultWriter) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, w.filePerm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

var (
	_ batch.ResultWriter = (*ResultWriter)(nil)
	_ batch.ReportWriter = (*ResultWriter)(nil)
)
