package cmd

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	appdistribution "video-translator/application/distribution"
	appnotification "video-translator/application/notification"
	"video-translator/domain/batch"
	"video-translator/domain/distribution"
	"video-translator/domain/media"
	"video-translator/domain/speech"
	"video-translator/infrastructure/groq"
)

// --- Mock implementations for testing ---

// mockLister implements media.DirectoryLister
type mockLister struct {
	files []string
	err   error
}

func (m *mockLister) ListFiles(dir string) ([]string, error) {
	return m.files, m.err
}

// mockAudio implements pipeline.AudioSource
type mockAudio struct {
	mu       sync.Mutex
	failFor  map[string]error
	released int
}

func (m *mockAudio) WithAudio(ctx context.Context, video *media.VideoFile, fn func(*media.AudioArtifact) error) error {
	if err, ok := m.failFor[video.Name]; ok {
		return speech.NewExtractionError("extract "+video.Name, err)
	}
	artifact := media.NewAudioArtifactWithRelease("/tmp/"+video.Stem()+".wav", video.Path, func(string) error {
		m.mu.Lock()
		m.released++
		m.mu.Unlock()
		return nil
	})
	defer artifact.Release()
	return fn(artifact)
}

// mockTranscriber implements speech.Transcriber
type mockTranscriber struct {
	mu        sync.Mutex
	calls     int
	languages []string
	text      string
	err       error
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audio *media.AudioArtifact, model, language string) (*speech.TranscriptResult, error) {
	m.mu.Lock()
	m.calls++
	m.languages = append(m.languages, language)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &speech.TranscriptResult{SourceFile: audio.SourcePath, RawText: m.text, ModelUsed: model}, nil
}

// mockTranslator implements speech.Translator
type mockTranslator struct {
	mu     sync.Mutex
	calls  int
	text   string
	models []string
}

func (m *mockTranslator) Translate(ctx context.Context, text, model string, prompt speech.PromptTemplate) (*speech.TranslationResult, error) {
	m.mu.Lock()
	m.calls++
	m.models = append(m.models, model)
	m.mu.Unlock()
	return &speech.TranslationResult{TranslatedText: m.text, ModelUsed: model, PromptUsed: prompt.String()}, nil
}

// mockPublisher implements Publisher
type mockPublisher struct {
	result *appdistribution.PublishResult
	err    error
	calls  int
}

func (m *mockPublisher) Publish(ctx context.Context, report *batch.BatchReport) (*appdistribution.PublishResult, error) {
	m.calls++
	return m.result, m.err
}

// mockNotifier implements Notifier
type mockNotifier struct {
	requests []appnotification.SendRequest
	err      error
}

func (m *mockNotifier) SendReport(ctx context.Context, req appnotification.SendRequest) error {
	m.requests = append(m.requests, req)
	return m.err
}

// mockModelLister implements ModelLister
type mockModelLister struct {
	models []groq.Model
	err    error
}

func (m *mockModelLister) ListModels(ctx context.Context) ([]groq.Model, error) {
	return m.models, m.err
}

// mockDriveClient implements distribution.DriveClient
type mockDriveClient struct {
	uploaded []distribution.UploadRequest
	failName string
	err      error
}

func (m *mockDriveClient) ListFiles(ctx context.Context, folderID string) ([]distribution.FileInfo, error) {
	return nil, nil
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	return nil, nil
}

func (m *mockDriveClient) GetStorageQuota(ctx context.Context) (*distribution.StorageInfo, error) {
	return &distribution.StorageInfo{}, nil
}

func (m *mockDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	return nil
}

func (m *mockDriveClient) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if m.failName != "" && req.FileName == m.failName {
		return nil, m.err
	}
	m.uploaded = append(m.uploaded, req)
	id := "id-" + req.FileName
	return &distribution.UploadResult{
		FileID:       id,
		FileName:     req.FileName,
		ShareableURL: distribution.ShareableURL(id),
	}, nil
}

// mockPrompter implements Prompter with scripted answers
type mockPrompter struct {
	inputs   []string
	confirms []bool
	messages []string
}

func (m *mockPrompter) Input(message string, defaultValue string) (string, error) {
	m.messages = append(m.messages, message)
	if len(m.inputs) == 0 {
		return defaultValue, nil
	}
	v := m.inputs[0]
	m.inputs = m.inputs[1:]
	if v == "" {
		return defaultValue, nil
	}
	return v, nil
}

func (m *mockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	m.messages = append(m.messages, message)
	if len(m.confirms) == 0 {
		return defaultValue, nil
	}
	v := m.confirms[0]
	m.confirms = m.confirms[1:]
	return v, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
