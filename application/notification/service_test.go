package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"video-translator/domain/batch"
	"video-translator/domain/notification"
)

type mockSender struct {
	sent []*notification.EmailRequest
	err  error
}

func (m *mockSender) Send(ctx context.Context, req *notification.EmailRequest) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, req)
	return nil
}

func TestService_SendReport(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, "Jonathan")

	report := &batch.BatchReport{
		RunID:      "run-1",
		InputDir:   "/videos",
		OutputDir:  "/out",
		FinishedAt: time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC),
		Outcomes: []*batch.PipelineOutcome{
			{SourceFile: "/videos/a.mp4", Status: batch.StatusSuccess},
			{SourceFile: "/videos/b.mkv", Status: batch.StatusTranslationFailed, ErrorDetail: "timeout"},
		},
	}

	err := svc.SendReport(context.Background(), SendRequest{
		To:         []notification.Recipient{{Name: "John", Address: "john@example.com"}},
		Report:     report,
		Links:      map[string]string{"/videos/a.mp4": "https://drive.google.com/file/d/a/view"},
		ResultsURL: "https://drive.google.com/drive/folders/f",
	})
	if err != nil {
		t.Fatalf("SendReport() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.Total != 2 || got.Succeeded != 1 || got.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", got.Total, got.Succeeded, got.Failed)
	}
	if got.RunID != "run-1" || got.SenderName != "Jonathan" {
		t.Errorf("RunID = %q, SenderName = %q", got.RunID, got.SenderName)
	}
	if len(got.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(got.Files))
	}
	if got.Files[0].Name != "a.mp4" || got.Files[0].Link == "" {
		t.Errorf("Files[0] = %+v", got.Files[0])
	}
	if got.Files[1].Detail != "timeout" || got.Files[1].Status != "translation_failed" {
		t.Errorf("Files[1] = %+v", got.Files[1])
	}
}

func TestService_SendReport_NoReport(t *testing.T) {
	svc := NewService(&mockSender{}, "Jonathan")
	if err := svc.SendReport(context.Background(), SendRequest{}); !errors.Is(err, notification.ErrNoReport) {
		t.Errorf("SendReport() error = %v, want ErrNoReport", err)
	}
}

func TestService_SendReport_SenderError(t *testing.T) {
	svc := NewService(&mockSender{err: notification.ErrSendFailed}, "Jonathan")
	err := svc.SendReport(context.Background(), SendRequest{
		Report: &batch.BatchReport{RunID: "r", FinishedAt: time.Now()},
	})
	if !errors.Is(err, notification.ErrSendFailed) {
		t.Errorf("SendReport() error = %v, want ErrSendFailed", err)
	}
}
