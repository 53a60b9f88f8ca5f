package notification

import (
	"context"
	"path/filepath"

	"video-translator/domain/batch"
	"video-translator/domain/notification"
)

// Service sends batch summary e-mails
type Service struct {
	sender     notification.EmailSender
	senderName string
}

// NewService creates a new notification service
func NewService(sender notification.EmailSender, senderName string) *Service {
	return &Service{
		sender:     sender,
		senderName: senderName,
	}
}

// SendRequest contains the parameters for mailing a batch summary
type SendRequest struct {
	To         []notification.Recipient
	CC         []notification.Recipient
	Report     *batch.BatchReport
	Links      map[string]string // source file -> published translation URL
	ResultsURL string
}

// SendReport mails a summary of report to the requested recipients
func (s *Service) SendReport(ctx context.Context, req SendRequest) error {
	if req.Report == nil {
		return notification.ErrNoReport
	}
	report := req.Report

	files := make([]notification.FileLine, 0, report.Len())
	for _, o := range report.Outcomes {
		files = append(files, notification.FileLine{
			Name:   filepath.Base(o.SourceFile),
			Status: string(o.Status),
			Detail: o.ErrorDetail,
			Link:   req.Links[o.SourceFile],
		})
	}

	emailReq := &notification.EmailRequest{
		To:         req.To,
		CC:         req.CC,
		RunID:      report.RunID,
		InputDir:   report.InputDir,
		FinishedAt: report.FinishedAt,
		Total:      report.Len(),
		Succeeded:  report.Succeeded(),
		Failed:     report.Failed(),
		Files:      files,
		ResultsURL: req.ResultsURL,
		SenderName: s.senderName,
	}

	return s.sender.Send(ctx, emailReq)
}
