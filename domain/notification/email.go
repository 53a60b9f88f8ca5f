package notification

import (
	"context"
	"time"
)

// Recipient represents an email recipient with name and address
type Recipient struct {
	Name    string
	Address string
}

// FileLine is one processed file in a batch summary
type FileLine struct {
	Name   string
	Status string
	Detail string // failure detail, empty on success
	Link   string // published translation, if any
}

// EmailRequest contains everything needed to send a batch summary
type EmailRequest struct {
	To         []Recipient
	CC         []Recipient
	RunID      string
	InputDir   string
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
	Files      []FileLine
	ResultsURL string // Drive folder holding published results (optional)
	SenderName string
}

// Validate checks that the email request has all required fields
func (r *EmailRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	for _, rcpt := range append(append([]Recipient{}, r.To...), r.CC...) {
		if rcpt.Address == "" {
			return ErrInvalidRecipient
		}
	}
	if r.RunID == "" {
		return ErrNoRunID
	}
	if r.FinishedAt.IsZero() {
		return ErrNoFinishTime
	}
	return nil
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(ctx context.Context, req *EmailRequest) error
}
