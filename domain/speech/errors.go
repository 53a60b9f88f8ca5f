package speech

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is against any error produced by this package.
var (
	// ErrConfiguration is a fatal setup problem detected before any file is processed
	ErrConfiguration = errors.New("configuration error")

	// ErrExtraction is returned when audio cannot be extracted from a video
	ErrExtraction = errors.New("extraction error")

	// ErrTranscription is returned when the speech-to-text call fails
	ErrTranscription = errors.New("transcription error")

	// ErrTranslation is returned when the translation call fails
	ErrTranslation = errors.New("translation error")

	// ErrPersistence is returned when results cannot be written to disk
	ErrPersistence = errors.New("persistence error")
)

// Reason narrows down why a remote call failed
type Reason string

const (
	ReasonNetwork       Reason = "network"
	ReasonTimeout       Reason = "timeout"
	ReasonAuth          Reason = "auth"
	ReasonRateLimited   Reason = "rate_limited"
	ReasonRemote        Reason = "remote"
	ReasonEmptyResponse Reason = "empty_response"
	ReasonInvalidInput  Reason = "invalid_input"
)

// StageError carries the kind, the operation and the underlying cause of a failure
type StageError struct {
	Kind   error
	Op     string
	Reason Reason
	Err    error
}

func (e *StageError) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Op)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the error kind sentinel
func (e *StageError) Is(target error) bool {
	return target == e.Kind
}

// NewConfigurationError wraps err as a configuration error
func NewConfigurationError(op string, err error) error {
	return &StageError{Kind: ErrConfiguration, Op: op, Err: err}
}

// NewExtractionError wraps err as an extraction error
func NewExtractionError(op string, err error) error {
	return &StageError{Kind: ErrExtraction, Op: op, Err: err}
}

// NewTranscriptionError wraps err as a transcription error
func NewTranscriptionError(op string, reason Reason, err error) error {
	return &StageError{Kind: ErrTranscription, Op: op, Reason: reason, Err: err}
}

// NewTranslationError wraps err as a translation error
func NewTranslationError(op string, reason Reason, err error) error {
	return &StageError{Kind: ErrTranslation, Op: op, Reason: reason, Err: err}
}

// NewPersistenceError wraps err as a persistence error
func NewPersistenceError(op string, err error) error {
	return &StageError{Kind: ErrPersistence, Op: op, Err: err}
}

// ReasonOf returns the failure reason carried by err, if any
func ReasonOf(err error) Reason {
	var se *StageError
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}
