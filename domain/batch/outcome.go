package batch

import (
	"time"

	"video-translator/domain/speech"
)

// PipelineOutcome records what happened to one discovered file
type PipelineOutcome struct {
	SourceFile  string                    `json:"source_file"`
	Status      Status                    `json:"status"`
	FailedStage Stage                     `json:"failed_stage,omitempty"`
	Transcript  *speech.TranscriptResult  `json:"transcript,omitempty"`
	Translation *speech.TranslationResult `json:"translation,omitempty"`
	ErrorDetail string                    `json:"error,omitempty"`
	Written     []string                  `json:"written,omitempty"`
	Duration    time.Duration             `json:"duration_ns"`

	err error
}

// NewSuccessOutcome records a file that made it through every stage
func NewSuccessOutcome(source string, transcript *speech.TranscriptResult, translation *speech.TranslationResult) *PipelineOutcome {
	return &PipelineOutcome{
		SourceFile:  source,
		Status:      StatusSuccess,
		Transcript:  transcript,
		Translation: translation,
	}
}

// NewFailedOutcome records a failure at stage. Results produced before the
// failing stage are kept; nothing after it is populated.
func NewFailedOutcome(source string, stage Stage, transcript *speech.TranscriptResult, err error) *PipelineOutcome {
	o := &PipelineOutcome{
		SourceFile:  source,
		Status:      stage.FailureStatus(),
		FailedStage: stage,
		err:         err,
	}
	if stage == StageTranslating {
		o.Transcript = transcript
	}
	if err != nil {
		o.ErrorDetail = err.Error()
	}
	return o
}

// MarkWriteFailed degrades a successful outcome when persistence fails.
// The in-memory results stay intact.
func (o *PipelineOutcome) MarkWriteFailed(err error) {
	o.Status = StatusWriteFailed
	o.FailedStage = StageWriting
	o.err = err
	if err != nil {
		o.ErrorDetail = err.Error()
	}
}

// Err returns the error that caused the failure, nil on success
func (o *PipelineOutcome) Err() error {
	return o.err
}
