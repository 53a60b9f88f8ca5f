package batch

// Status is the final state of a file's pipeline run
type Status string

const (
	StatusSuccess             Status = "success"
	StatusExtractionFailed    Status = "extraction_failed"
	StatusTranscriptionFailed Status = "transcription_failed"
	StatusTranslationFailed   Status = "translation_failed"
	StatusWriteFailed         Status = "write_failed"
)

// Failed reports whether the status is anything other than success
func (s Status) Failed() bool {
	return s != StatusSuccess
}

// Stage is a step in the per-file state machine
type Stage string

const (
	StageDiscovered   Stage = "discovered"
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageTranslating  Stage = "translating"
	StageWriting      Stage = "writing"
	StageDone         Stage = "done"
)

var transitions = map[Stage][]Stage{
	StageDiscovered:   {StageExtracting},
	StageExtracting:   {StageTranscribing, StageDone},
	StageTranscribing: {StageTranslating, StageDone},
	StageTranslating:  {StageWriting, StageDone},
	StageWriting:      {StageDone},
}

// CanTransition reports whether next may follow s
func (s Stage) CanTransition(next Stage) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FailureStatus maps the stage that failed to the outcome status
func (s Stage) FailureStatus() Status {
	switch s {
	case StageExtracting:
		return StatusExtractionFailed
	case StageTranscribing:
		return StatusTranscriptionFailed
	case StageTranslating:
		return StatusTranslationFailed
	case StageWriting:
		return StatusWriteFailed
	default:
		return StatusExtractionFailed
	}
}
