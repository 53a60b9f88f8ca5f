package batch

import "time"

// BatchReport aggregates outcomes in discovery order
type BatchReport struct {
	RunID        string             `json:"run_id"`
	InputDir     string             `json:"input_dir"`
	OutputDir    string             `json:"output_dir,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
	Outcomes     []*PipelineOutcome `json:"outcomes"`
	NoFilesFound bool               `json:"no_files_found,omitempty"`
	Cancelled    bool               `json:"cancelled,omitempty"`
}

// Len returns the number of outcomes
func (r *BatchReport) Len() int {
	return len(r.Outcomes)
}

// Preview reports whether the batch ran without an output directory
func (r *BatchReport) Preview() bool {
	return r.OutputDir == ""
}

// Counts returns the number of outcomes per status
func (r *BatchReport) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Succeeded returns the number of successful outcomes
func (r *BatchReport) Succeeded() int {
	return r.Counts()[StatusSuccess]
}

// Failed returns the number of failed outcomes
func (r *BatchReport) Failed() int {
	return r.Len() - r.Succeeded()
}

// Duration returns the wall-clock time of the batch
func (r *BatchReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
