package batch

// ResultWriter persists successful outcomes into an output directory
type ResultWriter interface {
	// Write stores the transcript and translation of outcome and returns the written paths
	Write(outputDir string, outcome *PipelineOutcome) ([]string, error)
}

// ReportWriter persists a whole batch report
type ReportWriter interface {
	WriteReport(outputDir string, report *BatchReport) (string, error)
}

// OutputNames returns the transcript and translation filenames for a source stem
func OutputNames(stem string) (transcript, translation string) {
	return stem + "_transcript.txt", stem + "_translated.txt"
}

// ReportFilename is the name of the JSON report written into the output directory
const ReportFilename = "report.json"
