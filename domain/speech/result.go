package speech

// TranscriptResult is the raw text returned by the speech-to-text service
type TranscriptResult struct {
	SourceFile string `json:"source_file"`
	RawText    string `json:"raw_text"`
	ModelUsed  string `json:"model_used"`
}

// TranslationResult is the terminal artifact for a file
type TranslationResult struct {
	SourceFile     string `json:"source_file"`
	TranslatedText string `json:"translated_text"`
	ModelUsed      string `json:"model_used"`
	PromptUsed     string `json:"prompt_used"`
}
