package model

// ModelDescriptor describes one generation model from the provider catalog.
type ModelDescriptor struct {
	ID                           string `json:"id"`
	Name                         string `json:"name"`
	Description                  string `json:"description"`
	SupportsStructuredGeneration bool   `json:"-"`
}

// GenerationRequest carries the user inputs of one summarize call.
type GenerationRequest struct {
	Rules string
	Model string
}

// GenerationResult is the structured output of the transcription call. The
// jsonschema tags drive the response schema sent to the provider.
type GenerationResult struct {
	Transcript string `json:"transcript" jsonschema:"description=Full verbatim transcript of the audio file"`
	Summary    string `json:"summary" jsonschema:"description=Summary of the audio based on the provided rules"`
	Language   string `json:"language" jsonschema:"description=Detected language code (e.g. 'en' 'zh' 'ja')"`
}

// View returns the transcript/summary projection of the result.
func (r GenerationResult) View() ViewResult {
	return ViewResult{Transcript: r.Transcript, Summary: r.Summary}
}

type TranslationResult struct {
	TranslatedText string `json:"translatedText" jsonschema:"description=The input text translated into the requested language"`
}

// ViewResult is a displayed transcript/summary pair. It is either the
// original projection or a translation of it and carries no language code.
type ViewResult struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}
