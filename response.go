package llmprovider

// GenerateResponse contains the LLM provider's response.
type GenerateResponse struct {
	// Text is the generated completion. Nil when the provider returned no
	// completion field.
	Text *string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	// InputTokens is the number of tokens in the input
	InputTokens int

	// OutputTokens is the number of tokens in the output
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "stop_sequence", "max_tokens")
	StopReason string

	// ResponseMetadata contains provider-specific response data
	// Examples: stop sequence, request id.
	ResponseMetadata map[string]interface{}
}

// HasText reports whether the response carries a non-empty completion.
func (r *GenerateResponse) HasText() bool {
	return r != nil && r.Text != nil && *r.Text != ""
}

// TextOrEmpty returns the completion, or "" when there is none.
func (r *GenerateResponse) TextOrEmpty() string {
	if r == nil || r.Text == nil {
		return ""
	}
	return *r.Text
}
