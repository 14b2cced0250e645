package llmprovider

// GenerateRequest contains the parameters for an LLM generation request.
// A request carries one fully rendered prompt; there is no conversation history.
type GenerateRequest struct {
	// Prompt is the complete instruction text sent to the model.
	Prompt string

	// Model is the model identifier (e.g., "anthropic.claude-v2:1").
	// When empty, providers fall back to their current model selection.
	Model string

	// Params contains the generation parameters (max tokens, temperature, top_p, ...).
	// Provider adapters extract what they support from this unified struct.
	Params *RequestParams
}
