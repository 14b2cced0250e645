package llmprovider

// Modality constants as reported by Bedrock's model listing.
const (
	ModalityText      = "TEXT"
	ModalityImage     = "IMAGE"
	ModalityEmbedding = "EMBEDDING"
)

// Inference type constants.
const (
	InferenceOnDemand    = "ON_DEMAND"
	InferenceProvisioned = "PROVISIONED"
)

// ModelSummary describes one hosted model.
type ModelSummary struct {
	// ID is the identifier passed as the model selection (e.g. "anthropic.claude-v2:1")
	ID string `json:"modelId"`

	// ARN is the fully qualified resource name
	ARN string `json:"modelArn,omitempty"`

	// Name is the display name (e.g. "Claude")
	Name string `json:"modelName,omitempty"`

	// ProviderName is the model vendor (e.g. "Anthropic")
	ProviderName string `json:"providerName,omitempty"`

	InputModalities  []string `json:"inputModalities,omitempty"`
	OutputModalities []string `json:"outputModalities,omitempty"`

	// StreamingSupported reports whether the model can stream responses
	StreamingSupported bool `json:"responseStreamingSupported,omitempty"`

	// InferenceTypes lists how the model can be invoked (ON_DEMAND, PROVISIONED)
	InferenceTypes []string `json:"inferenceTypesSupported,omitempty"`

	// LifecycleStatus is "ACTIVE" or "LEGACY"
	LifecycleStatus string `json:"lifecycleStatus,omitempty"`
}

// GeneratesText returns true if the model lists TEXT among its output modalities.
func (m ModelSummary) GeneratesText() bool {
	return containsString(m.OutputModalities, ModalityText)
}

// SupportsOnDemand returns true if the model can be invoked without provisioned throughput.
func (m ModelSummary) SupportsOnDemand() bool {
	return containsString(m.InferenceTypes, InferenceOnDemand)
}

// IsLegacy returns true if the model is scheduled for retirement.
func (m ModelSummary) IsLegacy() bool {
	return m.LifecycleStatus == "LEGACY"
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
