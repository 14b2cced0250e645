package llmprovider

import "testing"

func TestModelSummary_GeneratesText(t *testing.T) {
	tests := []struct {
		name     string
		model    ModelSummary
		expected bool
	}{
		{
			name:     "text model",
			model:    ModelSummary{ID: "anthropic.claude-v2", OutputModalities: []string{ModalityText}},
			expected: true,
		},
		{
			name:     "embedding model",
			model:    ModelSummary{ID: "amazon.titan-embed-text-v1", OutputModalities: []string{ModalityEmbedding}},
			expected: false,
		},
		{
			name:     "no modalities",
			model:    ModelSummary{ID: "x"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.model.GeneratesText(); got != tt.expected {
				t.Errorf("GeneratesText() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestModelSummary_SupportsOnDemand(t *testing.T) {
	tests := []struct {
		name     string
		types    []string
		expected bool
	}{
		{"on demand", []string{InferenceOnDemand}, true},
		{"both", []string{InferenceProvisioned, InferenceOnDemand}, true},
		{"provisioned only", []string{InferenceProvisioned}, false},
		{"none", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ModelSummary{InferenceTypes: tt.types}
			if got := m.SupportsOnDemand(); got != tt.expected {
				t.Errorf("SupportsOnDemand() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestModelSummary_IsLegacy(t *testing.T) {
	if (ModelSummary{LifecycleStatus: "ACTIVE"}).IsLegacy() {
		t.Error("ACTIVE model reported as legacy")
	}
	if !(ModelSummary{LifecycleStatus: "LEGACY"}).IsLegacy() {
		t.Error("LEGACY model not reported as legacy")
	}
}

func TestGenerateResponse_Text(t *testing.T) {
	var nilResp *GenerateResponse
	if nilResp.HasText() || nilResp.TextOrEmpty() != "" {
		t.Error("nil response should have no text")
	}

	empty := &GenerateResponse{}
	if empty.HasText() {
		t.Error("response without Text should report no text")
	}

	resp := &GenerateResponse{Text: stringPtr("")}
	if resp.HasText() {
		t.Error("empty completion should not count as text")
	}
	resp = &GenerateResponse{Text: stringPtr("done")}
	if resp.TextOrEmpty() != "done" {
		t.Errorf("TextOrEmpty() = %q, want %q", resp.TextOrEmpty(), "done")
	}
}

func TestProviderID_IsValid(t *testing.T) {
	for _, p := range []ProviderID{ProviderBedrock, ProviderAnthropic, ProviderLorem} {
		if !p.IsValid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if ProviderID("openai").IsValid() {
		t.Error("openai should not be valid")
	}
}
