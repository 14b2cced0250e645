package llmprovider

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupFamily_EmbeddedBedrock(t *testing.T) {
	registry := GetCapabilityRegistry()

	tests := []struct {
		name       string
		model      string
		wantFamily string
		wantKnown  bool
	}{
		{"claude v2", "anthropic.claude-v2", "anthropic-text", true},
		{"claude v2.1", "anthropic.claude-v2:1", "anthropic-text", true},
		{"claude instant", "anthropic.claude-instant-v1", "anthropic-text", true},
		{"claude 3 haiku", "anthropic.claude-3-haiku-20240307-v1:0", "anthropic-messages", true},
		{"claude sonnet 4 profile", "us.anthropic.claude-sonnet-4-20250514-v1:0", "anthropic-messages", true},
		{"llama", "meta.llama3-8b-instruct-v1:0", "meta", true},
		{"mistral", "mistral.mistral-7b-instruct-v0:2", "mistral", true},
		{"cohere", "cohere.command-text-v14", "cohere", true},
		{"unknown falls back to default", "acme.model-x", "anthropic-text", false},
		{"empty model falls back", "", "anthropic-text", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, known := registry.LookupFamily("bedrock", tt.model)
			if family == nil {
				t.Fatal("LookupFamily returned nil family")
			}
			if family.Name != tt.wantFamily {
				t.Errorf("family = %q, want %q", family.Name, tt.wantFamily)
			}
			if known != tt.wantKnown {
				t.Errorf("known = %v, want %v", known, tt.wantKnown)
			}
		})
	}
}

func TestLookupFamily_DefaultSchema(t *testing.T) {
	family, _ := GetCapabilityRegistry().LookupFamily("bedrock", "anthropic.claude-v2")

	if family.API != APITextCompletion {
		t.Errorf("API = %q, want %q", family.API, APITextCompletion)
	}
	if family.PromptKey != "prompt" || family.CompletionPath != "completion" {
		t.Errorf("schema = %q/%q, want prompt/completion", family.PromptKey, family.CompletionPath)
	}
	if family.Params.MaxTokens != "max_tokens_to_sample" {
		t.Errorf("max tokens key = %q", family.Params.MaxTokens)
	}
	if family.Defaults.GetMaxTokens(0) != 1000 || family.Defaults.GetTemperature(0) != 0.1 {
		t.Errorf("defaults = %+v", family.Defaults)
	}
	if family.Defaults.TopP == nil || *family.Defaults.TopP != 0.1 {
		t.Errorf("top_p default = %v", family.Defaults.TopP)
	}
}

func TestLookupFamily_UnknownProvider(t *testing.T) {
	family, known := GetCapabilityRegistry().LookupFamily("nope", "anything")
	if known {
		t.Error("unknown provider should not report a match")
	}
	if family.PromptKey != "prompt" || family.CompletionPath != "completion" {
		t.Errorf("fallback schema = %q/%q", family.PromptKey, family.CompletionPath)
	}
}

func TestLookupFamily_LongestPrefixWins(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.RegisterProviderCapabilities("test", &ProviderCapabilities{
		Provider:      "test",
		DefaultFamily: "short",
		Families: map[string]ModelFamily{
			"short": {ModelPrefixes: []string{"vendor."}},
			"long":  {ModelPrefixes: []string{"vendor.special"}},
		},
	})

	family, known := registry.LookupFamily("test", "vendor.special-v1")
	if !known || family.Name != "long" {
		t.Errorf("got %q (known=%v), want long", family.Name, known)
	}
	family, _ = registry.LookupFamily("test", "vendor.plain-v1")
	if family.Name != "short" {
		t.Errorf("got %q, want short", family.Name)
	}
}

func TestLoadCapabilities_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "provider: [unclosed"},
		{"missing provider", "version: 1.0.0\n"},
		{"undefined default family", "provider: x\ndefault_family: missing\nfamilies: {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewCapabilityRegistry().LoadCapabilities([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadCapabilitiesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := `
provider: custom
default_family: plain
families:
  plain:
    api: text_completion
    model_prefixes: [acme.]
    prompt_key: input
    completion_path: result.text
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	registry := NewCapabilityRegistry()
	if err := registry.LoadCapabilitiesFromFile(path); err != nil {
		t.Fatalf("LoadCapabilitiesFromFile: %v", err)
	}
	if !registry.SupportsModel("custom", "acme.one") {
		t.Error("acme.one should be supported")
	}
	if registry.SupportsModel("custom", "other.one") {
		t.Error("other.one should not be supported")
	}
	family, _ := registry.LookupFamily("custom", "acme.one")
	if family.PromptKey != "input" || family.CompletionPath != "result.text" {
		t.Errorf("schema = %q/%q", family.PromptKey, family.CompletionPath)
	}

	if err := registry.LoadCapabilitiesFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalizeModelID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"anthropic.claude-v2", "anthropic.claude-v2"},
		{"us.anthropic.claude-3-haiku-20240307-v1:0", "anthropic.claude-3-haiku-20240307-v1:0"},
		{"eu.meta.llama3-2-1b-instruct-v1:0", "meta.llama3-2-1b-instruct-v1:0"},
		{"apac.anthropic.claude-3-haiku", "anthropic.claude-3-haiku"},
		{"us-gov.anthropic.claude-3-haiku", "anthropic.claude-3-haiku"},
		{"arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-v2", "anthropic.claude-v2"},
		{"arn:aws:bedrock:us-west-2:123456789012:inference-profile/us.anthropic.claude-3-haiku", "anthropic.claude-3-haiku"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeModelID(tt.in); got != tt.want {
				t.Errorf("NormalizeModelID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
