package llmprovider

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/capabilities/bedrock.yaml
var bedrockCapabilitiesYAML []byte

// Capabilities Philosophy:
//
// This file describes the WIRE SCHEMA of each hosted model family: where the
// prompt goes, what each generation parameter is called, and where the
// completion comes back. It does NOT enforce validation - the provider API is
// the source of truth. Unknown models fall back to the provider's default
// family, which for Bedrock is the Anthropic text-completion schema
// ({"prompt": ...} in, {"completion": ...} out).
//
// Library users can override the embedded data by:
//  1. Calling LoadCapabilitiesFromFile() with custom YAML
//  2. Calling RegisterProviderCapabilities() programmatically

// API kinds a model family can speak.
const (
	APITextCompletion = "text_completion"
	APIMessages       = "messages"
)

// ProviderCapabilities represents the full capability configuration for a provider
type ProviderCapabilities struct {
	Version       string                 `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated   string                 `yaml:"last_updated"` // ISO 8601 date (e.g., "2025-01-15")
	Provider      string                 `yaml:"provider"`
	DefaultFamily string                 `yaml:"default_family"`
	Families      map[string]ModelFamily `yaml:"families"`
	Constraints   ProviderConstraints    `yaml:"constraints"`
}

// ModelFamily is the request/response schema shared by a group of models.
type ModelFamily struct {
	// Name is the key of the family in ProviderCapabilities.Families
	Name string `yaml:"-"`

	// API is APITextCompletion or APIMessages
	API string `yaml:"api"`

	ModelPrefixes []string `yaml:"model_prefixes"`

	// PromptKey is the body key holding the prompt
	PromptKey string `yaml:"prompt_key"`

	// CompletionPath is a gjson path to the generated text in the response body
	CompletionPath string `yaml:"completion_path"`

	// StopReasonPath is a gjson path to the stop reason in the response body
	StopReasonPath string `yaml:"stop_reason_path"`

	MaxOutputTokens int `yaml:"max_output_tokens"`

	// Params maps typed parameters to this family's wire keys.
	// An empty key means the family does not accept the parameter.
	Params ParamKeys `yaml:"params"`

	// Defaults are applied to unset typed parameters
	Defaults RequestParams `yaml:"defaults"`
}

// ParamKeys names the wire key of each typed parameter.
type ParamKeys struct {
	MaxTokens   string `yaml:"max_tokens"`
	Temperature string `yaml:"temperature"`
	TopP        string `yaml:"top_p"`
	TopK        string `yaml:"top_k"`
	Stop        string `yaml:"stop"`
}

// ProviderConstraints defines provider-wide parameter limits
type ProviderConstraints struct {
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	TopPMin        float64 `yaml:"top_p_min"`
	TopPMax        float64 `yaml:"top_p_max"`
	TopKMin        int     `yaml:"top_k_min"`
	TopKMax        int     `yaml:"top_k_max"`
}

// CapabilityRegistry manages provider capabilities
type CapabilityRegistry struct {
	capabilities map[string]*ProviderCapabilities
	mu           sync.RWMutex
}

var (
	globalRegistry     *CapabilityRegistry
	globalRegistryOnce sync.Once
)

// NewCapabilityRegistry returns an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{capabilities: make(map[string]*ProviderCapabilities)}
}

// GetCapabilityRegistry returns the global capability registry (singleton)
func GetCapabilityRegistry() *CapabilityRegistry {
	globalRegistryOnce.Do(func() {
		globalRegistry = NewCapabilityRegistry()
		if err := globalRegistry.LoadCapabilities(bedrockCapabilitiesYAML); err != nil {
			// Don't panic - lookups fall back to an empty default family
			slog.Default().Warn("failed to load embedded bedrock capabilities", "error", err)
		}
	})
	return globalRegistry
}

// LoadCapabilities parses capability YAML and registers it under its provider name.
func (r *CapabilityRegistry) LoadCapabilities(data []byte) error {
	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("failed to unmarshal capabilities: %w", err)
	}
	if caps.Provider == "" {
		return fmt.Errorf("capabilities document has no provider")
	}
	if caps.DefaultFamily != "" {
		if _, ok := caps.Families[caps.DefaultFamily]; !ok {
			return fmt.Errorf("default family %q is not defined", caps.DefaultFamily)
		}
	}

	r.RegisterProviderCapabilities(caps.Provider, &caps)
	return nil
}

// GetProviderCapabilities returns capabilities for a provider
func (r *CapabilityRegistry) GetProviderCapabilities(provider string) (*ProviderCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.capabilities[provider]
	if !ok {
		return nil, fmt.Errorf("no capabilities found for provider: %s", provider)
	}
	return caps, nil
}

// LookupFamily resolves the family for a model id.
// The boolean is false when no prefix matched and the default family was returned.
// If the provider is unknown an empty text-completion family is returned.
func (r *CapabilityRegistry) LookupFamily(provider, model string) (*ModelFamily, bool) {
	caps, err := r.GetProviderCapabilities(provider)
	if err != nil {
		return fallbackFamily(), false
	}

	id := NormalizeModelID(model)
	var (
		best    *ModelFamily
		bestLen int
	)
	for name, fam := range caps.Families {
		for _, prefix := range fam.ModelPrefixes {
			if strings.HasPrefix(id, prefix) && len(prefix) > bestLen {
				f := fam
				f.Name = name
				best, bestLen = &f, len(prefix)
			}
		}
	}
	if best != nil {
		return best, true
	}

	if fam, ok := caps.Families[caps.DefaultFamily]; ok {
		fam.Name = caps.DefaultFamily
		return &fam, false
	}
	return fallbackFamily(), false
}

// SupportsModel checks if a provider has a family matching the model
func (r *CapabilityRegistry) SupportsModel(provider, model string) bool {
	_, ok := r.LookupFamily(provider, model)
	return ok
}

// LoadCapabilitiesFromFile loads provider capabilities from a YAML file.
// This allows library users to override embedded capabilities with custom data.
// The file format should match the embedded YAML structure.
func (r *CapabilityRegistry) LoadCapabilitiesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read capabilities file: %w", err)
	}
	return r.LoadCapabilities(data)
}

// RegisterProviderCapabilities programmatically registers provider capabilities.
// This allows library users to define capabilities in code rather than YAML.
func (r *CapabilityRegistry) RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[provider] = caps
}

// LoadCapabilitiesFromFile is a convenience function that calls the global registry's LoadCapabilitiesFromFile.
func LoadCapabilitiesFromFile(path string) error {
	return GetCapabilityRegistry().LoadCapabilitiesFromFile(path)
}

// RegisterProviderCapabilities is a convenience function that calls the global registry's RegisterProviderCapabilities.
func RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	GetCapabilityRegistry().RegisterProviderCapabilities(provider, caps)
}

// NormalizeModelID strips an ARN path and a cross-region inference-profile
// prefix, leaving the foundation model id
// ("arn:aws:bedrock:...:inference-profile/us.anthropic.claude-3-haiku" -> "anthropic.claude-3-haiku").
func NormalizeModelID(model string) string {
	if strings.HasPrefix(model, "arn:") {
		if i := strings.LastIndex(model, "/"); i >= 0 {
			model = model[i+1:]
		}
	}
	for _, geo := range []string{"us.", "eu.", "apac.", "us-gov.", "jp.", "au."} {
		if rest, ok := strings.CutPrefix(model, geo); ok && strings.Contains(rest, ".") {
			return rest
		}
	}
	return model
}

func fallbackFamily() *ModelFamily {
	return &ModelFamily{
		Name:           "fallback",
		API:            APITextCompletion,
		PromptKey:      "prompt",
		CompletionPath: "completion",
		StopReasonPath: "stop_reason",
		Params: ParamKeys{
			MaxTokens:   "max_tokens_to_sample",
			Temperature: "temperature",
			TopP:        "top_p",
			TopK:        "top_k",
			Stop:        "stop_sequences",
		},
	}
}
