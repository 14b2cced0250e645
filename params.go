package llmprovider

import (
	"encoding/json"
	"fmt"
)

// RequestParams represents the generation parameters shared by all providers.
// All fields are optional pointers to distinguish "not set" from "set to zero value".
//
// Providers translate the typed fields to their own wire keys (see ModelFamily.Params).
// Typed fields can never collide with a prompt key; Extra can.
type RequestParams struct {
	// MaxTokens sets the maximum number of tokens to generate
	MaxTokens *int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-1.0)
	// 0.0 = deterministic, 1.0 = maximum randomness
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// TopP (nucleus sampling) - cumulative probability cutoff (0.0-1.0)
	TopP *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`

	// TopK limits sampling to top K tokens
	TopK *int `json:"top_k,omitempty" yaml:"top_k,omitempty"`

	// Stop sequences - generation stops if any of these are generated
	Stop []string `json:"stop,omitempty" yaml:"stop,omitempty"`

	// System prompt (Messages API only; ignored by text completion)
	System *string `json:"system,omitempty" yaml:"system,omitempty"`

	// Extra holds model-specific options sent verbatim as top-level body keys.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// ValidateRequestParams validates request parameters.
// Returns a *ValidationError wrapping ErrInvalidRequest on the first violation.
func ValidateRequestParams(params *RequestParams) error {
	if params == nil {
		return nil // nil params is valid
	}

	if params.Temperature != nil {
		if *params.Temperature < 0.0 || *params.Temperature > 1.0 {
			return invalidParam("temperature", *params.Temperature, "must be between 0.0 and 1.0")
		}
	}

	if params.TopP != nil {
		if *params.TopP < 0.0 || *params.TopP > 1.0 {
			return invalidParam("top_p", *params.TopP, "must be between 0.0 and 1.0")
		}
	}

	if params.TopK != nil {
		if *params.TopK < 0 {
			return invalidParam("top_k", *params.TopK, "must be non-negative")
		}
	}

	if params.MaxTokens != nil {
		if *params.MaxTokens < 1 {
			return invalidParam("max_tokens", *params.MaxTokens, "must be positive")
		}
	}

	for k, v := range params.Extra {
		switch v.(type) {
		case nil, string, bool, int, int32, int64, float32, float64:
		default:
			return invalidParam("extra."+k, v, fmt.Sprintf("must be a scalar, got %T", v))
		}
	}

	return nil
}

func invalidParam(field string, value any, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
		Err:    ErrInvalidRequest,
	}
}

// GetRequestParamStruct unmarshals a loosely typed map (e.g. from a config file)
// into a typed RequestParams struct. Unknown keys end up in Extra.
func GetRequestParamStruct(params map[string]interface{}) (*RequestParams, error) {
	if params == nil {
		return &RequestParams{}, nil
	}

	jsonBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var rp RequestParams
	if err := json.Unmarshal(jsonBytes, &rp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	known := map[string]bool{
		"max_tokens": true, "temperature": true, "top_p": true,
		"top_k": true, "stop": true, "system": true, "extra": true,
	}
	for k, v := range params {
		if known[k] {
			continue
		}
		if rp.Extra == nil {
			rp.Extra = make(map[string]any)
		}
		rp.Extra[k] = v
	}

	return &rp, nil
}

// GetMaxTokens returns max_tokens with default fallback
func (rp *RequestParams) GetMaxTokens(defaultValue int) int {
	if rp != nil && rp.MaxTokens != nil {
		return *rp.MaxTokens
	}
	return defaultValue
}

// GetTemperature returns temperature with default fallback
func (rp *RequestParams) GetTemperature(defaultValue float64) float64 {
	if rp != nil && rp.Temperature != nil {
		return *rp.Temperature
	}
	return defaultValue
}

// WithDefaults returns a copy of rp where every unset typed field is taken from defaults.
// Extra maps are merged with rp taking precedence.
func (rp *RequestParams) WithDefaults(defaults *RequestParams) *RequestParams {
	out := &RequestParams{}
	if rp != nil {
		*out = *rp
	}
	if defaults == nil {
		return out
	}
	if out.MaxTokens == nil {
		out.MaxTokens = defaults.MaxTokens
	}
	if out.Temperature == nil {
		out.Temperature = defaults.Temperature
	}
	if out.TopP == nil {
		out.TopP = defaults.TopP
	}
	if out.TopK == nil {
		out.TopK = defaults.TopK
	}
	if len(out.Stop) == 0 {
		out.Stop = defaults.Stop
	}
	if out.System == nil {
		out.System = defaults.System
	}
	if len(defaults.Extra) > 0 {
		merged := make(map[string]any, len(defaults.Extra)+len(out.Extra))
		for k, v := range defaults.Extra {
			merged[k] = v
		}
		for k, v := range out.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}
