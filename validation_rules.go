package llmprovider

import (
	"fmt"
	"strings"
)

// ModelValidationRule checks model-related warnings
type ModelValidationRule struct {
	registry *CapabilityRegistry
}

func (r *ModelValidationRule) Name() string {
	return "Model Validation"
}

func (r *ModelValidationRule) Check(provider string, req *GenerateRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if req.Model == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeModelMissing,
			Category: "model",
			Field:    "model",
			Message:  "No model on the request; the provider's current selection will be used",
			Severity: SeverityInfo,
		})
		return warnings
	}

	if _, err := r.registry.GetProviderCapabilities(provider); err != nil {
		// Can't check without capabilities
		return warnings
	}

	family, known := r.registry.LookupFamily(provider, req.Model)
	if !known {
		// Capabilities might be outdated
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeModelUnknown,
			Category: "model",
			Field:    "model",
			Value:    req.Model,
			Message:  fmt.Sprintf("Model %s not found in %s capabilities, assuming the %s schema", req.Model, provider, family.Name),
			Severity: SeverityWarning,
		})
	}

	if family.API == APIMessages {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeAPIMismatch,
			Category: "model",
			Field:    "model",
			Value:    req.Model,
			Message:  fmt.Sprintf("Model %s only accepts the Messages API; text-completion bodies will be rejected", req.Model),
			Severity: SeverityError,
		})
	}

	if req.Params != nil && req.Params.MaxTokens != nil && family.MaxOutputTokens > 0 &&
		*req.Params.MaxTokens > family.MaxOutputTokens {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeMaxTokensTooHigh,
			Category: "model",
			Field:    "max_tokens",
			Value:    *req.Params.MaxTokens,
			Message:  fmt.Sprintf("max_tokens %d above the %s limit of %d", *req.Params.MaxTokens, family.Name, family.MaxOutputTokens),
			Severity: SeverityWarning,
		})
	}

	return warnings
}

// ParameterValidationRule checks parameter range warnings
type ParameterValidationRule struct {
	registry *CapabilityRegistry
}

func (r *ParameterValidationRule) Name() string {
	return "Parameter Validation"
}

func (r *ParameterValidationRule) Check(provider string, req *GenerateRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if req.Params == nil {
		return warnings
	}

	providerCaps, err := r.registry.GetProviderCapabilities(provider)
	if err != nil {
		// Can't check without capabilities
		return warnings
	}

	constraints := providerCaps.Constraints

	if req.Params.Temperature != nil {
		temp := *req.Params.Temperature
		if temp < constraints.TemperatureMin || temp > constraints.TemperatureMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTemperatureOutOfRange,
				Category: "parameter",
				Field:    "temperature",
				Value:    temp,
				Message:  fmt.Sprintf("Temperature %.2f outside recommended range [%.2f, %.2f]", temp, constraints.TemperatureMin, constraints.TemperatureMax),
				Severity: SeverityWarning,
			})
		}
	}

	if req.Params.TopP != nil {
		topP := *req.Params.TopP
		if topP < constraints.TopPMin || topP > constraints.TopPMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTopPOutOfRange,
				Category: "parameter",
				Field:    "top_p",
				Value:    topP,
				Message:  fmt.Sprintf("TopP %.2f outside recommended range [%.2f, %.2f]", topP, constraints.TopPMin, constraints.TopPMax),
				Severity: SeverityWarning,
			})
		}
	}

	if req.Params.TopK != nil {
		topK := *req.Params.TopK
		if topK < constraints.TopKMin || topK > constraints.TopKMax {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeTopKOutOfRange,
				Category: "parameter",
				Field:    "top_k",
				Value:    topK,
				Message:  fmt.Sprintf("TopK %d outside recommended range [%d, %d]", topK, constraints.TopKMin, constraints.TopKMax),
				Severity: SeverityWarning,
			})
		}
	}

	family, _ := r.registry.LookupFamily(provider, req.Model)
	if family.API != APITextCompletion {
		return warnings
	}
	unsupported := func(field string, set bool, key string) {
		if set && key == "" {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeParamUnsupported,
				Category: "parameter",
				Field:    field,
				Message:  fmt.Sprintf("%s is not accepted by the %s family and will be dropped", field, family.Name),
				Severity: SeverityInfo,
			})
		}
	}
	unsupported("top_k", req.Params.TopK != nil, family.Params.TopK)
	unsupported("stop", len(req.Params.Stop) > 0, family.Params.Stop)

	return warnings
}

// PromptCollisionRule flags Extra keys that would overwrite the prompt or a
// typed parameter in the serialized body. The body builder lets the parameter
// win; this rule only reports it.
type PromptCollisionRule struct {
	registry *CapabilityRegistry
}

func (r *PromptCollisionRule) Name() string {
	return "Prompt Collision"
}

func (r *PromptCollisionRule) Check(provider string, req *GenerateRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if strings.TrimSpace(req.Prompt) == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeEmptyPrompt,
			Category: "body",
			Field:    "prompt",
			Message:  "Prompt is empty",
			Severity: SeverityWarning,
		})
	}

	if req.Params == nil || len(req.Params.Extra) == 0 {
		return warnings
	}

	family, _ := r.registry.LookupFamily(provider, req.Model)
	promptKey := family.PromptKey
	if promptKey == "" {
		promptKey = "prompt"
	}

	if v, ok := req.Params.Extra[promptKey]; ok {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeParamCollidesWithPrompt,
			Category: "body",
			Field:    "extra." + promptKey,
			Value:    v,
			Message:  fmt.Sprintf("Extra parameter %q replaces the prompt in the request body", promptKey),
			Severity: SeverityError,
		})
	}

	typed := family.RequestFields(&RequestParams{
		MaxTokens:   req.Params.MaxTokens,
		Temperature: req.Params.Temperature,
		TopP:        req.Params.TopP,
		TopK:        req.Params.TopK,
		Stop:        req.Params.Stop,
	})
	for k := range req.Params.Extra {
		if _, ok := typed[k]; ok {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeParamCollidesWithPrompt,
				Category: "body",
				Field:    "extra." + k,
				Value:    req.Params.Extra[k],
				Message:  fmt.Sprintf("Extra parameter %q overrides a typed parameter", k),
				Severity: SeverityWarning,
			})
		}
	}

	return warnings
}
