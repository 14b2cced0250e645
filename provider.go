package llmprovider

import (
	"context"
)

// Provider defines the interface that all LLM providers must implement.
// This abstraction lets the report generator run against Bedrock text
// completion, the Claude Messages API, or the offline lorem provider
// through one call.
//
// Types used by this interface:
//   - GenerateRequest: defined in request.go
//   - GenerateResponse: defined in response.go
type Provider interface {
	// GenerateResponse sends one request and blocks until the provider answers.
	// A response with a nil Text is a valid, empty result and not an error.
	// Providers never retry.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "bedrock", "anthropic", "lorem")
	Name() ProviderID

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// ModelLister is implemented by providers that can enumerate hosted models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelSummary, error)
}
