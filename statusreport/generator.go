package statusreport

import (
	"context"
	"fmt"
	"log/slog"

	llmprovider "github.com/haowjy/meridian-status-go"
)

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	// Model is sent with every request. When empty the provider's current
	// selection is used.
	Model string

	// Params are the generation parameters; nil uses the model family defaults.
	Params *llmprovider.RequestParams

	// Logger defaults to a discarding logger
	Logger *slog.Logger

	// Validator defaults to the global validation engine
	Validator *llmprovider.ValidationEngine
}

// Generator turns reports into summaries with one provider call each.
type Generator struct {
	provider  llmprovider.Provider
	model     string
	params    *llmprovider.RequestParams
	logger    *slog.Logger
	validator *llmprovider.ValidationEngine
}

// Summary is the outcome of one Generate call.
type Summary struct {
	Text string

	// Empty is true when the provider returned no completion
	Empty bool

	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}

// NewGenerator returns a Generator bound to provider.
func NewGenerator(provider llmprovider.Provider, cfg GeneratorConfig) *Generator {
	g := &Generator{
		provider:  provider,
		model:     cfg.Model,
		params:    cfg.Params,
		logger:    cfg.Logger,
		validator: cfg.Validator,
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	if g.validator == nil {
		g.validator = llmprovider.GetValidationEngine()
	}
	return g
}

// Generate validates r, renders its prompt and asks the provider once.
// A response without a completion is not an error; Summary.Empty is set.
func (g *Generator) Generate(ctx context.Context, r *Report) (*Summary, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	prompt, err := RenderPrompt(r)
	if err != nil {
		return nil, err
	}

	req := &llmprovider.GenerateRequest{
		Prompt: prompt,
		Model:  g.model,
		Params: g.params,
	}
	g.logWarnings(ctx, req)

	resp, err := g.provider.GenerateResponse(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}

	g.logger.Info("summary generated",
		"tier", r.Tier,
		"project", r.ProjectName,
		"model", resp.Model,
		"empty", !resp.HasText(),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)
	return &Summary{
		Text:         resp.TextOrEmpty(),
		Empty:        !resp.HasText(),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		StopReason:   resp.StopReason,
	}, nil
}

func (g *Generator) logWarnings(ctx context.Context, req *llmprovider.GenerateRequest) {
	provider := g.provider.Name().String()
	llmprovider.LogWarnings(ctx, g.logger, provider, g.validator.Validate(provider, req))
}
