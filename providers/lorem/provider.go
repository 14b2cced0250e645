// Package lorem is an offline stand-in for a hosted model.
// It answers every prompt with lorem ipsum so the summary pipeline can run
// without credentials.
package lorem

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"

	llmprovider "github.com/haowjy/meridian-status-go"
)

// Provider is a mock LLM provider that generates lorem ipsum text.
// Used for testing and development without requiring real API keys.
//
// The model name selects the behavior:
//   - lorem-slow, lorem-medium, lorem-fast: response delay of 2s, 500ms, none
//   - lorem-cutoff, lorem-small: output stops at max_tokens words with stop reason "max_tokens"
//   - lorem-empty: the response carries no completion
type Provider struct {
	mu        sync.Mutex // golorem's generator is not safe for concurrent use
	generator *loremgen.Lorem
	delay     *time.Duration
	logger    *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithDelay overrides the model-derived response delay.
func WithDelay(d time.Duration) Option {
	return func(p *Provider) { p.delay = &d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		generator: loremgen.New(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() llmprovider.ProviderID {
	return llmprovider.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-cutoff"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// GenerateResponse generates a complete lorem ipsum response after the model's delay.
// This simulates a blocking API call to a real LLM provider.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	// Validate model
	if !p.SupportsModel(req.Model) {
		return nil, &llmprovider.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	// Extract parameters
	if err := llmprovider.ValidateRequestParams(req.Params); err != nil {
		return nil, err
	}
	maxTokens := req.Params.GetMaxTokens(200)

	delay := responseDelay(req.Model)
	if p.delay != nil {
		delay = *p.delay
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	resp := &llmprovider.GenerateResponse{
		Model:       req.Model,
		InputTokens: len(strings.Fields(req.Prompt)), // Word count as proxy
		StopReason:  "end_turn",
		ResponseMetadata: map[string]interface{}{
			"mock":     true,
			"provider": "lorem",
		},
	}

	if strings.Contains(req.Model, "empty") {
		p.logger.Debug("lorem returning no completion", "model", req.Model)
		return resp, nil
	}

	// Cutoff models generate 50% more to simulate hitting max_tokens
	cutoff := isCutoffModel(req.Model)
	targetWords := maxTokens
	if cutoff {
		targetWords = maxTokens + maxTokens/2
	}
	words := strings.Fields(p.generateTextWords(targetWords))
	if len(words) > maxTokens {
		words = words[:maxTokens]
		if cutoff {
			resp.StopReason = "max_tokens"
		}
	}
	text := strings.Join(words, " ")

	resp.Text = &text
	resp.OutputTokens = len(words)
	p.logger.Debug("lorem response generated",
		"model", req.Model,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return resp, nil
}

// responseDelay returns the simulated latency based on the model name.
// - lorem-slow: 2s
// - lorem-medium: 500ms
// - default (lorem-fast and others): none
func responseDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 2 * time.Second
	}
	if strings.Contains(model, "medium") {
		return 500 * time.Millisecond
	}
	return 0
}

// isCutoffModel returns true if the model should simulate max_tokens cutoff.
func isCutoffModel(model string) bool {
	return strings.Contains(model, "cutoff") || strings.Contains(model, "small")
}

// generateTextWords generates lorem ipsum text with at least targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	wordCount := 0
	for wordCount < targetWords {
		// Generate sentence with 5-15 words
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

var _ llmprovider.Provider = (*Provider)(nil)
