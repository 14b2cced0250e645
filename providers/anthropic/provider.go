package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/aws"

	llmprovider "github.com/haowjy/meridian-status-go"
)

// Provider implements the llmprovider.Provider interface for Claude's Messages API.
// It talks either to Anthropic directly or to Bedrock's hosted Claude models.
type Provider struct {
	client    *anthropic.Client
	viaAWS    bool
	logger    *slog.Logger
	registry  *llmprovider.CapabilityRegistry
	maxTokens int
}

// Option configures a Provider.
type Option func(*settings)

type settings struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// WithBaseURL points the provider at a different API host (used by tests and proxies).
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// NewProvider creates a provider for the Anthropic API with the given API key.
func NewProvider(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, llmprovider.ErrInvalidAPIKey
	}
	return newProvider(false, []option.RequestOption{option.WithAPIKey(apiKey)}, opts), nil
}

// NewBedrockProvider creates a provider that sends Messages API calls through
// AWS Bedrock using awsCfg for region and credentials.
func NewBedrockProvider(awsCfg aws.Config, opts ...Option) *Provider {
	return newProvider(true, []option.RequestOption{bedrock.WithConfig(awsCfg)}, opts)
}

func newProvider(viaAWS bool, reqOpts []option.RequestOption, opts []Option) *Provider {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	// One request per call; failures propagate to the caller
	reqOpts = append(reqOpts, option.WithMaxRetries(0))
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	if s.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.httpClient))
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	client := anthropic.NewClient(reqOpts...)
	return &Provider{
		client:    &client,
		viaAWS:    viaAWS,
		logger:    s.logger,
		registry:  llmprovider.GetCapabilityRegistry(),
		maxTokens: 1024,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() llmprovider.ProviderID {
	return llmprovider.ProviderAnthropic
}

// SupportsModel returns true if this provider supports the given model.
// Direct API models start with "claude-"; Bedrock models must resolve to a
// family that speaks the Messages API.
func (p *Provider) SupportsModel(model string) bool {
	if !p.viaAWS {
		return strings.HasPrefix(model, "claude-")
	}
	family, ok := p.registry.LookupFamily(llmprovider.ProviderBedrock.String(), model)
	return ok && family.API == llmprovider.APIMessages
}

// GenerateResponse sends the prompt as a single user message.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	if req.Model == "" {
		return nil, llmprovider.ErrNoModel
	}
	if !p.SupportsModel(req.Model) {
		return nil, &llmprovider.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model does not speak the Claude Messages API",
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	params := req.Params
	if p.viaAWS {
		family, _ := p.registry.LookupFamily(llmprovider.ProviderBedrock.String(), req.Model)
		params = params.WithDefaults(&family.Defaults)
	}

	apiParams, err := buildMessageParams(req.Model, req.Prompt, params, p.maxTokens)
	if err != nil {
		return nil, err
	}

	message, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		p.logger.Debug("anthropic messages call failed", "model", req.Model, "error", err)
		return nil, convertError(err)
	}

	return convertFromAnthropicResponse(message), nil
}

// convertError maps SDK errors to *llmprovider.ProviderError.
func convertError(err error) error {
	perr := &llmprovider.ProviderError{
		Provider: llmprovider.ProviderAnthropic.String(),
		Message:  err.Error(),
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		perr.Code = llmprovider.ErrorCodeNetwork
		perr.Retryable = true
		perr.Err = llmprovider.ErrProviderUnavailable
		return perr
	}

	perr.StatusCode = apiErr.StatusCode
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		perr.Code = "authentication_error"
		perr.Err = llmprovider.ErrInvalidAPIKey
	case apiErr.StatusCode == http.StatusNotFound:
		perr.Code = "not_found_error"
		perr.Err = llmprovider.ErrInvalidModel
	case apiErr.StatusCode == http.StatusTooManyRequests:
		perr.Code = llmprovider.ErrorCodeRateLimited
		perr.Retryable = true
		perr.Err = llmprovider.ErrRateLimited
	case apiErr.StatusCode >= 500:
		perr.Code = llmprovider.ErrorCodeProviderUnavailable
		perr.Retryable = true
		perr.Err = llmprovider.ErrProviderUnavailable
	default:
		perr.Code = "invalid_request_error"
		perr.Err = llmprovider.ErrInvalidRequest
	}
	return fmt.Errorf("anthropic API call failed: %w", perr)
}

var _ llmprovider.Provider = (*Provider)(nil)
