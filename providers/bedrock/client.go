// Package bedrock is a minimal client for the AWS Bedrock text-completion API.
//
// A Client holds one model selection and a signed HTTP transport. Each
// Invoke is one synchronous InvokeModel round trip: no retries, no
// streaming, no caching.
//
//	client, err := bedrock.NewClient(ctx, bedrock.Config{Region: "us-west-2"})
//	client.SetModel("anthropic.claude-v2:1")
//	body, err := client.BuildRequestBody(prompt, map[string]any{
//		"max_tokens_to_sample": 1000,
//		"temperature":          0.1,
//	})
//	text, err := client.Invoke(ctx, body) // text is nil if no completion came back
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	llmprovider "github.com/haowjy/meridian-status-go"
)

// DefaultRegion is used when neither Config.Region nor the AWS config chain names one.
const DefaultRegion = "us-west-2"

// PromptKey is the reserved body key holding the prompt.
const PromptKey = "prompt"

// signingName is the SigV4 service name for both the runtime and control plane.
const signingName = "bedrock"

// Config is the explicit configuration for a Client.
// Zero values fall back to the AWS default credential chain and region.
type Config struct {
	// Region of the Bedrock endpoints (e.g. "us-west-2")
	Region string

	// Static credentials. When AccessKeyID is empty the default chain
	// (env, shared files, IRSA, instance role) is used.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Credentials overrides both static credentials and the default chain.
	Credentials aws.CredentialsProvider

	// RuntimeEndpoint overrides https://bedrock-runtime.{region}.amazonaws.com
	RuntimeEndpoint string

	// ControlEndpoint overrides https://bedrock.{region}.amazonaws.com
	ControlEndpoint string

	// HTTPClient defaults to a client with a 120s timeout
	HTTPClient *http.Client

	// Logger defaults to a discarding logger
	Logger *slog.Logger

	// Model is the initial model selection
	Model string

	// Registry resolves model families; defaults to the global registry
	Registry *llmprovider.CapabilityRegistry
}

// Client implements llmprovider.Provider on top of Bedrock InvokeModel.
type Client struct {
	credentials     aws.CredentialsProvider
	signer          *v4.Signer
	region          string
	runtimeEndpoint string
	controlEndpoint string
	httpClient      *http.Client
	logger          *slog.Logger
	registry        *llmprovider.CapabilityRegistry
	now             func() time.Time

	mu    sync.RWMutex
	model string
}

// NewClient resolves AWS configuration and returns a ready client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	switch {
	case cfg.Credentials != nil:
		opts = append(opts, config.WithCredentialsProvider(cfg.Credentials))
	case cfg.AccessKeyID != "":
		if cfg.SecretAccessKey == "" {
			return nil, fmt.Errorf("bedrock: access key id given without secret access key: %w", llmprovider.ErrInvalidAPIKey)
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot load AWS config: %w", err)
	}
	return newClient(awsCfg, cfg), nil
}

// NewClientFromAWSConfig builds a client from an already resolved aws.Config.
// Region and Credentials in cfg take precedence over awsCfg.
func NewClientFromAWSConfig(awsCfg aws.Config, cfg Config) *Client {
	if cfg.Credentials != nil {
		awsCfg.Credentials = cfg.Credentials
	}
	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	}
	return newClient(awsCfg, cfg)
}

func newClient(awsCfg aws.Config, cfg Config) *Client {
	region := awsCfg.Region
	if region == "" {
		region = DefaultRegion
	}

	c := &Client{
		credentials:     awsCfg.Credentials,
		signer:          v4.NewSigner(),
		region:          region,
		runtimeEndpoint: cfg.RuntimeEndpoint,
		controlEndpoint: cfg.ControlEndpoint,
		httpClient:      cfg.HTTPClient,
		logger:          cfg.Logger,
		registry:        cfg.Registry,
		now:             time.Now,
		model:           cfg.Model,
	}
	if c.runtimeEndpoint == "" {
		c.runtimeEndpoint = fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", region)
	}
	if c.controlEndpoint == "" {
		c.controlEndpoint = fmt.Sprintf("https://bedrock.%s.amazonaws.com", region)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.registry == nil {
		c.registry = llmprovider.GetCapabilityRegistry()
	}
	return c
}

// Name returns the provider identifier.
func (c *Client) Name() llmprovider.ProviderID {
	return llmprovider.ProviderBedrock
}

// Region returns the region requests are signed for.
func (c *Client) Region() string {
	return c.region
}

// SetModel records which model subsequent invocations target.
// The id is not validated locally; a bad id fails on the remote call.
func (c *Client) SetModel(modelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = modelID
}

// Model returns the current model selection.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SupportsModel returns true if the model resolves to a known text-completion family.
func (c *Client) SupportsModel(model string) bool {
	family, ok := c.registry.LookupFamily(c.Name().String(), model)
	return ok && family.API == llmprovider.APITextCompletion
}

// Family returns the wire schema of the given model.
func (c *Client) Family(model string) *llmprovider.ModelFamily {
	family, _ := c.registry.LookupFamily(c.Name().String(), model)
	return family
}

// BuildRequestBody merges prompt and parameters into one flat JSON object.
//
// The prompt goes under PromptKey. A parameter with the same key replaces
// the prompt; callers must avoid that key. Keys are emitted in sorted order
// so identical arguments give identical bytes.
func (c *Client) BuildRequestBody(prompt string, parameters map[string]any) ([]byte, error) {
	return buildBody(PromptKey, prompt, parameters)
}

// BuildRequest serializes a prompt with typed parameters using the wire keys
// of the currently selected model's family. Unset parameters take the
// family defaults.
func (c *Client) BuildRequest(prompt string, params *llmprovider.RequestParams) ([]byte, error) {
	return c.buildRequestFor(c.Model(), prompt, params)
}

func (c *Client) buildRequestFor(model, prompt string, params *llmprovider.RequestParams) ([]byte, error) {
	family := c.Family(model)
	params = params.WithDefaults(&family.Defaults)
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return nil, err
	}

	promptKey := family.PromptKey
	if promptKey == "" {
		promptKey = PromptKey
	}
	return buildBody(promptKey, prompt, family.RequestFields(params))
}

func buildBody(promptKey, prompt string, parameters map[string]any) ([]byte, error) {
	fields := make(map[string]any, len(parameters)+1)
	fields[promptKey] = prompt
	for k, v := range parameters {
		fields[k] = v
	}

	// encoding/json sorts map keys, which keeps the payload deterministic
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, &llmprovider.ValidationError{
			Field:  "parameters",
			Value:  parameters,
			Reason: err.Error(),
			Err:    llmprovider.ErrInvalidRequest,
		}
	}
	return body, nil
}

// Invoke sends requestBody to the selected model and returns the completion.
// The result is nil when the response has no completion field.
func (c *Client) Invoke(ctx context.Context, requestBody []byte) (*string, error) {
	resp, err := c.InvokeModel(ctx, requestBody)
	if err != nil {
		return nil, err
	}
	return resp.Text, nil
}

// InvokeModel is Invoke plus token usage and stop reason.
func (c *Client) InvokeModel(ctx context.Context, requestBody []byte) (*llmprovider.GenerateResponse, error) {
	return c.invoke(ctx, c.Model(), requestBody)
}

func (c *Client) invoke(ctx context.Context, model string, requestBody []byte) (*llmprovider.GenerateResponse, error) {
	if model == "" {
		return nil, llmprovider.ErrNoModel
	}

	start := c.now()
	raw, err := c.doInvoke(ctx, model, requestBody)
	if err != nil {
		c.logger.Debug("bedrock invoke failed", "model", model, "error", err)
		return nil, err
	}

	family := c.Family(model)
	completion, err := family.ParseCompletion(c.Name().String(), raw.body)
	if err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{}
	if raw.requestID != "" {
		metadata["request_id"] = raw.requestID
	}
	if raw.latency != "" {
		metadata["invocation_latency_ms"] = raw.latency
	}
	c.logger.Debug("bedrock invoke complete",
		"model", model,
		"family", family.Name,
		"has_completion", completion.Text != nil,
		"input_tokens", raw.inputTokens,
		"output_tokens", raw.outputTokens,
		"elapsed", c.now().Sub(start),
	)

	return &llmprovider.GenerateResponse{
		Text:             completion.Text,
		Model:            model,
		InputTokens:      raw.inputTokens,
		OutputTokens:     raw.outputTokens,
		StopReason:       completion.StopReason,
		ResponseMetadata: metadata,
	}, nil
}

// GenerateResponse implements llmprovider.Provider.
// A non-empty req.Model becomes the client's selection and is the model this
// call targets, whatever concurrent SetModel calls do afterwards.
func (c *Client) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	model := req.Model
	if model != "" {
		c.SetModel(model)
	} else {
		model = c.Model()
	}
	if model == "" {
		return nil, llmprovider.ErrNoModel
	}

	family := c.Family(model)
	if family.API != llmprovider.APITextCompletion {
		return nil, &llmprovider.ModelError{
			Model:    model,
			Provider: c.Name().String(),
			Reason:   fmt.Sprintf("model family %q uses the %s API; use the anthropic provider", family.Name, family.API),
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	body, err := c.buildRequestFor(model, req.Prompt, req.Params)
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, model, body)
}

var _ llmprovider.Provider = (*Client)(nil)
