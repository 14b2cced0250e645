package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	llmprovider "github.com/haowjy/meridian-status-go"
	"github.com/haowjy/meridian-status-go/providers/anthropic"
	"github.com/haowjy/meridian-status-go/providers/bedrock"
	"github.com/haowjy/meridian-status-go/providers/lorem"
)

// resolveProvider picks the provider kind for model. "auto" sends lorem-*
// models to the lorem provider, Claude Messages models (Bedrock ids of the
// messages family or direct "claude-" ids) to anthropic, and everything else
// to the Bedrock text-completion client.
func resolveProvider(kind, model string) string {
	if kind != providerAuto {
		return kind
	}
	switch {
	case strings.HasPrefix(model, "lorem-"):
		return providerLorem
	case strings.HasPrefix(model, "claude-"):
		return providerAnthropic
	}
	family, known := llmprovider.GetCapabilityRegistry().LookupFamily(llmprovider.ProviderBedrock.String(), model)
	if known && family.API == llmprovider.APIMessages {
		return providerAnthropic
	}
	return providerBedrock
}

// newProvider builds the provider that serves cfg.Model.
func newProvider(ctx context.Context, cfg *config, logger *slog.Logger) (llmprovider.Provider, error) {
	switch resolveProvider(cfg.Provider, cfg.Model) {
	case providerLorem:
		return lorem.NewProvider(lorem.WithLogger(logger)), nil

	case providerAnthropic:
		var opts []anthropic.Option
		opts = append(opts, anthropic.WithLogger(logger))
		if cfg.Endpoint != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
		}
		if strings.HasPrefix(cfg.Model, "claude-") {
			return anthropic.NewProvider(os.Getenv("ANTHROPIC_API_KEY"), opts...)
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("cannot load AWS config: %w", err)
		}
		return anthropic.NewBedrockProvider(awsCfg, opts...), nil

	default:
		return newBedrockClient(ctx, cfg, logger)
	}
}

// newBedrockClient builds the text-completion client, also used for model listing.
func newBedrockClient(ctx context.Context, cfg *config, logger *slog.Logger) (*bedrock.Client, error) {
	return bedrock.NewClient(ctx, bedrock.Config{
		Region:          cfg.Region,
		RuntimeEndpoint: cfg.Endpoint,
		ControlEndpoint: cfg.ControlEndpoint,
		Logger:          logger,
		Model:           cfg.Model,
	})
}
