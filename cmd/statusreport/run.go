package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	llmprovider "github.com/haowjy/meridian-status-go"
	"github.com/haowjy/meridian-status-go/providers/bedrock"
	"github.com/haowjy/meridian-status-go/statusreport"
)

// setup loads .env and the config file and builds the logger.
func setup(g globals, stderr io.Writer) (*config, *slog.Logger, error) {
	if err := loadDotEnv(); err != nil {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := loadConfig(g.configPath, g.configExplicit)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(stderr, g.debug, cfg.LogLevel)
	logger.Debug("config loaded", "provider", cfg.Provider, "model", cfg.Model, "region", cfg.Region)
	return cfg, logger, nil
}

func runGenerate(ctx context.Context, c cmdGenerate, g globals, stdout, stderr io.Writer) error {
	cfg, logger, err := setup(g, stderr)
	if err != nil {
		return err
	}
	if c.Model != "" {
		cfg.Model = c.Model
	}

	var report *statusreport.Report
	if c.Report != "" {
		report, err = statusreport.LoadReport(c.Report)
	} else {
		report, err = collectReport()
	}
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug("provider selected", "provider", provider.Name(), "model", cfg.Model)

	gen := statusreport.NewGenerator(provider, statusreport.GeneratorConfig{
		Model:  cfg.Model,
		Params: &cfg.Params,
		Logger: logger,
	})
	summary, err := gen.Generate(ctx, report)
	if err != nil {
		logger.Debug("generate failed", "error", err)
		return err
	}
	if summary.Empty {
		return llmprovider.ErrMissingCompletion
	}

	printSummary(stdout, report, summary, c.Raw)
	return nil
}

func runInvoke(ctx context.Context, c cmdInvoke, g globals, stdout, stderr io.Writer) error {
	cfg, logger, err := setup(g, stderr)
	if err != nil {
		return err
	}
	if c.Model != "" {
		cfg.Model = c.Model
	}

	client, err := newBedrockClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	family := client.Family(cfg.Model)
	params := cfg.Params.WithDefaults(&family.Defaults)
	parameters := family.RequestFields(params)
	if family.API != llmprovider.APITextCompletion {
		logger.Warn("typed params dropped: the model family has no text-completion parameter keys",
			"model", cfg.Model, "family", family.Name)
	}
	checked := *params
	checked.Extra = make(map[string]any, len(params.Extra)+len(c.Param))
	for k, v := range params.Extra {
		checked.Extra[k] = v
	}
	for k, v := range c.Param {
		parameters[k] = parseScalar(v)
		checked.Extra[k] = parameters[k]
	}

	prompt := c.Prompt
	if c.Wrap {
		prompt = statusreport.HumanPrefix + strings.TrimSpace(prompt) + statusreport.AssistantSuffix
	}
	provider := client.Name().String()
	llmprovider.LogWarnings(ctx, logger, provider, llmprovider.GetValidationEngine().Validate(provider, &llmprovider.GenerateRequest{
		Prompt: prompt,
		Model:  cfg.Model,
		Params: &checked,
	}))

	body, err := client.BuildRequestBody(prompt, parameters)
	if err != nil {
		return err
	}
	logger.Debug("invoking", "model", client.Model(), "body_bytes", len(body))

	text, err := client.Invoke(ctx, body)
	if err != nil {
		return err
	}
	if text == nil {
		return llmprovider.ErrMissingCompletion
	}
	_, _ = fmt.Fprintln(stdout, *text)
	return nil
}

func runModels(ctx context.Context, c cmdModels, g globals, stdout, stderr io.Writer) error {
	cfg, logger, err := setup(g, stderr)
	if err != nil {
		return err
	}
	client, err := newBedrockClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	filter := bedrock.ModelFilter{ByProvider: c.Vendor}
	if !c.All {
		filter.ByOutputModality = llmprovider.ModalityText
	}
	models, err := client.ListFoundationModels(ctx, filter)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return errors.New("no foundation models matched")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("MODEL ID", "PROVIDER", "FAMILY", "STATUS")
	for _, m := range models {
		family := "-"
		if f, ok := llmprovider.GetCapabilityRegistry().LookupFamily(llmprovider.ProviderBedrock.String(), m.ID); ok {
			family = f.Name
		}
		t.Row(m.ID, m.ProviderName, family, m.LifecycleStatus)
	}
	_, _ = fmt.Fprintln(stdout, t.String())
	return nil
}

// parseScalar reads a --param value as a YAML scalar so "0.5" is a number and
// "true" a bool. Anything that is not a scalar stays a string.
func parseScalar(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case int, float64, bool, string:
		return v
	default:
		return s
	}
}
