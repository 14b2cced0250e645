package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	llmprovider "github.com/haowjy/meridian-status-go"
	"github.com/haowjy/meridian-status-go/providers/bedrock"
)

// Provider kinds accepted in the config file.
const (
	providerAuto      = "auto"
	providerBedrock   = "bedrock"
	providerAnthropic = "anthropic"
	providerLorem     = "lorem"
)

// defaultModel is the model the form was first built against. Claude 3 ids are
// routed to the Messages API by the auto provider.
const defaultModel = "anthropic.claude-3-sonnet-20240229-v1:0"

// config is the statusreport.yaml file after environment overrides.
type config struct {
	Provider        string                    `yaml:"provider"`
	Model           string                    `yaml:"model"`
	Region          string                    `yaml:"region"`
	Endpoint        string                    `yaml:"endpoint"`
	ControlEndpoint string                    `yaml:"control_endpoint"`
	Params          llmprovider.RequestParams `yaml:"params"`
	LogLevel        string                    `yaml:"log_level"`

	// Capabilities optionally replaces the embedded model family table
	Capabilities string `yaml:"capabilities"`
}

// loadConfig reads path (if any) and applies STATUSREPORT_PROVIDER,
// STATUSREPORT_MODEL and AWS_REGION. A missing file is only an error when
// explicitly given.
func loadConfig(path string, explicit bool) (*config, error) {
	cfg := &config{Provider: providerAuto, Model: defaultModel}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("STATUSREPORT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("STATUSREPORT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Region = v
	}
	if cfg.Region == "" {
		cfg.Region = bedrock.DefaultRegion
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case "":
		cfg.Provider = providerAuto
	case providerAuto, providerBedrock, providerAnthropic, providerLorem:
	default:
		return nil, fmt.Errorf("unknown provider %q (want auto, bedrock, anthropic or lorem)", cfg.Provider)
	}
	if err := llmprovider.ValidateRequestParams(&cfg.Params); err != nil {
		return nil, fmt.Errorf("invalid params in config: %w", err)
	}

	if cfg.Capabilities != "" {
		if err := llmprovider.LoadCapabilitiesFromFile(cfg.Capabilities); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadDotEnv loads .env from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// newLogger writes text logs to w. debug forces the debug level; otherwise
// level ("debug", "info", "warn", "error") applies, defaulting to warn.
func newLogger(w io.Writer, debug bool, level string) *slog.Logger {
	lvl := slog.LevelWarn
	if level != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(level)); err == nil {
			lvl = parsed
		}
	}
	if debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
