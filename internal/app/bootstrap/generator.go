package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/PrathamRathore123/Whatsapp-Bot/internal/config"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/llm"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// ErrNoProviders means LLM_PROVIDER_ORDER produced an empty chain.
var ErrNoProviders = errors.New("bootstrap: no llm providers configured")

// BuildGenerator builds the provider chain in LLM_PROVIDER_ORDER, skipping
// providers whose credentials are missing. The returned cleanup releases
// provider clients and is never nil.
func BuildGenerator(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, recorder llm.AttemptRecorder) (*llm.Chain, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		providers []llm.Provider
		closers   []func() error
	)
	for _, name := range cfg.LLMProviderOrder {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				logger.Warn("gemini skipped", "reason", "GEMINI_API_KEY missing")
				continue
			}
			g, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Warn("gemini skipped", "error", err)
				continue
			}
			providers = append(providers, g)
			closers = append(closers, g.Close)
		case "groq":
			if cfg.GroqAPIKey == "" {
				logger.Warn("groq skipped", "reason", "GROQ_API_KEY missing")
				continue
			}
			g, err := llm.NewGroq(llm.GroqConfig{APIKey: cfg.GroqAPIKey, Model: cfg.GroqModel, BaseURL: cfg.GroqBaseURL})
			if err != nil {
				logger.Warn("groq skipped", "error", err)
				continue
			}
			providers = append(providers, g)
		case "ollama":
			providers = append(providers, llm.NewOllama(llm.OllamaConfig{Host: cfg.OllamaHost, Model: cfg.OllamaModel}))
		case "bedrock":
			p, err := buildBedrock(ctx, cfg)
			if err != nil {
				logger.Warn("bedrock skipped", "error", err)
				continue
			}
			providers = append(providers, p)
		default:
			logger.Warn("unknown llm provider ignored", "provider", name)
		}
	}

	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("llm provider close failed", "error", err)
			}
		}
	}
	if len(providers) == 0 {
		cleanup()
		return nil, noop, ErrNoProviders
	}

	opts := []llm.ChainOption{llm.WithCallTimeout(cfg.LLMTimeout)}
	if recorder != nil {
		opts = append(opts, llm.WithRecorder(recorder))
	}
	chain := llm.NewChain(logger, providers, opts...)
	logger.Info("llm chain ready", "providers", chain.Providers())
	return chain, cleanup, nil
}

func buildBedrock(ctx context.Context, cfg *appconfig.Config) (*llm.Bedrock, error) {
	model := strings.TrimSpace(cfg.BedrockModelID)
	if model == "" {
		return nil, errors.New("BEDROCK_MODEL_ID missing")
	}
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return llm.NewBedrock(bedrockruntime.NewFromConfig(awsCfg), model)
}
