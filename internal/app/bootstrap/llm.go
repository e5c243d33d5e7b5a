package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/conversation"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const (
	providerGemini  = "gemini"
	providerBedrock = "bedrock"
)

// BuildLLMClient wires the optional completion provider. A nil client means
// the assistant answers from its rule-based templates only. The returned
// closer is never nil.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, m *metrics.ClinicMetrics) (conversation.LLMClient, func(), error) {
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

	policy := ExternalPolicy(cfg)
	primary, closePrimary, err := buildProvider(ctx, cfg, cfg.LLMProvider)
	if err != nil {
		return nil, noop, fmt.Errorf("bootstrap: primary completion provider: %w", err)
	}
	if primary == nil {
		logger.Info("no completion provider configured; using rule-based replies")
		return nil, noop, nil
	}
	client := conversation.LLMClient(conversation.NewBoundedLLMClient(primary, policy, logger, m))

	closers := []func(){closePrimary}
	if name := cfg.FallbackLLMProvider; name != "" && name != cfg.LLMProvider {
		fallback, closeFallback, err := buildProvider(ctx, cfg, name)
		if err != nil {
			closePrimary()
			return nil, noop, fmt.Errorf("bootstrap: fallback completion provider: %w", err)
		}
		if fallback != nil {
			closers = append(closers, closeFallback)
			bounded := conversation.NewBoundedLLMClient(fallback, policy, logger, m)
			client = conversation.NewFallbackLLMClient(client, bounded, logger)
		}
	}

	logger.Info("completion provider configured", "provider", cfg.LLMProvider, "fallback", cfg.FallbackLLMProvider)
	return client, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func buildProvider(ctx context.Context, cfg *appconfig.Config, name string) (conversation.LLMClient, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return nil, noop, nil
	case providerGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, noop, fmt.Errorf("gemini selected but GEMINI_API_KEY is empty")
		}
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, noop, err
		}
		return client, func() { _ = client.Close() }, nil
	case providerBedrock:
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, noop, fmt.Errorf("bedrock selected but BEDROCK_MODEL_ID is empty")
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("load aws config: %w", err)
		}
		return conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown completion provider %q", name)
	}
}
