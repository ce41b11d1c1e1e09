package llm

import (
	"fmt"

	"pulse_server/config"
	"pulse_server/core/port/out"
)

var (
	_ out.TextGenerator = (*Client)(nil)
	_ out.TextGenerator = (*AnthropicClient)(nil)
)

// NewFromConfig builds the configured provider. It returns (nil, nil) when no
// API key is set; callers then classify with the keyword fallback only.
func NewFromConfig(cfg *config.Config) (out.TextGenerator, error) {
	key := cfg.LLMAPIKey()
	if key == "" {
		return nil, nil
	}
	cc := ClientConfig{
		APIKey:      key,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	}
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewClientWithConfig(cc), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cc), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.LLMProvider)
	}
}
