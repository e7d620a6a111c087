// Package generate adapts text-generation providers to the interview engine.
// Every backend satisfies interview.Generator.
package generate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/letterloop/letterloop/internal/interview"
)

// Provider names accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOpenAIModel    = "gpt-4.1-mini"
)

// Config selects and tunes a backend.
type Config struct {
	Provider string
	Model    string

	// APIKey overrides the provider's environment variable.
	APIKey string

	MaxTokens int

	// Retry settings for transient failures (429, 5xx, timeouts).
	MaxRetries     int
	RetryBaseDelay time.Duration

	// MaxFollowUps is quoted in the interview prompt.
	MaxFollowUps int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderAnthropic,
		MaxTokens:      1000,
		MaxRetries:     0,
		RetryBaseDelay: time.Second,
		MaxFollowUps:   interview.DefaultMaxFollowUps,
	}
}

// New builds the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (interview.Generator, error) {
	cfg = withDefaults(cfg)
	switch cfg.Provider {
	case ProviderAnthropic:
		key, err := apiKey(cfg, "ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewAnthropic(cfg, key), nil
	case ProviderGemini:
		key, err := apiKey(cfg, "GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewGemini(ctx, cfg, key)
	case ProviderOpenAI:
		key, err := apiKey(cfg, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewOpenAI(cfg, key), nil
	case ProviderMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Provider == "" {
		cfg.Provider = def.Provider
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = def.RetryBaseDelay
	}
	if cfg.MaxFollowUps <= 0 {
		cfg.MaxFollowUps = def.MaxFollowUps
	}
	return cfg
}

func apiKey(cfg Config, env string) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if key := os.Getenv(env); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s is not configured", env)
}
