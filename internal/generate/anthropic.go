package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/letterloop/letterloop/internal/interview"
)

// Anthropic generates turns with the Claude Messages API.
type Anthropic struct {
	cfg    Config
	client anthropic.Client
}

// NewAnthropic creates a Claude backend. Extra options are passed to the SDK
// client after the defaults.
func NewAnthropic(cfg Config, apiKey string, opts ...option.RequestOption) *Anthropic {
	cfg = withDefaults(cfg)
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	// Retries are handled by withRetry so the policy matches every provider.
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	return &Anthropic{
		cfg:    cfg,
		client: anthropic.NewClient(append(base, opts...)...),
	}
}

// Generate implements interview.Generator.
func (a *Anthropic) Generate(ctx context.Context, req interview.GenerateRequest) (string, error) {
	system, err := SystemPrompt(req, a.cfg.MaxFollowUps)
	if err != nil {
		return "", err
	}

	msgs := conversation(req.Messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: int64(a.cfg.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  make([]anthropic.MessageParam, 0, len(msgs)),
	}
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == interview.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	return withRetry(ctx, a.cfg.MaxRetries, a.cfg.RetryBaseDelay, func(ctx context.Context) (string, error) {
		resp, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return "", anthropicError(err)
		}

		var out strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				out.WriteString(block.Text)
			}
		}
		return out.String(), nil
	})
}

func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.RawJSON())
		if msg == "" {
			msg = apiErr.Error()
		}
		return &interview.StatusError{StatusCode: apiErr.StatusCode, Message: msg}
	}
	return fmt.Errorf("anthropic request: %w", err)
}
