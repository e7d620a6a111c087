package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/letterloop/letterloop/internal/interview"
)

// OpenAI generates turns with the Responses API.
type OpenAI struct {
	cfg    Config
	model  string
	client openai.Client
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(cfg Config, apiKey string, opts ...option.RequestOption) *OpenAI {
	cfg = withDefaults(cfg)
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	return &OpenAI{
		cfg:    cfg,
		model:  cfg.Model,
		client: openai.NewClient(append(base, opts...)...),
	}
}

// Generate implements interview.Generator. The conversation is flattened
// into a single labelled input with the system prompt as instructions.
func (o *OpenAI) Generate(ctx context.Context, req interview.GenerateRequest) (string, error) {
	system, err := SystemPrompt(req, o.cfg.MaxFollowUps)
	if err != nil {
		return "", err
	}

	var input strings.Builder
	for _, m := range conversation(req.Messages) {
		label := "User"
		if m.Role == interview.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&input, "%s: %s\n\n", label, m.Content)
	}
	input.WriteString("Assistant:")

	params := responses.ResponseNewParams{
		Model:           o.model,
		Instructions:    openai.String(system),
		MaxOutputTokens: openai.Int(int64(o.cfg.MaxTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(input.String())},
	}

	return withRetry(ctx, o.cfg.MaxRetries, o.cfg.RetryBaseDelay, func(ctx context.Context) (string, error) {
		resp, err := o.client.Responses.New(ctx, params)
		if err != nil {
			return "", openaiError(err)
		}
		if resp == nil {
			return "", errors.New("empty response from openai")
		}
		return strings.TrimSpace(resp.OutputText()), nil
	})
}

func openaiError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.RawJSON())
		if msg == "" {
			msg = apiErr.Error()
		}
		return &interview.StatusError{StatusCode: apiErr.StatusCode, Message: msg}
	}
	return fmt.Errorf("openai request: %w", err)
}
