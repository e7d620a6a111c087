package generate

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/letterloop/letterloop/internal/interview"
)

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// Gemini generates turns with the Gemini API.
type Gemini struct {
	cfg    Config
	client *genai.Client
}

// GeminiOption adjusts the client configuration, e.g. to point it at a
// different endpoint.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL sends requests to url instead of the public endpoint.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = url
	}
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, cfg Config, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	cfg = withDefaults(cfg)
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{cfg: cfg, client: client}, nil
}

// Generate implements interview.Generator.
func (g *Gemini) Generate(ctx context.Context, req interview.GenerateRequest) (string, error) {
	system, err := SystemPrompt(req, g.cfg.MaxFollowUps)
	if err != nil {
		return "", err
	}

	msgs := conversation(req.Messages)
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := geminiRoleUser
		if m.Role == interview.RoleAssistant {
			role = geminiRoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.cfg.MaxTokens),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	return withRetry(ctx, g.cfg.MaxRetries, g.cfg.RetryBaseDelay, func(ctx context.Context) (string, error) {
		result, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
		if err != nil {
			return "", geminiError(err)
		}
		if result == nil {
			return "", errors.New("empty response from gemini")
		}
		return result.Text(), nil
	})
}

func geminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &interview.StatusError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini request: %w", err)
}
