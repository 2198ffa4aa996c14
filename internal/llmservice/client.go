package llmservice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"document-qa/internal/config"
	"document-qa/internal/models"
)

// Generator performs one completion request and reports failures as errors.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client applies the error-as-answer policy on top of a Generator: every
// failure becomes a descriptive answer string.
type Client struct {
	generator Generator
}

func NewClient(generator Generator) *Client {
	return &Client{generator: generator}
}

// NewFromConfig builds the Client for the configured provider.
func NewFromConfig(cfg config.LLMConfig) (*Client, error) {
	switch cfg.Provider {
	case config.LLMProviderHTTP, "":
		return NewClient(NewHTTPGenerator(cfg)), nil
	case config.LLMProviderLangchain:
		g, err := NewLangchainGenerator(cfg)
		if err != nil {
			return nil, err
		}
		return NewClient(g), nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", models.ErrInvalidConfiguration, cfg.Provider)
	}
}

// Complete never fails: on error it returns "Error: <description>".
func (c *Client) Complete(ctx context.Context, prompt string) string {
	answer, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Completion failed")
		return models.ErrorAnswerPrefix + err.Error()
	}
	return answer
}
