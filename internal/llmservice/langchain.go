package llmservice

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"document-qa/internal/config"
	"document-qa/internal/models"
	pkghttp "document-qa/pkg/http"
)

// LangchainGenerator sends the prompt through langchaingo's OpenAI client.
type LangchainGenerator struct {
	cfg config.LLMConfig
	llm *openai.LLM
}

func NewLangchainGenerator(cfg config.LLMConfig) (*LangchainGenerator, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(pkghttp.NewClient(
			pkghttp.WithRequestTimeout(cfg.Timeout),
			pkghttp.WithRequestLogging(),
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: init langchain openai client: %v", models.ErrInvalidConfiguration, err)
	}
	return &LangchainGenerator{cfg: cfg, llm: llm}, nil
}

func (g *LangchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msgContent := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	res, err := g.llm.GenerateContent(ctx, msgContent,
		llms.WithTemperature(g.cfg.Temperature),
		llms.WithMaxTokens(g.cfg.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstreamFailure, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", models.ErrUpstreamFailure)
	}
	if res.Choices[0].Content == "" {
		return "", fmt.Errorf("%w: empty completion (stop reason %q)", models.ErrUpstreamFailure, res.Choices[0].StopReason)
	}
	return res.Choices[0].Content, nil
}
