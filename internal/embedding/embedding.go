package embedding

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-qa/internal/config"
	"document-qa/internal/models"
)

// NewEmbedder builds the embedder named by cfg.Provider. The same instance
// must embed both the chunks and every query.
func NewEmbedder(cfg config.EmbeddingConfig) (embeddings.Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider": cfg.Provider,
		"base_url": cfg.BaseURL,
		"model":    cfg.Model,
	}).Msg("Creating embedder")

	switch cfg.Provider {
	case config.EmbeddingTFIDF:
		return NewTFIDF(), nil
	case config.EmbeddingOllama:
		return NewOllamaEmbedder(cfg)
	case config.EmbeddingOpenAI:
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrInvalidConfiguration, cfg.Provider)
	}
}

// NewOllamaEmbedder embeds through an Ollama server.
func NewOllamaEmbedder(cfg config.EmbeddingConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return embedder, nil
}

// NewOpenAIEmbedder embeds through any OpenAI-compatible /embeddings endpoint.
func NewOpenAIEmbedder(cfg config.EmbeddingConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init openai: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return embedder, nil
}
