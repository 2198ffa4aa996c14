package builder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/embeddings"

	"document-qa/internal/api"
	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/llmservice"
	"document-qa/internal/models"
	"document-qa/internal/rag"
)

const serviceName = "Document QA API"

// Build wires config, logging, the query service and the HTTP server.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := SetupLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	ctx = logger.WithContext(ctx)

	logger.Info().
		Str("server_addr", cfg.Server.Addr).
		Str("document", cfg.Document.Path).
		Str("strategy", cfg.RAG.Strategy).
		Str("llm_provider", cfg.LLM.Provider).
		Str("llm_model", cfg.LLM.Model).
		Msg("Building application")

	completer, err := llmservice.NewFromConfig(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("setup completion client: %w", err)
	}

	var embedder embeddings.Embedder
	if cfg.RAG.Strategy == models.StrategyVector {
		embedder, err = embedding.NewEmbedder(cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("setup embedder: %w", err)
		}
	}

	service, err := rag.Build(ctx, rag.Options{
		DocumentPath:  cfg.Document.Path,
		Strategy:      cfg.RAG.Strategy,
		ChunkSize:     cfg.RAG.ChunkSize,
		TopK:          cfg.RAG.TopK,
		Domain:        cfg.RAG.Domain,
		IndexType:     cfg.Index.Type,
		QueryCacheTTL: cfg.RAG.QueryCacheTTL,
		Embedder:      embedder,
		Completer:     completer,
	})
	if err != nil {
		return nil, fmt.Errorf("build query service: %w", err)
	}

	handler := api.NewHandler(service, serviceName)
	router := api.SetupRouter(handler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.WriteTimeout,
	}

	logger.Info().Int("chunks", len(service.Chunks())).Msg("Application built successfully")
	return &App{server: server, logger: logger}, nil
}

// NewApp wraps an already configured server, mainly for tests.
func NewApp(server *http.Server, logger zerolog.Logger) *App {
	return &App{server: server, logger: logger}
}
