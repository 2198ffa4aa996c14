package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/embeddings"

	"document-qa/internal/chromemdb"
	"document-qa/internal/config"
	"document-qa/internal/index"
	"document-qa/internal/models"
	"document-qa/internal/parser"
)

// Completer turns a prompt into an answer. Failures are reported in the
// returned text, never as an error.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// Options describe everything the service needs at startup.
type Options struct {
	DocumentPath string
	Strategy     string
	ChunkSize    int
	TopK         int
	Domain       string
	// IndexType selects the similarity index for the vector strategy.
	IndexType string
	// QueryCacheTTL keeps query embeddings for repeated questions; zero disables it.
	QueryCacheTTL time.Duration
	Embedder      embeddings.Embedder
	Completer     Completer
}

// Service answers questions about one document. All of its state is built
// by Build and read-only afterwards, so Ask is safe for concurrent use.
type Service struct {
	strategy  string
	topK      int
	chunks    []models.Chunk
	retriever Retriever
	composer  Composer
	completer Completer
}

// Build loads and segments the document and, for the vector strategy,
// embeds every chunk and builds the similarity index. A missing document is
// not an error: the service starts with no chunks.
func Build(ctx context.Context, opts Options) (*Service, error) {
	logger := zerolog.Ctx(ctx)

	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidConfiguration, opts.ChunkSize)
	}
	if opts.TopK <= 0 {
		opts.TopK = config.DefaultTopK
	}
	if opts.Completer == nil {
		return nil, fmt.Errorf("%w: completer is required", models.ErrInvalidConfiguration)
	}

	start := time.Now()
	document, err := parser.LoadDocument(opts.DocumentPath)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDocumentNotFound):
		logger.Warn().Str("path", opts.DocumentPath).Msg("Document not found, serving with empty context")
	default:
		return nil, fmt.Errorf("load document: %w", err)
	}

	chunks, err := parser.Segment(document, opts.ChunkSize)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("path", opts.DocumentPath).
		Int("characters", len([]rune(document))).
		Int("chunks", len(chunks)).
		Msg("Document segmented")

	var retriever Retriever
	switch opts.Strategy {
	case models.StrategyVector:
		retriever, err = buildVectorRetriever(ctx, chunks, opts)
		if err != nil {
			return nil, err
		}
	case models.StrategyKeyword:
		retriever = NewKeywordRetriever(chunks)
	default:
		return nil, fmt.Errorf("%w: unknown retrieval strategy %q", models.ErrInvalidConfiguration, opts.Strategy)
	}

	logger.Info().
		Str("strategy", opts.Strategy).
		Dur("elapsed", time.Since(start)).
		Msg("Query service ready")

	return &Service{
		strategy:  opts.Strategy,
		topK:      opts.TopK,
		chunks:    chunks,
		retriever: retriever,
		composer:  NewComposer(opts.Domain),
		completer: opts.Completer,
	}, nil
}

func buildVectorRetriever(ctx context.Context, chunks []models.Chunk, opts Options) (*VectorRetriever, error) {
	if opts.Embedder == nil {
		return nil, fmt.Errorf("%w: vector strategy needs an embedder", models.ErrInvalidConfiguration)
	}
	if len(chunks) == 0 {
		return NewVectorRetriever(chunks, opts.Embedder, nil), nil
	}

	vectors, err := opts.Embedder.EmbedDocuments(ctx, parser.Contents(chunks))
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	var idx index.Index
	switch opts.IndexType {
	case config.IndexChromem:
		idx, err = chromemdb.NewVectorDBManager(ctx, chunks, vectors)
	case config.IndexFlat, "":
		idx, err = index.NewFlat(vectors)
	default:
		err = fmt.Errorf("%w: unknown index type %q", models.ErrInvalidConfiguration, opts.IndexType)
	}
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("index", opts.IndexType).
		Int("vectors", idx.Len()).
		Int("dimension", idx.Dimension()).
		Msg("Similarity index built")
	return NewVectorRetriever(chunks, opts.Embedder, idx).WithQueryCache(opts.QueryCacheTTL), nil
}

// Ask answers question using the retrieved context. Upstream failures are
// part of the answer; only an invalid request or an unbuilt service error.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if s == nil || s.retriever == nil || s.completer == nil {
		return "", models.ErrNotReady
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question must not be empty", models.ErrInvalidRequest)
	}

	contextText := s.retriever.Retrieve(ctx, question, s.topK)
	prompt := s.composer.Compose(question, contextText)
	return s.completer.Complete(ctx, prompt), nil
}

// Chunks returns the chunk collection built at startup.
func (s *Service) Chunks() []models.Chunk { return s.chunks }

func (s *Service) Strategy() string { return s.strategy }
