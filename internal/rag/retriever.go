package rag

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/embeddings"

	"document-qa/internal/config"
	"document-qa/internal/index"
	"document-qa/internal/models"
)

// Retriever selects the context for a query. It never fails: anything that
// goes wrong results in an empty context.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) string
}

var (
	_ Retriever = (*VectorRetriever)(nil)
	_ Retriever = (*KeywordRetriever)(nil)
)

// VectorRetriever ranks chunks by Euclidean distance between the query
// embedding and the chunk embeddings held in idx.
type VectorRetriever struct {
	chunks   []models.Chunk
	embedder embeddings.Embedder
	idx      index.Index
	// queries memoizes query embeddings; nil when disabled.
	queries *cache.Cache
}

// NewVectorRetriever expects idx to have been built from the same embedder,
// with entry i holding the embedding of chunks[i]. A nil idx is allowed.
func NewVectorRetriever(chunks []models.Chunk, embedder embeddings.Embedder, idx index.Index) *VectorRetriever {
	return &VectorRetriever{chunks: chunks, embedder: embedder, idx: idx}
}

// WithQueryCache keeps query embeddings for ttl. A non-positive ttl disables caching.
func (r *VectorRetriever) WithQueryCache(ttl time.Duration) *VectorRetriever {
	if ttl > 0 {
		r.queries = cache.New(ttl, 2*ttl)
	}
	return r
}

func (r *VectorRetriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if r.queries != nil {
		if v, ok := r.queries.Get(query); ok {
			return v.([]float32), nil
		}
	}
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if r.queries != nil {
		r.queries.SetDefault(query, vector)
	}
	return vector, nil
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, topK int) string {
	if r.idx == nil || r.idx.Len() == 0 || r.embedder == nil {
		return ""
	}
	topK = normalizeTopK(topK)
	logger := zerolog.Ctx(ctx)

	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to embed query, continuing without context")
		return ""
	}

	matches, err := r.idx.Search(ctx, vector, topK)
	if err != nil {
		logger.Warn().Err(err).Msg("Similarity search failed, continuing without context")
		return ""
	}

	selected := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Index < 0 || m.Index >= len(r.chunks) {
			continue
		}
		selected = append(selected, r.chunks[m.Index].Content)
	}
	logger.Debug().Int("matches", len(selected)).Msg("Vector retrieval")
	return strings.Join(selected, models.ContextSeparator)
}

// KeywordRetriever returns chunks containing the query as a case-insensitive
// substring, in document order.
type KeywordRetriever struct {
	chunks  []models.Chunk
	lowered []string
}

func NewKeywordRetriever(chunks []models.Chunk) *KeywordRetriever {
	lowered := make([]string, len(chunks))
	for i, c := range chunks {
		lowered[i] = strings.ToLower(c.Content)
	}
	return &KeywordRetriever{chunks: chunks, lowered: lowered}
}

func (r *KeywordRetriever) Retrieve(ctx context.Context, query string, topK int) string {
	// An empty needle would match every chunk.
	if strings.TrimSpace(query) == "" {
		return ""
	}
	topK = normalizeTopK(topK)
	needle := strings.ToLower(query)

	var selected []string
	for i, text := range r.lowered {
		if len(selected) == topK {
			break
		}
		if strings.Contains(text, needle) {
			selected = append(selected, r.chunks[i].Content)
		}
	}
	zerolog.Ctx(ctx).Debug().Int("matches", len(selected)).Msg("Keyword retrieval")
	return strings.Join(selected, models.ContextSeparator)
}

func normalizeTopK(topK int) int {
	if topK <= 0 {
		return config.DefaultTopK
	}
	return topK
}
