package chromemdb

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"document-qa/internal/index"
	"document-qa/internal/models"
)

const collectionName = "chunks"

var _ index.Index = (*VectorDBManager)(nil)

// VectorDBManager keeps the chunk embeddings in an in-memory chromem-go
// collection. chromem ranks by cosine similarity on normalized vectors, which
// orders results the same way as Euclidean distance between those normalized
// vectors; Search reports that distance.
type VectorDBManager struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimension  int
}

// NewVectorDBManager creates the collection and adds one document per chunk,
// using vectors[i] as the embedding of chunks[i].
func NewVectorDBManager(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (*VectorDBManager, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}

	db := chromem.NewDB()
	// Embeddings are always supplied, so the collection never calls an embedding func.
	c, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	m := &VectorDBManager{db: db, collection: c}
	if len(chunks) == 0 {
		return m, nil
	}

	m.dimension = len(vectors[0])
	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		if len(vectors[i]) != m.dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, index dimension is %d", i, len(vectors[i]), m.dimension)
		}
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(chunk.Index),
			Content:   chunk.Content,
			Metadata:  map[string]string{"index": strconv.Itoa(chunk.Index)},
			Embedding: vectors[i],
		}
	}

	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}
	log.Debug().Int("documents", c.Count()).Int("dimension", m.dimension).Msg("Built chromem collection")
	return m, nil
}

func (m *VectorDBManager) Len() int { return m.collection.Count() }

func (m *VectorDBManager) Dimension() int { return m.dimension }

func (m *VectorDBManager) Search(ctx context.Context, query []float32, k int) ([]index.Match, error) {
	count := m.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != m.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), m.dimension)
	}

	results, err := m.collection.QueryEmbedding(ctx, query, min(k, count), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	matches := make([]index.Match, 0, len(results))
	for _, r := range results {
		idx, err := strconv.Atoi(r.ID)
		if err != nil {
			return nil, fmt.Errorf("unexpected document id %q: %w", r.ID, err)
		}
		matches = append(matches, index.Match{Index: idx, Distance: cosineToL2(r.Similarity)})
	}
	index.SortMatches(matches)
	return matches, nil
}

// cosineToL2 converts cosine similarity of unit vectors to their Euclidean distance.
func cosineToL2(similarity float32) float32 {
	return float32(math.Sqrt(math.Max(0, 2-2*float64(similarity))))
}
