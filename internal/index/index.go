package index

import "context"

// Match is one nearest-neighbour hit: the position of the chunk in the chunk
// collection and its Euclidean distance to the query.
type Match struct {
	Index    int
	Distance float32
}

// Index is a read-only nearest-neighbour structure over chunk embeddings,
// built once at startup.
type Index interface {
	// Search returns at most k matches ordered by ascending distance, ties by
	// ascending chunk index.
	Search(ctx context.Context, query []float32, k int) ([]Match, error)
	Len() int
	Dimension() int
}
