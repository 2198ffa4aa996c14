package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var _ Index = (*Flat)(nil)

// Flat is an exact brute-force L2 index. It copies nothing after construction
// and is safe for concurrent searches.
type Flat struct {
	dimension int
	vectors   [][]float32
}

// NewFlat builds an index over vectors. Every vector must have the same,
// non-zero dimension.
func NewFlat(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return &Flat{}, nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("invalid dimension")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, index dimension is %d", i, len(v), dim)
		}
	}
	return &Flat{dimension: dim, vectors: vectors}, nil
}

func (f *Flat) Len() int { return len(f.vectors) }

func (f *Flat) Dimension() int { return f.dimension }

func (f *Flat) Search(_ context.Context, query []float32, k int) ([]Match, error) {
	if len(f.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), f.dimension)
	}

	matches := make([]Match, len(f.vectors))
	for i, v := range f.vectors {
		matches[i] = Match{Index: i, Distance: l2(v, query)}
	}
	sortMatches(matches)
	return matches[:min(k, len(matches))], nil
}

func l2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// sortMatches orders by distance, then by chunk index.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Index < matches[j].Index
	})
}

// SortMatches exposes the canonical ordering to other Index implementations.
func SortMatches(matches []Match) { sortMatches(matches) }
