package embedding

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
)

var _ embeddings.Embedder = (*TFIDF)(nil)

// TFIDF is a local embedder. EmbedDocuments fits the vocabulary and IDF
// weights on the given corpus; EmbedQuery reuses them, so queries and chunks
// share one vector space. Vectors are L2-normalized.
type TFIDF struct {
	mu           sync.RWMutex
	vocabulary   map[string]int
	idf          []float64
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewTFIDF creates an unfitted TF-IDF embedder.
func NewTFIDF() *TFIDF {
	return &TFIDF{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

// EmbedDocuments fits the embedder on texts and returns one vector per text.
func (e *TFIDF) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.fit(texts); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

// EmbedQuery embeds text in the vector space fitted by EmbedDocuments.
func (e *TFIDF) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.idf) == 0 {
		return nil, errors.New("tfidf embedder not fitted")
	}
	return e.vector(text), nil
}

// Dimension is the vocabulary size, zero before fitting.
func (e *TFIDF) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.idf)
}

func (e *TFIDF) fit(corpus []string) error {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Stable ordering for the vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// smoothed IDF
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return nil
}

// vector expects e.mu to be held.
func (e *TFIDF) vector(text string) []float32 {
	vec := make([]float32, len(e.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	weights := make(map[int]float64, len(tf))
	norm := 0.0
	for idx, count := range tf {
		w := float64(count) / float64(total) * e.idf[idx]
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx, w := range weights {
		vec[idx] = float32(w / norm)
	}
	return vec
}

func (e *TFIDF) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "what", "how", "does", "do",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
