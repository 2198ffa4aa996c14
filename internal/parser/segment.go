package parser

import (
	"fmt"

	"document-qa/internal/models"
)

// Segment splits document into consecutive chunks of exactly chunkSize
// characters (runes); only the last chunk may be shorter. Chunks do not
// overlap and are neither trimmed nor normalized, so joining them in order
// gives back the document.
func Segment(document string, chunkSize int) ([]models.Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidConfiguration, chunkSize)
	}
	if document == "" {
		return nil, nil
	}

	runes := []rune(document)
	chunks := make([]models.Chunk, 0, (len(runes)+chunkSize-1)/chunkSize)
	for start := 0; start < len(runes); start += chunkSize {
		end := min(start+chunkSize, len(runes))
		chunks = append(chunks, models.Chunk{
			Index:   len(chunks),
			Content: string(runes[start:end]),
		})
	}
	return chunks, nil
}

// Contents returns the chunk texts in collection order.
func Contents(chunks []models.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}
