// Package memory holds the in-memory vector index. The index is built once
// at startup from the ingested chunks and is immutable afterwards, so
// concurrent searches need no locking. Rebuilding means discarding the
// index and constructing a new one.
package memory

import (
	"errors"
	"sort"

	"solagent/internal/domain"
)

var _ domain.Index = (*Index)(nil)

// Index is a brute-force cosine-distance index over embedded chunks.
// Vectors are assumed L2-normalised, so distance is 1 - dot.
type Index struct {
	dimension int
	chunks    []domain.EmbeddedChunk
}

// Build pairs each chunk with its vector and constructs the index. All
// vectors must share one dimensionality.
func Build(chunks []domain.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.New("chunks and vectors length mismatch")
	}
	ix := &Index{}
	if len(vectors) > 0 {
		ix.dimension = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != ix.dimension {
			return nil, errors.New("vector dimension mismatch")
		}
		ix.chunks = append(ix.chunks, domain.EmbeddedChunk{Chunk: chunks[i], Vector: v})
	}
	return ix, nil
}

// Search ranks all stored vectors against the query vector and returns the
// topK closest, best (lowest distance) first.
func (ix *Index) Search(vector []float32, topK int) []domain.SearchResult {
	if topK <= 0 {
		topK = 5
	}
	results := make([]domain.SearchResult, 0, len(ix.chunks))
	for _, ec := range ix.chunks {
		results = append(results, domain.SearchResult{
			Score: 1 - dot(ec.Vector, vector),
			Chunk: ec,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Dimension returns the vector dimensionality of the index.
func (ix *Index) Dimension() int { return ix.dimension }

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
