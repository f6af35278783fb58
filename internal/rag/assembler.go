// Package rag assembles retrieval context for a user query: it searches the
// vector index, keeps only relevant results within a character budget, and
// prepends the surviving chunks with source attribution to the query.
package rag

import (
	"context"
	"fmt"
	"strings"

	"solagent/internal/domain"
)

const separator = "\n\n---\n\n"

const contextPreamble = "You have access to the following relevant documentation:"

// Assembler turns a free-text query into a context-enriched prompt.
type Assembler struct {
	embedder        domain.Embedder
	index           domain.Index
	sampleCount     int
	threshold       float64
	maxContextChars int
}

// New creates an Assembler. sampleCount is how many candidates to pull from
// the index, threshold is the cosine-distance cutoff (results at or beyond
// it are discarded) and maxContextChars bounds the total admitted text.
func New(embedder domain.Embedder, index domain.Index, sampleCount int, threshold float64, maxContextChars int) *Assembler {
	return &Assembler{
		embedder:        embedder,
		index:           index,
		sampleCount:     sampleCount,
		threshold:       threshold,
		maxContextChars: maxContextChars,
	}
}

// Augment returns the query wrapped with retrieved context, or the query
// unchanged when nothing relevant is found. Embedding or search failures
// return a RetrievalError; callers degrade to the raw query.
func (a *Assembler) Augment(ctx context.Context, query string) (string, error) {
	vector, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return "", &domain.RetrievalError{Err: err}
	}
	results := a.index.Search(vector, a.sampleCount)
	if len(results) == 0 {
		return query, nil
	}

	var parts []string
	total := 0
	for _, r := range results {
		if r.Score >= a.threshold {
			continue
		}
		text := r.Chunk.Chunk.Text
		// Greedy fill in ranked order: stop at the first chunk that
		// would overflow the budget, do not skip ahead.
		if total+len(text) > a.maxContextChars {
			break
		}
		total += len(text)
		parts = append(parts, fmt.Sprintf("Source: %s\nContent: %s", r.Chunk.Chunk.SourceName, text))
	}
	if len(parts) == 0 {
		return query, nil
	}

	return fmt.Sprintf("%s\n\n%s%sUser: %s", contextPreamble, strings.Join(parts, separator), separator, query), nil
}
