package rag

import (
	"context"
	"fmt"
)

// DefaultRetriever implements Retriever by combining an Embedder and a
// VectorStore: it embeds the question at retrieval time and delegates the
// similarity search to the store.
type DefaultRetriever struct {
	// embedder converts the question into a query vector.
	embedder Embedder

	// store performs the vector similarity search.
	store VectorStore

	// defaultTopK is used when the caller passes topK <= 0.
	defaultTopK int
}

// NewRetriever constructs a DefaultRetriever. defaultTopK is the fallback
// result count when Retrieve is called with topK <= 0; it defaults to 5.
func NewRetriever(embedder Embedder, store VectorStore, defaultTopK int) (*DefaultRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("rag: store must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &DefaultRetriever{
		embedder:    embedder,
		store:       store,
		defaultTopK: defaultTopK,
	}, nil
}

// Retrieve embeds the question and returns the best matches.
//
// minScore is applied after ranking: the store first produces the topK
// candidates, then those scoring below the threshold are dropped. The result
// may therefore be shorter than topK, never longer, and an empty result is
// success rather than an error. Any minScore <= 0 means no filtering (the
// configured default is 0); cosine scores below zero rank so far from the
// question that a negative floor is treated as no floor at all.
func (r *DefaultRetriever) Retrieve(ctx context.Context, question string, topK int, minScore float32) ([]Match, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	n, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("rag: counting documents: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("rag: %w", ErrEmptyIndex)
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, &EmbeddingError{Op: "embed query", Err: err}
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, &EmbeddingError{Op: "embed query", Err: fmt.Errorf("embedder returned no vector")}
	}

	matches, err := r.store.Search(ctx, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}

	if minScore <= 0 {
		return matches, nil
	}

	filtered := matches[:0:0]
	for _, m := range matches {
		if m.Score >= minScore {
			filtered = append(filtered, m)
		}
	}
	// Ranks stay dense after filtering.
	for i := range filtered {
		filtered[i].Rank = i + 1
	}
	return filtered, nil
}
