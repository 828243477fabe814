package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-memory VectorStore using brute-force cosine similarity.
// Search is a linear scan, O(N*D) per query, acceptable for corpora of
// hundreds to low thousands of chunks. Reads are concurrency-safe; Add is
// expected to happen in a single-writer load phase but is guarded anyway.
type MemoryStore struct {
	// mu protects docs and ids.
	mu sync.RWMutex
	// docs holds documents in insertion order; that order breaks score ties.
	docs []Document
	// ids indexes document IDs for duplicate detection.
	ids map[string]int
	// dimension is the embedding length, fixed by the first Add.
	dimension int
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]int)}
}

// Add inserts a document. The first document fixes the store's embedding
// dimension; later documents must match it.
func (s *MemoryStore) Add(_ context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("memory store: empty document id: %w", ErrInvalidArgument)
	}
	if len(doc.Embedding) == 0 {
		return fmt.Errorf("memory store: document %q has no embedding: %w", doc.ID, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[doc.ID]; exists {
		return fmt.Errorf("memory store: id %q: %w", doc.ID, ErrDuplicateID)
	}
	if s.dimension == 0 {
		s.dimension = len(doc.Embedding)
	} else if len(doc.Embedding) != s.dimension {
		return fmt.Errorf("memory store: document %q embedding has dimension %d, store expects %d: %w",
			doc.ID, len(doc.Embedding), s.dimension, ErrInvalidArgument)
	}

	s.ids[doc.ID] = len(s.docs)
	s.docs = append(s.docs, doc)
	return nil
}

// Replace removes any existing document with the same ID and inserts doc at
// the end of the insertion order. Used by ingestion's overwrite policy.
func (s *MemoryStore) Replace(ctx context.Context, doc Document) error {
	s.mu.Lock()
	if idx, exists := s.ids[doc.ID]; exists {
		s.docs = append(s.docs[:idx], s.docs[idx+1:]...)
		delete(s.ids, doc.ID)
		for id, i := range s.ids {
			if i > idx {
				s.ids[id] = i - 1
			}
		}
	}
	s.mu.Unlock()
	return s.Add(ctx, doc)
}

// Search scores every stored document against queryVector with cosine
// similarity and returns the topK best, ordered by descending score.
// A stable sort preserves insertion order among equal scores, which keeps
// results deterministic.
func (s *MemoryStore) Search(_ context.Context, queryVector []float32, topK int) ([]Match, error) {
	if topK < 1 {
		return nil, fmt.Errorf("memory store: topK must be >= 1, got %d: %w", topK, ErrInvalidArgument)
	}
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("memory store: empty query vector: %w", ErrInvalidArgument)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.docs))
	for _, doc := range s.docs {
		matches = append(matches, Match{
			Document: doc,
			Score:    Cosine(queryVector, doc.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}
	for i := range matches {
		matches[i].Rank = i + 1
	}
	return matches, nil
}

// Count reports the number of indexed documents.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Documents returns a snapshot of all stored documents in insertion order.
// Used by the snapshot store when persisting the index.
func (s *MemoryStore) Documents(_ context.Context) []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Cosine computes the cosine similarity of a and b. Embeddings from the
// configured models are not guaranteed unit-normalised, so cosine (rather
// than dot product) decouples scale from direction. Accumulation is float64
// to limit rounding drift on long vectors. Returns 0 when either vector has
// zero norm or the lengths differ.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
