// Package rag defines the core types and interfaces for the
// retrieval-augmented generation pipeline: documents, vector storage,
// embedding, and retrieval. Concrete backends (in-memory, Qdrant) satisfy
// these interfaces so the pipeline layer never depends on a specific one.
package rag

import (
	"context"
)

// Document is a unit of stored knowledge: one chunk of a source article.
// Documents are immutable after ingestion; to change one, replace it.
type Document struct {
	// ID is the unique, stable identifier for this chunk.
	ID string

	// Title is the source article title (e.g. "Galatasaray SK").
	Title string

	// Content is the chunk text.
	Content string

	// SourceURL is the origin URL of the article, if known.
	SourceURL string

	// Embedding is the fixed-length vector for Content. Nil until indexed;
	// a store never returns documents whose embedding was not computed.
	Embedding []float32
}

// Match is a single retrieval hit: a document reference with its similarity
// score and 1-based rank. Matches are transient, produced per query.
type Match struct {
	// Document is the matched document (back-reference, not a copy the
	// caller may mutate).
	Document Document

	// Score is the cosine similarity to the query (higher is more relevant).
	Score float32

	// Rank is the 1-based position in the result ordering.
	Rank int
}

// VectorStore persists embedded documents and answers similarity searches.
// Implementations must be safe for concurrent readers after the load phase;
// loading itself is a single-writer phase.
//
// The in-memory implementation is a linear scan, O(N*D) per query, which is
// fine for hundreds to low thousands of documents. QdrantStore is the
// substitute when the corpus outgrows that.
type VectorStore interface {
	// Add inserts a document with a computed embedding.
	// Returns ErrDuplicateID if the ID is already present (where the
	// backend can detect it) and ErrInvalidArgument for a nil embedding.
	Add(ctx context.Context, doc Document) error

	// Search returns up to topK matches ordered by descending similarity,
	// ties broken by insertion order. topK < 1 is ErrInvalidArgument.
	Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error)

	// Count reports the number of indexed documents.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder converts text into a fixed-length dense vector. Deterministic for
// identical input (same model, same text). Implementations must be safe to
// call from multiple goroutines; the process constructs exactly one at
// startup and injects it everywhere it is needed.
type Embedder interface {
	// Embed converts a batch of texts into their embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever returns the most relevant documents for a natural-language
// question. Implementations must be safe for concurrent use.
type Retriever interface {
	// Retrieve embeds the question and searches the store. minScore filters
	// candidates after ranking, so the result may be shorter than topK but
	// never longer. Returns ErrEmptyIndex when the store holds no documents;
	// an empty result (everything below minScore) is success, not an error.
	Retrieve(ctx context.Context, question string, topK int, minScore float32) ([]Match, error)
}
