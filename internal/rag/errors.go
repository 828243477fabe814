package rag

import (
	"errors"
	"fmt"
)

// Sentinel errors for the retrieval layer. Callers match them with errors.Is.
var (
	// ErrInvalidArgument reports bad caller input (e.g. topK < 1).
	// Reject immediately; never retry.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyIndex reports a search against a store with zero documents.
	// The orchestrator treats this as the designed no-information path,
	// not a failure.
	ErrEmptyIndex = errors.New("no documents indexed")

	// ErrDuplicateID reports an Add with an ID already present in the store.
	// Ingestion decides whether to skip or overwrite; it is never silent.
	ErrDuplicateID = errors.New("duplicate document id")
)

// EmbeddingError wraps a failure to embed text: model unavailable, input too
// long, or a backend error. Fatal to the query that triggered it only.
type EmbeddingError struct {
	// Op names the operation that failed ("embed query", "embed document").
	Op string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *EmbeddingError) Unwrap() error { return e.Err }
