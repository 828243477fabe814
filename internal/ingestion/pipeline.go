// Package ingestion implements the corpus ingestion pipeline. It cleans each
// source record, splits the text into overlapping chunks on sentence
// boundaries, embeds every chunk, and writes the results into the vector
// store. This pipeline is invoked by the `superlig ingest` CLI command and by
// `superlig serve` at startup.
package ingestion

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/corpus"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
)

// DuplicatePolicy controls what happens when a chunk ID already exists in
// the store.
type DuplicatePolicy string

const (
	// DuplicateError aborts the ingestion run on the first duplicate.
	DuplicateError DuplicatePolicy = "error"
	// DuplicateSkip leaves the stored document untouched and continues.
	DuplicateSkip DuplicatePolicy = "skip"
	// DuplicateOverwrite replaces the stored document with the new chunk.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
)

// sentenceBreakRatio is how far into a chunk a sentence boundary must sit
// before the chunk is cut there instead of at the hard size limit.
const sentenceBreakRatio = 0.7

// Config holds the chunking parameters for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per chunk (default: 500).
	ChunkSize int
	// ChunkOverlap is the number of characters shared between consecutive
	// chunks (default: 50).
	ChunkOverlap int
	// MinChunkChars drops chunks shorter than this after trimming
	// (default: 50).
	MinChunkChars int
	// OnDuplicate selects the duplicate handling policy (default: error).
	OnDuplicate DuplicatePolicy
}

// replacer is implemented by stores that can swap a document in place.
// Stores with upsert semantics never report duplicates and do not need it.
type replacer interface {
	Replace(ctx context.Context, doc rag.Document) error
}

// Pipeline runs the preprocess, chunk, embed, store flow for a set of corpus
// records.
type Pipeline struct {
	embedder rag.Embedder
	store    rag.VectorStore
	cfg      *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: %w: embedder must not be nil", rag.ErrInvalidArgument)
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: %w: store must not be nil", rag.ErrInvalidArgument)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}
	if cfg.MinChunkChars <= 0 {
		cfg.MinChunkChars = 50
	}
	if cfg.OnDuplicate == "" {
		cfg.OnDuplicate = DuplicateError
	}
	switch cfg.OnDuplicate {
	case DuplicateError, DuplicateSkip, DuplicateOverwrite:
	default:
		return nil, fmt.Errorf("ingestion: %w: unknown duplicate policy %q", rag.ErrInvalidArgument, cfg.OnDuplicate)
	}

	return &Pipeline{embedder: embedder, store: store, cfg: cfg}, nil
}

// Ingest processes all records sequentially and returns the number of chunks
// written. Progress is reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, records []corpus.Record, progress func(msg string)) (int, error) {
	if progress == nil {
		progress = func(string) {}
	}

	total := 0
	for _, rec := range records {
		text := corpus.Preprocess(rec.Text)
		if text == "" {
			progress(fmt.Sprintf("skipping %q: empty after preprocessing", rec.Title))
			continue
		}

		chunks := p.chunk(text)
		kept := make([]string, 0, len(chunks))
		indices := make([]int, 0, len(chunks))
		for i, c := range chunks {
			if len([]rune(c)) < p.cfg.MinChunkChars {
				continue
			}
			kept = append(kept, c)
			indices = append(indices, i)
		}
		if len(kept) == 0 {
			progress(fmt.Sprintf("skipping %q: no chunk above %d chars", rec.Title, p.cfg.MinChunkChars))
			continue
		}
		progress(fmt.Sprintf("chunked %q into %d chunks", rec.Title, len(kept)))

		embeddings, err := p.embedder.Embed(ctx, kept)
		if err != nil {
			return total, fmt.Errorf("ingestion: embed %q: %w", rec.Title, &rag.EmbeddingError{Op: "embed chunks", Err: err})
		}
		if len(embeddings) != len(kept) {
			return total, fmt.Errorf("ingestion: embed %q: got %d embeddings for %d chunks", rec.Title, len(embeddings), len(kept))
		}

		for i, chunk := range kept {
			doc := rag.Document{
				ID:        chunkID(rec.URL, indices[i]),
				Title:     rec.Title,
				Content:   chunk,
				SourceURL: rec.URL,
				Embedding: embeddings[i],
			}
			if err := p.add(ctx, doc); err != nil {
				return total, fmt.Errorf("ingestion: store %q chunk %d: %w", rec.Title, indices[i], err)
			}
			total++
		}

		progress(fmt.Sprintf("ingested %d chunks from %q", len(kept), rec.Title))
	}

	return total, nil
}

// add writes one document, applying the configured duplicate policy.
func (p *Pipeline) add(ctx context.Context, doc rag.Document) error {
	err := p.store.Add(ctx, doc)
	if err == nil || !errors.Is(err, rag.ErrDuplicateID) {
		return err
	}

	switch p.cfg.OnDuplicate {
	case DuplicateSkip:
		return nil
	case DuplicateOverwrite:
		if r, ok := p.store.(replacer); ok {
			return r.Replace(ctx, doc)
		}
		return err
	default:
		return err
	}
}

// chunk splits text into overlapping chunks of at most ChunkSize characters,
// preferring to cut at the last sentence boundary once it falls past
// sentenceBreakRatio of the chunk.
func (p *Pipeline) chunk(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n <= p.cfg.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + p.cfg.ChunkSize
		sliceEnd := end
		if sliceEnd > n {
			sliceEnd = n
		}
		chunk := runes[start:sliceEnd]

		if end < n {
			if cut := lastSentenceEnd(chunk); cut > int(float64(p.cfg.ChunkSize)*sentenceBreakRatio) {
				chunk = chunk[:cut+1]
				end = start + cut + 1
			}
		}

		chunks = append(chunks, strings.TrimSpace(string(chunk)))
		next := end - p.cfg.ChunkOverlap
		if next <= start {
			// An overlap larger than the sentence-cut advance would walk
			// backwards; continue from the cut without overlap instead.
			next = end
		}
		start = next
		if start >= n {
			break
		}
	}

	return chunks
}

// lastSentenceEnd returns the index of the last '.', '?' or '!' in the chunk,
// or -1 when none is present.
func lastSentenceEnd(chunk []rune) int {
	for i := len(chunk) - 1; i >= 0; i-- {
		switch chunk[i] {
		case '.', '?', '!':
			return i
		}
	}
	return -1
}

// chunkID generates a deterministic ID for a chunk from its source URL and
// chunk index, so re-ingesting the same corpus yields the same IDs.
func chunkID(sourceURL string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", sourceURL, index)))
	return fmt.Sprintf("%x", h[:16])
}
