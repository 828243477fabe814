package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/assembler"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/corpus"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/embedder"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/generator"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/ingestion"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/pipeline"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/provider"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/snapshot"
)

// getEnvOrDefault returns the env var value, or fallback when unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as int, or fallback when unset or
// unparseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvFloat32 returns the env var parsed as float32, or fallback when unset
// or unparseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

// loadCorpus resolves the document source in precedence order: local file,
// remote URL, built-in sample set.
func loadCorpus(ctx context.Context, log *slog.Logger) ([]corpus.Record, error) {
	if path := os.Getenv("CORPUS_FILE"); path != "" {
		records, err := corpus.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("corpus file %s: %w", path, err)
		}
		log.Info("corpus loaded from file", slog.String("path", path), slog.Int("records", len(records)))
		return records, nil
	}
	if url := os.Getenv("CORPUS_URL"); url != "" {
		records, err := corpus.Fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("corpus url %s: %w", url, err)
		}
		log.Info("corpus fetched", slog.String("url", url), slog.Int("records", len(records)))
		return records, nil
	}

	records := corpus.Sample()
	log.Info("using built-in sample corpus", slog.Int("records", len(records)))
	return records, nil
}

// buildVectorStore selects the vector store backend. A configured QDRANT_HOST
// selects Qdrant; otherwise the in-memory store is used. The returned close
// function is a no-op for the memory store.
func buildVectorStore(ctx context.Context, log *slog.Logger) (rag.VectorStore, func(), error) {
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		return rag.NewMemoryStore(), func() {}, nil
	}

	embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", "superlig-docs")

	store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: uint64(embedder.DefaultDimensions(embBackend)), //nolint:gosec // dimensions are bounded
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("qdrant at %s:%d: %w", host, port, err)
	}
	log.Info("qdrant store ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return store, func() { _ = store.Close() }, nil
}

// populateMemoryStore fills an in-memory store, preferring the SQLite
// snapshot when one exists, and falling back to embedding the configured
// corpus at startup.
func populateMemoryStore(ctx context.Context, log *slog.Logger, store *rag.MemoryStore, emb rag.Embedder) error {
	if docs := loadSnapshot(ctx, log); len(docs) > 0 {
		for _, doc := range docs {
			if err := store.Add(ctx, doc); err != nil {
				return fmt.Errorf("restore snapshot: %w", err)
			}
		}
		log.Info("index restored from snapshot", slog.Int("documents", len(docs)))
		return nil
	}

	records, err := loadCorpus(ctx, log)
	if err != nil {
		return err
	}

	pipe, err := ingestion.NewPipeline(emb, store, &ingestion.Config{
		OnDuplicate: ingestion.DuplicatePolicy(getEnvOrDefault("CORPUS_ON_DUPLICATE", "error")),
	})
	if err != nil {
		return fmt.Errorf("ingestion pipeline: %w", err)
	}

	chunks, err := pipe.Ingest(ctx, records, func(msg string) { log.Debug(msg) })
	if err != nil {
		return fmt.Errorf("index corpus: %w", err)
	}
	log.Info("corpus indexed", slog.Int("records", len(records)), slog.Int("chunks", chunks))
	return nil
}

// loadSnapshot returns the snapshotted documents, or nil when the snapshot is
// disabled, absent, or unreadable. A broken snapshot is logged and skipped so
// startup can fall back to fresh embedding.
func loadSnapshot(ctx context.Context, log *slog.Logger) []rag.Document {
	path := os.Getenv("SUPERLIG_SNAPSHOT_DB")
	if path == "disabled" {
		return nil
	}
	if path == "" {
		var err error
		path, err = snapshot.DefaultPath()
		if err != nil {
			log.Warn("snapshot: could not resolve default path", slog.Any("error", err))
			return nil
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	st, err := snapshot.Open(path)
	if err != nil {
		log.Warn("snapshot: open failed, re-embedding corpus", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	defer func() { _ = st.Close() }()

	docs, err := st.Load(ctx)
	if err != nil {
		log.Warn("snapshot: load failed, re-embedding corpus", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	return docs
}

// buildGenerator initialises the generation adapter from the environment.
// A missing or invalid provider configuration is not fatal: the pipeline
// degrades to retrieval-only mode, matching the behaviour when no API key
// is configured.
func buildGenerator(ctx context.Context, log *slog.Logger) *generator.Adapter {
	chatModel, err := provider.NewFromEnv(ctx)
	if err != nil {
		log.Warn("generation disabled, running retrieval-only", slog.Any("error", err))
		return nil
	}
	timeout := time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)) * time.Second
	return generator.NewAdapter(generator.NewChatGenerator(chatModel), timeout)
}

// buildPipeline wires embedder, vector store, retriever, assembler and
// generator into a ready question answering pipeline. The returned close
// function releases the vector store connection.
func buildPipeline(ctx context.Context, log *slog.Logger) (*pipeline.Pipeline, func(), error) {
	if err := embedder.Validate(log); err != nil {
		return nil, nil, err
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("embedder: %w", err)
	}

	store, closeStore, err := buildVectorStore(ctx, log)
	if err != nil {
		return nil, nil, err
	}

	// The in-memory store starts empty and is filled at startup; Qdrant is
	// populated out of band by `superlig ingest`.
	if mem, ok := store.(*rag.MemoryStore); ok {
		if err := populateMemoryStore(ctx, log, mem, emb); err != nil {
			closeStore()
			return nil, nil, err
		}
	}

	retriever, err := rag.NewRetriever(emb, store, getEnvInt("RETRIEVAL_TOP_K", 5))
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("retriever: %w", err)
	}

	pipe, err := pipeline.New(pipeline.Config{
		Retriever: retriever,
		Assembler: assembler.New(assembler.Config{
			MaxChars: getEnvInt("ASSEMBLY_MAX_CONTEXT_CHARS", 4000),
		}),
		Generator:                buildGenerator(ctx, log),
		MaxConcurrentGenerations: getEnvInt("GENERATION_MAX_CONCURRENT", 4),
		DefaultMinScore:          getEnvFloat32("RETRIEVAL_MIN_SCORE", 0),
	})
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("pipeline: %w", err)
	}

	return pipe, closeStore, nil
}
