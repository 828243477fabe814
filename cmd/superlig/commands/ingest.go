package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/embedder"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/ingestion"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/logging"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/snapshot"
)

// NewIngestCmd constructs the `superlig ingest` command, which preprocesses,
// chunks and embeds the corpus into the configured vector store.
func NewIngestCmd() *cobra.Command {
	var file string
	var url string
	var onDuplicate string
	var writeSnapshot bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index the Süper Lig corpus into the vector store",
		Long: `Preprocess, chunk and embed the document corpus.

The corpus source is resolved in order: --file, --url, the CORPUS_FILE /
CORPUS_URL environment variables, then the built-in sample set. Documents go
to Qdrant when QDRANT_HOST is configured, otherwise to the in-memory store,
which only persists when --snapshot is given.

Relevant environment variables:
  QDRANT_HOST           Qdrant server hostname (empty selects the memory store)
  QDRANT_PORT           Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION     Collection name (default: superlig-docs)
  EMBEDDING_PROVIDER    Embedding backend: ollama, openai, azure
  SUPERLIG_SNAPSHOT_DB  Snapshot path (default: ~/.superlig/snapshot.db)

Examples:
  superlig ingest
  superlig ingest --file takimlar.jsonl --snapshot
  superlig ingest --url https://example.com/superlig.json --on-duplicate skip
  QDRANT_HOST=localhost superlig ingest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			// Flags override the corpus env vars for this invocation.
			if file != "" {
				os.Setenv("CORPUS_FILE", file)
			}
			if url != "" {
				os.Setenv("CORPUS_URL", url)
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: embedder: %w", err)
			}
			log.Info("embedder initialised",
				slog.String("provider", getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))),
			)

			store, closeStore, err := buildVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer closeStore()

			records, err := loadCorpus(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			policy := ingestion.DuplicatePolicy(getEnvOrDefault("CORPUS_ON_DUPLICATE", string(ingestion.DuplicateError)))
			if onDuplicate != "" {
				policy = ingestion.DuplicatePolicy(onDuplicate)
			}

			pipe, err := ingestion.NewPipeline(emb, store, &ingestion.Config{OnDuplicate: policy})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("starting ingestion", slog.Int("records", len(records)))
			chunks, err := pipe.Ingest(ctx, records, func(msg string) { log.Info(msg) })
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			log.Info("ingestion complete", slog.Int("records", len(records)), slog.Int("chunks", chunks))

			if writeSnapshot {
				mem, ok := store.(*rag.MemoryStore)
				if !ok {
					return fmt.Errorf("ingest: --snapshot only applies to the in-memory store; Qdrant persists on its own")
				}
				path := os.Getenv("SUPERLIG_SNAPSHOT_DB")
				if path == "" || path == "disabled" {
					path, err = snapshot.DefaultPath()
					if err != nil {
						return fmt.Errorf("ingest: snapshot path: %w", err)
					}
				}
				st, err := snapshot.Open(path)
				if err != nil {
					return fmt.Errorf("ingest: snapshot: %w", err)
				}
				defer func() { _ = st.Close() }()

				docs := mem.Documents(ctx)
				if err := st.Save(ctx, docs); err != nil {
					return fmt.Errorf("ingest: snapshot: %w", err)
				}
				log.Info("snapshot written", slog.String("path", path), slog.Int("documents", len(docs)))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Local JSON or JSONL corpus file")
	cmd.Flags().StringVarP(&url, "url", "u", "", "HTTP(S) endpoint serving a JSON corpus")
	cmd.Flags().StringVar(&onDuplicate, "on-duplicate", "", "Duplicate chunk policy: error, skip, overwrite")
	cmd.Flags().BoolVar(&writeSnapshot, "snapshot", false, "Persist the in-memory index to the SQLite snapshot")

	return cmd
}
