package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/assembler"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/embedder"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/generator"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/logging"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/pipeline"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/provider"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/server"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/tracing"
)

// NewServeCmd constructs the `superlig serve` command, which starts the HTTP
// API server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the superlig HTTP API server",
		Long: `Start the superlig HTTP server on localhost.

The server exposes POST /api/ask for questions, GET /api/health and
GET /api/ready for probes, and GET /metrics for Prometheus scraping.
Set SUPERLIG_API_KEY to require Bearer authentication on /api/ask.

Examples:
  superlig serve
  superlig serve --port 9090
  MODEL_PROVIDER=gemini superlig serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Flags win over env; env (and through it, YAML) fills the rest.
			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("SUPERLIG_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("SUPERLIG_PORT", port)
			}

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing; opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: embedder: %w", err)
			}

			store, closeStore, err := buildVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer closeStore()

			if mem, ok := store.(*rag.MemoryStore); ok {
				if err := populateMemoryStore(ctx, log, mem, emb); err != nil {
					return fmt.Errorf("serve: %w", err)
				}
			}

			retriever, err := rag.NewRetriever(emb, store, getEnvInt("RETRIEVAL_TOP_K", 5))
			if err != nil {
				return fmt.Errorf("serve: retriever: %w", err)
			}

			// The chat model is shared between the generation adapter and
			// the readiness pinger, so it is built here rather than through
			// buildGenerator.
			var gen *generator.Adapter
			var pingers []server.Pinger
			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				log.Warn("generation disabled, running retrieval-only", slog.Any("error", err))
			} else {
				timeout := time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)) * time.Second
				gen = generator.NewAdapter(generator.NewChatGenerator(chatModel), timeout)
				pingers = append(pingers, server.NewLLMPinger(chatModel, getEnvOrDefault("MODEL_PROVIDER", "ollama")))
			}
			if q, ok := store.(*rag.QdrantStore); ok {
				pingers = append(pingers, server.NewQdrantPinger(q.Client()))
			}

			pipe, err := pipeline.New(pipeline.Config{
				Retriever: retriever,
				Assembler: assembler.New(assembler.Config{
					MaxChars: getEnvInt("ASSEMBLY_MAX_CONTEXT_CHARS", 4000),
				}),
				Generator:                gen,
				MaxConcurrentGenerations: getEnvInt("GENERATION_MAX_CONCURRENT", 4),
				DefaultMinScore:          getEnvFloat32("RETRIEVAL_MIN_SCORE", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: pipeline: %w", err)
			}

			srv, err := server.New(pipe, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("SUPERLIG_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
