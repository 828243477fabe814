// Package pipeline orchestrates the question answering flow: retrieve,
// assemble, generate. It is the single entry point callers use to answer a
// question; every failure is absorbed into the AnswerResult so nothing
// upstream ever sees a raw provider error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/assembler"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/generator"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/logging"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
)

// Stage labels the phase a query last reached. Terminal results carry
// StageCompleted or StageFailed; the intermediate stages appear in logs and
// in ErrorDetail when a phase fails.
type Stage string

const (
	StageReceived   Stage = "received"
	StageRetrieving Stage = "retrieving"
	StageAssembling Stage = "assembling"
	StageGenerating Stage = "generating"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// User-facing Turkish fallback texts. Raw backend errors never reach the user.
const (
	// failedAnswerText is returned when any phase fails.
	failedAnswerText = "Üzgünüm, sorunuzu yanıtlayamadım. Lütfen daha sonra tekrar deneyin."
	// retrievalOnlyAnswerFormat is used when no generation backend is
	// configured; the pipeline still reports what it found.
	retrievalOnlyAnswerFormat = "API key bulunamadı. %d belge bulundu. API key ayarlayarak tam yanıt alabilirsiniz."
)

// defaultMaxConcurrent bounds simultaneous generation calls when the caller
// does not configure a limit.
const defaultMaxConcurrent = 4

// Query is one natural-language question plus optional retrieval overrides.
// Zero values select the retriever defaults.
type Query struct {
	Question string
	TopK     int
	MinScore float32
}

// Citation names one source passage that contributed to the answer.
type Citation struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Score float32 `json:"score"`
}

// AnswerResult is the terminal outcome of a query. Success with zero
// citations means the index had nothing relevant; the answer then says so in
// Turkish rather than inventing content.
type AnswerResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Success   bool       `json:"success"`
	Stage     Stage      `json:"stage"`
	// ErrorDetail is a user-safe description of what failed, empty on success.
	ErrorDetail string `json:"error_detail,omitempty"`
}

// answerGenerator is what the pipeline needs from the generation layer.
// *generator.Adapter satisfies it.
type answerGenerator interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}

// Pipeline wires retriever, assembler and generator into one Answer call.
// Safe for concurrent use.
type Pipeline struct {
	retriever rag.Retriever
	asm       *assembler.Assembler
	gen       answerGenerator
	// defaultMinScore backs queries that do not set their own floor.
	defaultMinScore float32
	// sem bounds in-flight generation calls. Retrieval and assembly are
	// cheap and run unbounded; only the LLM call is scarce.
	sem chan struct{}
}

// Config carries the pipeline dependencies. Generator may be nil, which puts
// the pipeline in retrieval-only mode: questions still run retrieval and
// assembly, and the answer reports the match count instead of generated text.
type Config struct {
	Retriever rag.Retriever
	Assembler *assembler.Assembler
	Generator *generator.Adapter
	// MaxConcurrentGenerations caps simultaneous generation calls
	// (default: 4). Ignored in retrieval-only mode.
	MaxConcurrentGenerations int
	// DefaultMinScore is the similarity floor applied when a query does not
	// carry its own. Zero keeps every ranked match.
	DefaultMinScore float32
}

// New constructs a Pipeline from cfg.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("pipeline: %w: retriever is required", rag.ErrInvalidArgument)
	}
	asm := cfg.Assembler
	if asm == nil {
		asm = assembler.New(assembler.Config{})
	}
	maxConc := cfg.MaxConcurrentGenerations
	if maxConc <= 0 {
		maxConc = defaultMaxConcurrent
	}
	p := &Pipeline{
		retriever:       cfg.Retriever,
		asm:             asm,
		defaultMinScore: cfg.DefaultMinScore,
		sem:             make(chan struct{}, maxConc),
	}
	if cfg.Generator != nil {
		p.gen = cfg.Generator
	}
	return p, nil
}

// Answer runs the full flow for one query. It never returns an error; every
// failure mode is folded into the returned AnswerResult.
func (p *Pipeline) Answer(ctx context.Context, q Query) AnswerResult {
	log := logging.FromContext(ctx)

	question := strings.TrimSpace(q.Question)
	if question == "" {
		return AnswerResult{
			Answer:      failedAnswerText,
			Citations:   []Citation{},
			Stage:       StageFailed,
			ErrorDetail: "question must not be empty",
		}
	}

	log.Debug("pipeline: query received",
		slog.String("stage", string(StageRetrieving)),
		slog.Int("top_k", q.TopK),
	)

	minScore := q.MinScore
	if minScore <= 0 {
		minScore = p.defaultMinScore
	}

	matches, err := p.retriever.Retrieve(ctx, question, q.TopK, minScore)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyIndex) {
			// An empty index is a valid state, not a failure. Answer
			// honestly that nothing is known.
			log.Info("pipeline: index is empty, answering without generation")
			return noInformationResult()
		}
		log.Error("pipeline: retrieval failed", slog.String("error", err.Error()))
		return failedResult(StageRetrieving, retrievalErrorDetail(err))
	}

	if len(matches) == 0 {
		log.Info("pipeline: no matches above threshold", slog.String("question", question))
		return noInformationResult()
	}

	qc := p.asm.Assemble(question, matches)
	if qc.NoInformation {
		return noInformationResult()
	}

	// Cite only the passages that made it into the assembled context; the
	// assembler may have dropped trailing matches to honour the budget.
	citations := make([]Citation, 0, len(qc.Matches))
	for _, m := range qc.Matches {
		citations = append(citations, Citation{
			Title: m.Document.Title,
			URL:   m.Document.SourceURL,
			Score: m.Score,
		})
	}

	if p.gen == nil {
		// Retrieval-only mode: no generation backend configured.
		return AnswerResult{
			Answer:    fmt.Sprintf(retrievalOnlyAnswerFormat, len(matches)),
			Citations: citations,
			Success:   true,
			Stage:     StageCompleted,
		}
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return failedResult(StageGenerating, "request canceled while waiting for a generation slot")
	}
	answer, err := p.gen.Answer(ctx, question, qc.Text)
	<-p.sem

	if err != nil {
		log.Error("pipeline: generation failed", slog.String("error", err.Error()))
		return failedResult(StageGenerating, generationErrorDetail(err))
	}

	log.Info("pipeline: query answered",
		slog.Int("citations", len(citations)),
		slog.Int("context_tokens", qc.EstimatedTokens),
	)
	return AnswerResult{
		Answer:    answer,
		Citations: citations,
		Success:   true,
		Stage:     StageCompleted,
	}
}

// noInformationResult is the successful outcome for questions the corpus
// cannot answer. The generator is never consulted.
func noInformationResult() AnswerResult {
	return AnswerResult{
		Answer:    assembler.NoInformationText,
		Citations: []Citation{},
		Success:   true,
		Stage:     StageCompleted,
	}
}

func failedResult(at Stage, detail string) AnswerResult {
	return AnswerResult{
		Answer:      failedAnswerText,
		Citations:   []Citation{},
		Stage:       StageFailed,
		ErrorDetail: fmt.Sprintf("%s: %s", at, detail),
	}
}

// retrievalErrorDetail maps retrieval failures onto user-safe descriptions.
func retrievalErrorDetail(err error) string {
	var embErr *rag.EmbeddingError
	if errors.As(err, &embErr) {
		return "embedding service is unavailable"
	}
	if errors.Is(err, rag.ErrInvalidArgument) {
		return "invalid retrieval parameters"
	}
	return "document search is unavailable"
}

// generationErrorDetail maps generation failures onto user-safe descriptions.
func generationErrorDetail(err error) string {
	switch {
	case errors.Is(err, generator.ErrGenerationTimeout):
		return "answer generation timed out"
	default:
		return "answer generation is unavailable"
	}
}
