package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/corpus"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func newTestPipeline(t *testing.T, store rag.VectorStore, cfg *Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(&fakeEmbedder{}, store, cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestChunk_ShortTextIsSingleChunk(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, rag.NewMemoryStore(), nil)
	chunks := p.chunk("Kısa bir metin.")
	if len(chunks) != 1 || chunks[0] != "Kısa bir metin." {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestChunk_BreaksAtSentenceBoundary(t *testing.T) {
	t.Parallel()

	// Sentences of 100 characters each; the 500-char window lands mid
	// sentence, so the cut must move back to the last full stop.
	sentence := strings.Repeat("a", 99) + "."
	text := strings.Repeat(sentence, 8)

	p := newTestPipeline(t, rag.NewMemoryStore(), nil)
	chunks := p.chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: ...%q", i, c[len(c)-10:])
		}
		if n := len([]rune(c)); n > 500 {
			t.Errorf("chunk %d is %d chars, want <= 500", i, n)
		}
	}
}

// TestChunk_LargeOverlapStillTerminates pins the pathological configuration
// where the overlap exceeds the advance gained by a sentence-boundary cut.
// The window must keep moving forward instead of stepping backwards.
func TestChunk_LargeOverlapStillTerminates(t *testing.T) {
	t.Parallel()

	// A full stop at position 72 pulls the first cut back to 72, while the
	// overlap of 99 would rewind the next start to -27 without the guard.
	text := strings.Repeat("c", 71) + "." + strings.Repeat("d", 300)

	p := newTestPipeline(t, rag.NewMemoryStore(), &Config{ChunkSize: 100, ChunkOverlap: 99})
	chunks := p.chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	total := 0
	for i, c := range chunks {
		if n := len([]rune(c)); n > 100 {
			t.Errorf("chunk %d is %d chars, want <= 100", i, n)
		}
		total += len([]rune(c))
	}
	// Every chunk must contribute fresh text, so the combined length can
	// never balloon past the input plus one overlap per boundary.
	if max := len([]rune(text)) + 99*len(chunks); total > max {
		t.Errorf("chunks repeat text: total %d chars from a %d char input", total, len([]rune(text)))
	}
}

func TestChunk_OverlapCarriesText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("b", 600)
	p := newTestPipeline(t, rag.NewMemoryStore(), nil)
	chunks := p.chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// No sentence boundaries, so the first chunk is the full 500 and the
	// second starts 50 back from its end.
	if n := len([]rune(chunks[0])); n != 500 {
		t.Errorf("first chunk is %d chars, want 500", n)
	}
	if n := len([]rune(chunks[1])); n != 150 {
		t.Errorf("second chunk is %d chars, want 150 (50 overlap + 100 tail)", n)
	}
}

func TestIngest_SampleCorpus(t *testing.T) {
	t.Parallel()

	store := rag.NewMemoryStore()
	p := newTestPipeline(t, store, nil)

	var messages []string
	n, err := p.Ingest(context.Background(), corpus.Sample(), func(msg string) {
		messages = append(messages, msg)
	})
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if n == 0 {
		t.Fatal("Ingest() wrote 0 chunks")
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != n {
		t.Errorf("store has %d documents, Ingest reported %d", count, n)
	}
	if len(messages) == 0 {
		t.Error("progress callback never invoked")
	}
}

func TestIngest_DropsShortRecords(t *testing.T) {
	t.Parallel()

	store := rag.NewMemoryStore()
	p := newTestPipeline(t, store, nil)

	records := []corpus.Record{{Title: "Kısa", Text: "Çok kısa.", URL: "https://example.com/kisa"}}
	n, err := p.Ingest(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if n != 0 {
		t.Errorf("Ingest() wrote %d chunks, want 0 for sub-minimum text", n)
	}
}

func TestIngest_DuplicatePolicies(t *testing.T) {
	t.Parallel()

	records := []corpus.Record{{
		Title: "Galatasaray SK",
		Text:  "Galatasaray Spor Kulübü 1905 yılında kurulmuş İstanbul merkezli spor kulübüdür.",
		URL:   "https://example.com/gs",
	}}

	t.Run("error aborts on re-ingest", func(t *testing.T) {
		t.Parallel()
		store := rag.NewMemoryStore()
		p := newTestPipeline(t, store, &Config{OnDuplicate: DuplicateError})
		if _, err := p.Ingest(context.Background(), records, nil); err != nil {
			t.Fatalf("first Ingest: %v", err)
		}
		if _, err := p.Ingest(context.Background(), records, nil); !errors.Is(err, rag.ErrDuplicateID) {
			t.Fatalf("second Ingest error = %v, want ErrDuplicateID", err)
		}
	})

	t.Run("skip keeps existing documents", func(t *testing.T) {
		t.Parallel()
		store := rag.NewMemoryStore()
		p := newTestPipeline(t, store, &Config{OnDuplicate: DuplicateSkip})
		if _, err := p.Ingest(context.Background(), records, nil); err != nil {
			t.Fatalf("first Ingest: %v", err)
		}
		before, _ := store.Count(context.Background())
		if _, err := p.Ingest(context.Background(), records, nil); err != nil {
			t.Fatalf("second Ingest: %v", err)
		}
		after, _ := store.Count(context.Background())
		if after != before {
			t.Errorf("count changed from %d to %d under skip policy", before, after)
		}
	})

	t.Run("overwrite replaces in place", func(t *testing.T) {
		t.Parallel()
		store := rag.NewMemoryStore()
		p := newTestPipeline(t, store, &Config{OnDuplicate: DuplicateOverwrite})
		if _, err := p.Ingest(context.Background(), records, nil); err != nil {
			t.Fatalf("first Ingest: %v", err)
		}
		if _, err := p.Ingest(context.Background(), records, nil); err != nil {
			t.Fatalf("second Ingest: %v", err)
		}
		count, _ := store.Count(context.Background())
		if count != 1 {
			t.Errorf("count = %d after overwrite re-ingest, want 1", count)
		}
	})
}

func TestIngest_EmbedderFailureWrapped(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(&fakeEmbedder{err: errors.New("connection refused")}, rag.NewMemoryStore(), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Ingest(context.Background(), corpus.Sample()[:1], nil)
	var embErr *rag.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("Ingest() error = %v, want EmbeddingError", err)
	}
}

func TestChunkID_Deterministic(t *testing.T) {
	t.Parallel()

	a := chunkID("https://example.com/gs", 0)
	b := chunkID("https://example.com/gs", 0)
	c := chunkID("https://example.com/gs", 1)
	if a != b {
		t.Error("same URL and index must produce the same ID")
	}
	if a == c {
		t.Error("different index must produce a different ID")
	}
}
