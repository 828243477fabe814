package rag

import (
	"context"
	"errors"
	"math"
	"testing"
)

// docWithVec builds a test document with the given id and embedding.
func docWithVec(id string, vec ...float32) Document {
	return Document{
		ID:        id,
		Title:     "title-" + id,
		Content:   "content-" + id,
		Embedding: vec,
	}
}

// TestMemoryStore_AddAndCount verifies basic insertion bookkeeping.
func TestMemoryStore_AddAndCount(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Add(ctx, docWithVec("a", 1, 0, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, docWithVec("b", 0, 1, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 documents, got %d", n)
	}
}

// TestMemoryStore_DuplicateID verifies that inserting the same ID twice fails
// with ErrDuplicateID and leaves exactly one document in the store.
func TestMemoryStore_DuplicateID(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Add(ctx, docWithVec("dup", 1, 0)); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	err := s.Add(ctx, docWithVec("dup", 0, 1))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	n, _ := s.Count(ctx)
	if n != 1 {
		t.Errorf("expected exactly 1 document after duplicate rejection, got %d", n)
	}
}

// TestMemoryStore_Replace verifies the overwrite path leaves exactly one
// document with the replaced ID.
func TestMemoryStore_Replace(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Add(ctx, docWithVec("x", 1, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	replacement := docWithVec("x", 0, 1)
	replacement.Content = "updated"
	if err := s.Replace(ctx, replacement); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	n, _ := s.Count(ctx)
	if n != 1 {
		t.Fatalf("expected 1 document after replace, got %d", n)
	}

	matches, err := s.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if matches[0].Document.Content != "updated" {
		t.Errorf("expected replaced content, got %q", matches[0].Document.Content)
	}
}

// TestMemoryStore_RejectsInvalidInput covers empty IDs, missing embeddings,
// dimension mismatches, and bad topK values.
func TestMemoryStore_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Add(ctx, docWithVec("", 1, 0)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty id: expected ErrInvalidArgument, got %v", err)
	}
	if err := s.Add(ctx, Document{ID: "no-vec"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil embedding: expected ErrInvalidArgument, got %v", err)
	}

	if err := s.Add(ctx, docWithVec("a", 1, 0, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, docWithVec("b", 1, 0)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("dimension mismatch: expected ErrInvalidArgument, got %v", err)
	}

	if _, err := s.Search(ctx, []float32{1, 0, 0}, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("topK=0: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := s.Search(ctx, []float32{1, 0, 0}, -3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("topK=-3: expected ErrInvalidArgument, got %v", err)
	}
}

// TestMemoryStore_SearchOrdering verifies descending score order, the topK
// cap, and 1-based dense ranks.
func TestMemoryStore_SearchOrdering(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	// Angles from the query vector (1,0): far, near, exact.
	for _, d := range []Document{
		docWithVec("far", 0, 1),
		docWithVec("near", 1, 1),
		docWithVec("exact", 2, 0), // same direction, different magnitude
	} {
		if err := s.Add(ctx, d); err != nil {
			t.Fatalf("Add %s: %v", d.ID, err)
		}
	}

	matches, err := s.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Document.ID != "exact" || matches[1].Document.ID != "near" {
		t.Errorf("unexpected order: %s, %s", matches[0].Document.ID, matches[1].Document.ID)
	}
	for i, m := range matches {
		if m.Rank != i+1 {
			t.Errorf("match %d: expected rank %d, got %d", i, i+1, m.Rank)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not non-increasing: %f then %f", matches[i-1].Score, matches[i].Score)
		}
	}
}

// TestMemoryStore_TieBreakInsertionOrder verifies that equal scores rank the
// earlier-inserted document higher.
func TestMemoryStore_TieBreakInsertionOrder(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	// Both documents are identical in direction, so scores tie exactly.
	if err := s.Add(ctx, docWithVec("first", 1, 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, docWithVec("second", 2, 2)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	matches, err := s.Search(ctx, []float32{1, 1}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if matches[0].Document.ID != "first" {
		t.Errorf("tie break: expected earlier-inserted document first, got %q", matches[0].Document.ID)
	}
}

// TestMemoryStore_SelfSimilarity verifies the round-trip property: a query
// identical to a stored embedding scores the cosine maximum of 1.0.
func TestMemoryStore_SelfSimilarity(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	vec := []float32{0.3, -0.7, 0.648}
	if err := s.Add(ctx, docWithVec("self", vec...)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	matches, err := s.Search(ctx, vec, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := float64(matches[0].Score); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("self-similarity: expected 1.0, got %f", got)
	}
}

// TestCosine covers the degenerate inputs the scorer must not blow up on.
func TestCosine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cosine(tc.a, tc.b); math.Abs(float64(got-tc.want)) > 1e-6 {
				t.Errorf("Cosine(%v, %v) = %f, want %f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
