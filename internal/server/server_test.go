package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/pipeline"
)

// fakeAnswerer is a test double for the pipeline. It records the last query
// and returns a canned result.
type fakeAnswerer struct {
	lastQuery pipeline.Query
	result    pipeline.AnswerResult
}

func (f *fakeAnswerer) Answer(_ context.Context, q pipeline.Query) pipeline.AnswerResult {
	f.lastQuery = q
	return f.result
}

// okResult is a minimal successful pipeline result for handler tests.
func okResult() pipeline.AnswerResult {
	return pipeline.AnswerResult{
		Answer:  "Tamam.",
		Success: true,
		Stage:   pipeline.StageCompleted,
	}
}

// newTestServer constructs a Server around the given fake with a private
// metrics registry. The rate limiter goroutine is stopped on test cleanup.
func newTestServer(t *testing.T, fake *fakeAnswerer, cfg *Config) *Server {
	t.Helper()

	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	s, err := New(fake, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)
	return s
}

// TestHandleAsk_Success verifies that a well-formed question produces a 200
// response carrying the pipeline's AnswerResult as JSON.
func TestHandleAsk_Success(t *testing.T) {
	t.Parallel()

	fake := &fakeAnswerer{result: pipeline.AnswerResult{
		Answer:  "Galatasaray 1905 yılında kurulmuştur.",
		Success: true,
		Stage:   pipeline.StageCompleted,
		Citations: []pipeline.Citation{
			{Title: "Galatasaray SK", URL: "https://tr.wikipedia.org/wiki/Galatasaray_SK", Score: 0.91},
		},
	}}
	s := newTestServer(t, fake, nil)

	body := strings.NewReader(`{"question": "Galatasaray ne zaman kuruldu?", "top_k": 3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", body)
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: expected application/json, got %q", ct)
	}

	var res pipeline.AnswerResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success {
		t.Error("expected success:true")
	}
	if res.Answer != fake.result.Answer {
		t.Errorf("answer: expected %q, got %q", fake.result.Answer, res.Answer)
	}
	if len(res.Citations) != 1 || res.Citations[0].Title != "Galatasaray SK" {
		t.Errorf("unexpected citations: %+v", res.Citations)
	}

	if fake.lastQuery.Question != "Galatasaray ne zaman kuruldu?" {
		t.Errorf("question not forwarded, got %q", fake.lastQuery.Question)
	}
	if fake.lastQuery.TopK != 3 {
		t.Errorf("top_k not forwarded, got %d", fake.lastQuery.TopK)
	}
}

// TestHandleAsk_FailureStaysHTTP200 verifies that a pipeline failure is still
// reported over HTTP 200; the failure lives inside the JSON body.
func TestHandleAsk_FailureStaysHTTP200(t *testing.T) {
	t.Parallel()

	fake := &fakeAnswerer{result: pipeline.AnswerResult{
		Answer:      "Üzgünüm, sorunuzu yanıtlayamadım. Lütfen daha sonra tekrar deneyin.",
		Success:     false,
		Stage:       pipeline.StageFailed,
		ErrorDetail: "answer generation timed out",
	}}
	s := newTestServer(t, fake, nil)

	body := strings.NewReader(`{"question": "Fenerbahçe kaç kez şampiyon oldu?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", body)
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 even on pipeline failure, got %d", w.Code)
	}

	var res pipeline.AnswerResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Success {
		t.Error("expected success:false")
	}
	if res.ErrorDetail != "answer generation timed out" {
		t.Errorf("unexpected error_detail: %q", res.ErrorDetail)
	}
}

// TestHandleAsk_InvalidBody verifies that malformed JSON receives 400.
func TestHandleAsk_InvalidBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// TestHandleAsk_BlankQuestion verifies that a missing or whitespace-only
// question receives 400 before the pipeline is invoked.
func TestHandleAsk_BlankQuestion(t *testing.T) {
	t.Parallel()

	fake := &fakeAnswerer{}
	s := newTestServer(t, fake, nil)

	for _, body := range []string{`{}`, `{"question": "   "}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
		w := httptest.NewRecorder()

		s.handleAsk(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body=%s: expected 400, got %d", body, w.Code)
		}
	}
	if fake.lastQuery.Question != "" {
		t.Error("pipeline must not be invoked for blank questions")
	}
}

// TestServeMux_AuthProtectsAsk verifies through the full handler chain that
// /api/ask requires the configured API key while /api/health stays open.
func TestServeMux_AuthProtectsAsk(t *testing.T) {
	t.Parallel()

	fake := &fakeAnswerer{result: pipeline.AnswerResult{Success: true, Stage: pipeline.StageCompleted}}
	s := newTestServer(t, fake, &Config{APIKey: "sekret"})

	handler := s.httpServer.Handler

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"x"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated ask: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"x"}`))
	req.Header.Set("Authorization", "Bearer sekret")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated ask: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health without auth: expected 200, got %d", w.Code)
	}
}

// TestQueryOutcome verifies the mapping from AnswerResult to the metrics
// outcome label.
func TestQueryOutcome(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		res  pipeline.AnswerResult
		want string
	}{
		{"success", pipeline.AnswerResult{Success: true}, "ok"},
		{"timeout", pipeline.AnswerResult{ErrorDetail: "answer generation timed out"}, "timeout"},
		{"provider failure", pipeline.AnswerResult{ErrorDetail: "answer generation is unavailable"}, "error"},
		{"retrieval failure", pipeline.AnswerResult{ErrorDetail: "document retrieval failed"}, "error"},
	}

	for _, tc := range cases {
		if got := queryOutcome(tc.res); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

// TestNew_NilPipeline verifies the constructor rejects a nil pipeline.
func TestNew_NilPipeline(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &Config{Registry: prometheus.NewRegistry()}); err == nil {
		t.Error("expected error for nil pipeline")
	}
}
