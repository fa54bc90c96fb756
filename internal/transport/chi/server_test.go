package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/registry"
	askuc "github.com/civic-ai/lawdex/internal/usecase/ask"
	healthuc "github.com/civic-ai/lawdex/internal/usecase/health"
)

type mockAsk struct {
	result askuc.Result
	err    error
}

func (m *mockAsk) Ask(_ context.Context, _, _ string) (askuc.Result, error) {
	return m.result, m.err
}

type mockSearch struct {
	hits           []domain.Hit
	err            error
	lastCollection string
	lastTopK       int
}

func (m *mockSearch) Search(
	_ context.Context, _, collection string, topK int, _ float32,
) ([]domain.Hit, error) {
	m.lastCollection = collection
	m.lastTopK = topK
	return m.hits, m.err
}

type mockStatus struct {
	statuses map[string]registry.Status
}

func (m *mockStatus) Status(_ context.Context) map[string]registry.Status { return m.statuses }

func (m *mockStatus) StatusOf(_ context.Context, name string) registry.Status {
	return m.statuses[name]
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestServer(ask AskService, search SearchService, status StatusReporter, health HealthService) http.Handler {
	if ask == nil {
		ask = &mockAsk{}
	}
	if search == nil {
		search = &mockSearch{}
	}
	if status == nil {
		status = &mockStatus{}
	}
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	return NewServer(ask, search, status, health, zap.NewNop()).Router(nil)
}

func TestHandleAsk_OK(t *testing.T) {
	ask := &mockAsk{result: askuc.Result{
		Answer:       "the answer",
		References:   []domain.Hit{{Content: "ref", Similarity: 0.8}},
		QuestionType: domain.General,
	}}
	srv := newTestServer(ask, nil, nil, nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, jsonRequest(t, "POST", "/api/ask", `{"question": "q", "target": "law"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	var resp askResponse
	decode(t, rr, &resp)
	if resp.Answer != "the answer" || len(resp.References) != 1 || resp.Degraded {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleAsk_MissingQuestion(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, jsonRequest(t, "POST", "/api/ask", `{"target": "law"}`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleAsk_CompletionUnavailableServesReferences(t *testing.T) {
	ask := &mockAsk{
		result: askuc.Result{
			References:   []domain.Hit{{Content: "found", Similarity: 0.7}},
			QuestionType: domain.ListType,
		},
		err: fmt.Errorf("synthesize answer: %w", domain.ErrCompletionUnavailable),
	}
	srv := newTestServer(ask, nil, nil, nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, jsonRequest(t, "POST", "/api/ask", `{"question": "q"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for degraded response", rr.Code)
	}
	var resp askResponse
	decode(t, rr, &resp)
	if !resp.Degraded {
		t.Error("expected degraded flag")
	}
	if len(resp.References) != 1 || resp.References[0].Content != "found" {
		t.Errorf("references = %+v, want the retrieved hit", resp.References)
	}
}

func TestHandleSearch_Defaults(t *testing.T) {
	search := &mockSearch{hits: []domain.Hit{{Content: "a", Similarity: 0.9}}}
	srv := newTestServer(nil, search, nil, nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, jsonRequest(t, "POST", "/api/search", `{"query": "hello"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if search.lastCollection != registry.DefaultCollection {
		t.Errorf("collection = %q, want default", search.lastCollection)
	}
	if search.lastTopK != defaultSearchTopK {
		t.Errorf("topK = %d, want %d", search.lastTopK, defaultSearchTopK)
	}

	var resp searchResponse
	decode(t, rr, &resp)
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleSearch_ErrorDegradesToEmpty(t *testing.T) {
	search := &mockSearch{err: domain.ErrEmbeddingProviderError}
	srv := newTestServer(nil, search, nil, nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, jsonRequest(t, "POST", "/api/search", `{"query": "hello"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp searchResponse
	decode(t, rr, &resp)
	if resp.Count != 0 || len(resp.Results) != 0 {
		t.Errorf("response = %+v, want empty result set", resp)
	}
}

func TestHandleStatus(t *testing.T) {
	status := &mockStatus{statuses: map[string]registry.Status{
		"law": {Loaded: true, DocumentCount: 42, Path: "data/law.vectors"},
		"all": {Loaded: false},
	}}
	srv := newTestServer(nil, nil, status, nil)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]registry.Status
	decode(t, rr, &resp)
	if !resp["law"].Loaded || resp["law"].DocumentCount != 42 {
		t.Errorf("law status = %+v", resp["law"])
	}

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest("GET", "/api/status?collection=law", http.NoBody))
	var single registry.Status
	decode(t, rr, &single)
	if single.DocumentCount != 42 {
		t.Errorf("single status = %+v", single)
	}
}

func TestHandleHealth_Degraded503(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"embedding": healthuc.CheckError},
	}}
	srv := newTestServer(nil, nil, nil, health)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func jsonRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
