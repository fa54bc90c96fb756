package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/index"
)

// --- Mocks ---

type mockCollection struct {
	matches []index.Match
	err     error
	docs    []domain.Document
}

func (m *mockCollection) Search(_ []float32, k int) ([]index.Match, error) {
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.matches) {
		return m.matches[:k], nil
	}
	return m.matches, nil
}

func (m *mockCollection) Doc(ordinal int) (domain.Document, bool) {
	if ordinal < 0 || ordinal >= len(m.docs) {
		return domain.Document{}, false
	}
	return m.docs[ordinal], true
}

func (m *mockCollection) Size() int { return len(m.docs) }

type mockCollections struct {
	cols map[string]*mockCollection
}

func (m *mockCollections) Get(_ context.Context, name string) (Collection, bool) {
	col, ok := m.cols[name]
	if !ok {
		return nil, false
	}
	return col, true
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

// --- Tests ---

func TestSearch_RankedHits(t *testing.T) {
	// Known scenario: similarities 0.9, 0.5, 0.1 for docs A, B, C.
	col := &mockCollection{
		matches: []index.Match{
			{Score: 0.9, Ordinal: 0},
			{Score: 0.5, Ordinal: 1},
			{Score: 0.1, Ordinal: 2},
		},
		docs: []domain.Document{
			{Content: "doc A", DocType: "press_release"},
			{Content: "doc B", DocType: "press_release"},
			{Content: "doc C", DocType: "press_release"},
		},
	}
	svc := New(
		&mockCollections{cols: map[string]*mockCollection{"press_release": col}},
		&mockEmbedder{vec: []float32{1, 0}},
		zap.NewNop(),
	)

	hits, err := svc.Search(context.Background(), "query Q", "press_release", 2, NoMinSimilarity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Content != "doc A" || hits[1].Content != "doc B" {
		t.Errorf("hits = [%q %q], want [doc A, doc B]", hits[0].Content, hits[1].Content)
	}
	if hits[0].Similarity != 0.9 || hits[1].Similarity != 0.5 {
		t.Errorf("similarities = [%f %f], want [0.9 0.5]", hits[0].Similarity, hits[1].Similarity)
	}
	for _, h := range hits {
		if h.Content == "" {
			t.Error("hit has empty content")
		}
	}
}

func TestSearch_MinSimilarityCutoff(t *testing.T) {
	col := &mockCollection{
		matches: []index.Match{
			{Score: 0.8, Ordinal: 0},
			{Score: 0.34, Ordinal: 1},
		},
		docs: []domain.Document{
			{Content: "kept"},
			{Content: "dropped"},
		},
	}
	svc := New(
		&mockCollections{cols: map[string]*mockCollection{"law": col}},
		&mockEmbedder{vec: []float32{1}},
		zap.NewNop(),
	)

	hits, err := svc.Search(context.Background(), "q", "law", 5, 0.35)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "kept" {
		t.Fatalf("hits = %+v, want only the 0.8 hit", hits)
	}

	// Without a threshold both come back.
	hits, err = svc.Search(context.Background(), "q", "law", 5, NoMinSimilarity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 unfiltered hits, got %d", len(hits))
	}
}

func TestSearch_SkipsEmptyContent(t *testing.T) {
	col := &mockCollection{
		matches: []index.Match{
			{Score: 0.9, Ordinal: 0},
			{Score: 0.8, Ordinal: 1},
		},
		docs: []domain.Document{
			{Content: ""},
			{Content: "real"},
		},
	}
	svc := New(
		&mockCollections{cols: map[string]*mockCollection{"all": col}},
		&mockEmbedder{vec: []float32{1}},
		zap.NewNop(),
	)

	hits, err := svc.Search(context.Background(), "q", "all", 5, NoMinSimilarity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "real" {
		t.Fatalf("hits = %+v, want only the non-empty doc", hits)
	}
}

func TestSearch_OrdinalOutOfRangeDropped(t *testing.T) {
	// Simulated desync: index claims 3 rows, metadata has 2.
	col := &mockCollection{
		matches: []index.Match{
			{Score: 0.9, Ordinal: 2}, // no such document
			{Score: 0.5, Ordinal: 0},
		},
		docs: []domain.Document{
			{Content: "first"},
			{Content: "second"},
		},
	}
	svc := New(
		&mockCollections{cols: map[string]*mockCollection{"all": col}},
		&mockEmbedder{vec: []float32{1}},
		zap.NewNop(),
	)

	hits, err := svc.Search(context.Background(), "q", "all", 5, NoMinSimilarity)
	if err != nil {
		t.Fatalf("desync must not raise: %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "first" {
		t.Fatalf("hits = %+v, want only the in-range hit", hits)
	}
}

func TestSearch_UnavailableCollectionReturnsEmpty(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{1}}
	svc := New(&mockCollections{cols: nil}, embed, zap.NewNop())

	hits, err := svc.Search(context.Background(), "q", "guidance", 5, NoMinSimilarity)
	if err != nil {
		t.Fatalf("missing collection must not raise: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Fatalf("hits = %v, want empty non-nil slice", hits)
	}
	if embed.called != 0 {
		t.Error("no embedding call should happen for an unavailable collection")
	}
}

func TestSearch_EmbedErrorPropagates(t *testing.T) {
	col := &mockCollection{docs: []domain.Document{{Content: "x"}}}
	svc := New(
		&mockCollections{cols: map[string]*mockCollection{"all": col}},
		&mockEmbedder{err: domain.ErrEmbeddingProviderError},
		zap.NewNop(),
	)

	_, err := svc.Search(context.Background(), "q", "all", 5, NoMinSimilarity)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("error = %v, want ErrEmbeddingProviderError", err)
	}
}
