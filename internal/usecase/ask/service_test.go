package ask

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/usecase/search"
)

// routingCompleter answers the classification prompt with a fixed type and
// every other prompt with a fixed body.
type routingCompleter struct {
	classifyAs string
	answer     string
	answerErr  error
	subQueries string
}

func (r *routingCompleter) Complete(_ context.Context, prompt string, _ int, _ float32) (string, error) {
	switch {
	case strings.Contains(prompt, "Reply with the category name"):
		return r.classifyAs, nil
	case strings.Contains(prompt, "JSON array"):
		if r.subQueries == "" {
			return "not json", nil
		}
		return r.subQueries, nil
	default:
		if r.answerErr != nil {
			return "", r.answerErr
		}
		return r.answer, nil
	}
}

func newAskService(searcher Searcher, completer Completer) *Service {
	logger := zap.NewNop()
	return New(Config{
		Classifier:    NewClassifier(completer, logger),
		Multi:         NewMultiQueryRetriever(searcher, completer, search.NoMinSimilarity, logger),
		Search:        searcher,
		Complete:      completer,
		TopK:          5,
		MinSimilarity: search.NoMinSimilarity,
		Logger:        logger,
	})
}

func TestAsk_ListTypeRoutesThroughMultiQuery(t *testing.T) {
	searcher := &scriptedSearcher{byQuery: map[string][]domain.Hit{
		"sq1": {{Content: "case one", Similarity: 0.8}},
		"sq2": {{Content: "case two", Similarity: 0.6}},
		"sq3": {{Content: "case three", Similarity: 0.7}},
	}}
	completer := &routingCompleter{
		classifyAs: "list_type",
		subQueries: `["sq1", "sq2", "sq3"]`,
		answer:     "synthesized list answer",
	}

	// A list-style question: "what kinds of election law violations exist".
	res, err := newAskService(searcher, completer).Ask(
		context.Background(), "충주시 관내 선거법 위반 사례 종류를 알려주세요", "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.QuestionType != domain.ListType {
		t.Errorf("question type = %q, want list_type", res.QuestionType)
	}
	// Multi-query path: three sub-query searches, not one direct search.
	if len(searcher.calls) != 3 {
		t.Fatalf("got %d searches, want 3 sub-query searches", len(searcher.calls))
	}
	for _, call := range searcher.calls {
		if strings.HasPrefix(call.query, "충주시") {
			t.Error("original question must not be searched directly on the list path")
		}
	}
	if res.Answer != "synthesized list answer" {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.References) != 3 {
		t.Errorf("references = %d, want 3", len(res.References))
	}
	if res.References[0].Content != "case one" {
		t.Errorf("references[0] = %q, want the top-ranked hit", res.References[0].Content)
	}
}

func TestAsk_GeneralUsesSingleSearch(t *testing.T) {
	searcher := &scriptedSearcher{byQuery: map[string][]domain.Hit{
		"plain question": {{Content: "ref", Similarity: 0.9}},
	}}
	completer := &routingCompleter{classifyAs: "general", answer: "plain answer"}

	res, err := newAskService(searcher, completer).Ask(context.Background(), "plain question", "law")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(searcher.calls) != 1 {
		t.Fatalf("got %d searches, want 1", len(searcher.calls))
	}
	if call := searcher.calls[0]; call.query != "plain question" || call.topK != 5 {
		t.Errorf("call = %+v, want direct search with topK=5", call)
	}
	if res.Answer != "plain answer" {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestAsk_NoReferencesShortCircuits(t *testing.T) {
	searcher := &scriptedSearcher{byQuery: map[string][]domain.Hit{}}
	completer := &routingCompleter{classifyAs: "general", answer: "should not be used"}

	res, err := newAskService(searcher, completer).Ask(context.Background(), "unknown topic", "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Answer != NoInfoAnswer {
		t.Errorf("answer = %q, want the fixed no-information answer", res.Answer)
	}
	if len(res.References) != 0 {
		t.Errorf("references = %d, want 0", len(res.References))
	}
}

func TestAsk_RetrievalErrorDegradesToNoInfo(t *testing.T) {
	searcher := &scriptedSearcher{err: domain.ErrEmbeddingProviderError}
	completer := &routingCompleter{classifyAs: "general"}

	res, err := newAskService(searcher, completer).Ask(context.Background(), "q", "all")
	if err != nil {
		t.Fatalf("retrieval failure must not surface: %v", err)
	}
	if res.Answer != NoInfoAnswer {
		t.Errorf("answer = %q, want the fixed no-information answer", res.Answer)
	}
}

func TestAsk_CompletionFailureStillReturnsReferences(t *testing.T) {
	searcher := &scriptedSearcher{byQuery: map[string][]domain.Hit{
		"q": {{Content: "found ref", Similarity: 0.8}},
	}}
	completer := &routingCompleter{classifyAs: "general", answerErr: errors.New("model down")}

	res, err := newAskService(searcher, completer).Ask(context.Background(), "q", "all")
	if !errors.Is(err, domain.ErrCompletionUnavailable) {
		t.Fatalf("error = %v, want ErrCompletionUnavailable", err)
	}
	if len(res.References) != 1 || res.References[0].Content != "found ref" {
		t.Errorf("references = %+v, want the retrieved hit", res.References)
	}
	if res.Answer != "" {
		t.Errorf("answer = %q, want empty on synthesis failure", res.Answer)
	}
}
