// Package ask orchestrates retrieval-augmented question answering: classify
// the question, retrieve references, synthesize an answer over them.
package ask

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
)

const (
	answerMaxTokens   = 1500
	answerTemperature = 0.7
	// referenceLimit caps the references echoed back to the caller.
	referenceLimit = 3
	// contextLimit caps the references fed into answer synthesis.
	contextLimit = 5
	// refContentLimit caps each reference's content in the prompt, in runes.
	refContentLimit = 800
)

// NoInfoAnswer is the fixed degraded answer when retrieval yields nothing.
const NoInfoAnswer = "No relevant information was found. Please rephrase your question."

const answerListPrompt = `Answer the question using the reference material below.

Question: %s

References:
%s

Guidelines:
1. List as many relevant items from the references as possible
2. Include a short explanation for each item
3. Organize with numbering or bullet points
4. Do not speculate beyond the references`

const answerGeneralPrompt = `Answer the question using the reference material below.

Question: %s

References:
%s

Guidelines:
1. Base the answer strictly on the references
2. Cite specific statutes or precedents where present
3. Do not speculate beyond the references
4. Explain clearly and plainly`

// Result is the outcome of one Ask call.
type Result struct {
	Answer       string              `json:"answer"`
	References   []domain.Hit        `json:"references"`
	QuestionType domain.QuestionType `json:"question_type"`
}

// Service answers questions over the configured collections.
type Service struct {
	classifier    *Classifier
	multi         *MultiQueryRetriever
	search        Searcher
	complete      Completer
	topK          int
	minSimilarity float32
	logger        *zap.Logger
}

// Config bundles the ask service dependencies and tuning.
type Config struct {
	Classifier    *Classifier
	Multi         *MultiQueryRetriever
	Search        Searcher
	Complete      Completer
	TopK          int
	MinSimilarity float32
	Logger        *zap.Logger
}

// New creates an ask service.
func New(cfg Config) *Service {
	return &Service{
		classifier:    cfg.Classifier,
		multi:         cfg.Multi,
		search:        cfg.Search,
		complete:      cfg.Complete,
		topK:          cfg.TopK,
		minSimilarity: cfg.MinSimilarity,
		logger:        cfg.Logger,
	}
}

// Ask classifies the question, retrieves references from the target
// collection, and synthesizes an answer.
//
// Retrieval failures degrade to the fixed no-information answer. A completion
// failure after successful retrieval returns the references together with
// domain.ErrCompletionUnavailable so the caller can serve a degraded
// response.
func (s *Service) Ask(ctx context.Context, question, target string) (Result, error) {
	qType := s.classifier.Classify(ctx, question)

	var refs []domain.Hit
	var err error
	if qType == domain.ListType {
		refs, err = s.multi.Retrieve(ctx, question, target)
	} else {
		refs, err = s.search.Search(ctx, question, target, s.topK, s.minSimilarity)
	}
	if err != nil {
		s.logger.Warn("retrieval failed, answering without references",
			zap.String("target", target),
			zap.Error(err),
		)
		refs = nil
	}

	if len(refs) == 0 {
		return Result{
			Answer:       NoInfoAnswer,
			References:   []domain.Hit{},
			QuestionType: qType,
		}, nil
	}

	returned := refs
	if len(returned) > referenceLimit {
		returned = returned[:referenceLimit]
	}

	answer, err := s.generateAnswer(ctx, question, refs, qType)
	if err != nil {
		s.logger.Error("answer synthesis failed, returning references only",
			zap.Error(err))
		return Result{
				References:   returned,
				QuestionType: qType,
			}, fmt.Errorf("synthesize answer: %w: %w",
				domain.ErrCompletionUnavailable, err)
	}

	return Result{
		Answer:       answer,
		References:   returned,
		QuestionType: qType,
	}, nil
}

func (s *Service) generateAnswer(
	ctx context.Context, question string, refs []domain.Hit, qType domain.QuestionType,
) (string, error) {
	if len(refs) > contextLimit {
		refs = refs[:contextLimit]
	}

	var b strings.Builder
	for i, ref := range refs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Reference %d] (similarity: %.2f)\n%s",
			i+1, ref.Similarity, truncateRunes(ref.Content, refContentLimit))
	}

	promptFmt := answerGeneralPrompt
	if qType == domain.ListType {
		promptFmt = answerListPrompt
	}

	return s.complete.Complete(
		ctx, fmt.Sprintf(promptFmt, question, b.String()), answerMaxTokens, answerTemperature,
	)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
