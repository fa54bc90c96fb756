package ask

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/metrics"
)

const classifyMaxTokens = 20

const classifyPrompt = `Classify the following question into exactly one category.

Question: %s

Categories:
- list_type: asks to enumerate multiple items, kinds, cases, or examples
- single_case: asks about one specific case or situation
- definition: asks what a term or concept means
- period: asks about a period, deadline, or point in time
- general: anything else

Reply with the category name only (e.g. list_type).`

// Classifier maps a free-text question to an intent category via one
// completion call.
type Classifier struct {
	complete Completer
	logger   *zap.Logger
}

// NewClassifier creates a question classifier.
func NewClassifier(complete Completer, logger *zap.Logger) *Classifier {
	return &Classifier{complete: complete, logger: logger}
}

// Classify returns the question's intent category. Any provider error or
// unrecognized response degrades to General; classification must never block
// retrieval.
func (c *Classifier) Classify(ctx context.Context, question string) domain.QuestionType {
	raw, err := c.complete.Complete(ctx, fmt.Sprintf(classifyPrompt, question), classifyMaxTokens, 0)
	if err != nil {
		c.logger.Warn("question classification failed, defaulting to general", zap.Error(err))
		metrics.QuestionTypesTotal.WithLabelValues(string(domain.General)).Inc()
		return domain.General
	}

	qType := domain.ParseQuestionType(raw)
	metrics.QuestionTypesTotal.WithLabelValues(string(qType)).Inc()
	return qType
}
