package ask

import (
	"context"

	"github.com/civic-ai/lawdex/internal/domain"
)

// Searcher runs a similarity search against a named collection.
type Searcher interface {
	Search(ctx context.Context, query, collection string, topK int, minSimilarity float32) ([]domain.Hit, error)
}

// Completer is re-exported here for test mocks; the ask usecase is the only
// consumer of text completion in the retrieval core.
type Completer = domain.Completer
