package ask

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/metrics"
)

const (
	maxSubQueries       = 3
	subQueryTopK        = 3
	fallbackTopK        = 5
	mergedLimit         = 10
	fingerprintLen      = 100 // runes of content prefix
	subQueryMaxTokens   = 100
	subQueryTemperature = 0.3
)

const subQueryPrompt = `Generate 3 short search keywords or sub-questions needed to answer the
following question.

Question: %s

Output as a JSON array of strings:
["keyword1", "keyword2", "keyword3"]`

// MultiQueryRetriever broadens recall for list-type questions: the question is
// decomposed into sub-queries that are searched independently, then the hits
// are deduplicated and re-ranked globally.
type MultiQueryRetriever struct {
	search        Searcher
	complete      Completer
	minSimilarity float32
	logger        *zap.Logger
}

// NewMultiQueryRetriever creates a multi-query retriever.
func NewMultiQueryRetriever(
	search Searcher, complete Completer, minSimilarity float32, logger *zap.Logger,
) *MultiQueryRetriever {
	return &MultiQueryRetriever{
		search:        search,
		complete:      complete,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Retrieve fans the question out into sub-queries and merges the results.
// When sub-query generation fails or returns malformed JSON it falls back to
// one search with the original question, so the result set is always usable.
func (r *MultiQueryRetriever) Retrieve(
	ctx context.Context, question, collection string,
) ([]domain.Hit, error) {
	subQueries, err := r.generateSubQueries(ctx, question)
	if err != nil {
		r.logger.Warn("sub-query generation failed, falling back to single search",
			zap.Error(err))
		metrics.MultiQueryFallbacksTotal.Inc()
		return r.search.Search(ctx, question, collection, fallbackTopK, r.minSimilarity)
	}

	// Sub-query searches are independent and read-only; run them
	// concurrently but merge only after all have completed.
	results := make([][]domain.Hit, len(subQueries))
	g, gctx := errgroup.WithContext(ctx)
	for i, sq := range subQueries {
		i, sq := i, sq
		g.Go(func() error {
			hits, err := r.search.Search(gctx, sq, collection, subQueryTopK, r.minSimilarity)
			if err != nil {
				return fmt.Errorf("sub-query %q: %w", sq, err)
			}
			results[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Dedup across sub-queries: first occurrence wins, in sub-query order,
	// regardless of score.
	seen := make(map[[32]byte]struct{})
	var merged []domain.Hit
	for _, hits := range results {
		for _, hit := range hits {
			fp := fingerprint(hit.Content)
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
			merged = append(merged, hit)
		}
	}

	// Global re-rank: a hit from a later sub-query can outrank an earlier one.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})

	if len(merged) > mergedLimit {
		merged = merged[:mergedLimit]
	}
	return merged, nil
}

func (r *MultiQueryRetriever) generateSubQueries(ctx context.Context, question string) ([]string, error) {
	raw, err := r.complete.Complete(
		ctx, fmt.Sprintf(subQueryPrompt, question), subQueryMaxTokens, subQueryTemperature,
	)
	if err != nil {
		return nil, fmt.Errorf("generate sub-queries: %w", err)
	}

	var queries []string
	if err := json.Unmarshal([]byte(raw), &queries); err != nil {
		return nil, fmt.Errorf("parse sub-queries %q: %w", raw, err)
	}

	out := queries[:0]
	for _, q := range queries {
		if strings.TrimSpace(q) != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable sub-queries in %q", raw)
	}
	if len(out) > maxSubQueries {
		out = out[:maxSubQueries]
	}
	return out, nil
}

// fingerprint hashes the first fingerprintLen runes of content so duplicates
// surfaced by different sub-queries collapse to one hit.
func fingerprint(content string) [32]byte {
	runes := []rune(content)
	if len(runes) > fingerprintLen {
		runes = runes[:fingerprintLen]
	}
	return sha256.Sum256([]byte(string(runes)))
}
