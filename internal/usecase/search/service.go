// Package search implements similarity search over named collections:
// embed the query, run the index, join hits with their metadata.
package search

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/metrics"
)

// NoMinSimilarity disables the minimum-similarity cutoff.
var NoMinSimilarity = float32(math.Inf(-1))

// Service handles similarity search across collections.
type Service struct {
	colls  Collections
	embed  Embedder
	logger *zap.Logger
}

// New creates a search service.
func New(colls Collections, embed Embedder, logger *zap.Logger) *Service {
	return &Service{colls: colls, embed: embed, logger: logger}
}

// Search returns up to topK hits for the query against the named collection,
// ordered by descending similarity (ties by index ordinal). Hits below
// minSimilarity are dropped; pass NoMinSimilarity for unfiltered results.
//
// An unavailable collection yields an empty result, not an error. An
// embedding failure is returned as an error; callers treat it as "no
// references available".
func (s *Service) Search(
	ctx context.Context, query, collection string, topK int, minSimilarity float32,
) ([]domain.Hit, error) {
	col, ok := s.colls.Get(ctx, collection)
	if !ok {
		metrics.SearchRequestsTotal.WithLabelValues(collection, "unavailable").Inc()
		return []domain.Hit{}, nil
	}

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(collection, "error").Inc()
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	matches, err := col.Search(embRes.Embedding, topK)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(collection, "error").Inc()
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	hits := make([]domain.Hit, 0, len(matches))
	for _, m := range matches {
		doc, ok := col.Doc(m.Ordinal)
		if !ok {
			// Index/metadata desync: drop the hit, keep the search alive.
			s.logger.Warn("match ordinal out of metadata range",
				zap.String("collection", collection),
				zap.Int("ordinal", m.Ordinal),
				zap.Int("documents", col.Size()),
			)
			continue
		}
		if doc.Content == "" {
			continue
		}
		if m.Score < minSimilarity {
			continue
		}
		hits = append(hits, domain.Hit{
			Content:    doc.Content,
			Title:      doc.Title,
			Similarity: m.Score,
			DocType:    doc.DocType,
			Metadata:   doc.Extra,
		})
	}

	metrics.SearchRequestsTotal.WithLabelValues(collection, "success").Inc()
	metrics.SearchHitsReturned.WithLabelValues(collection).Observe(float64(len(hits)))

	return hits, nil
}
