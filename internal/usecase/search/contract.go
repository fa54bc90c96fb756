package search

import (
	"context"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/index"
	"github.com/civic-ai/lawdex/internal/registry"
)

// Collection is the read-only view of one loaded collection.
type Collection interface {
	Search(query []float32, k int) ([]index.Match, error)
	Doc(ordinal int) (domain.Document, bool)
	Size() int
}

// Collections resolves collection names to loaded collections.
// ok is false when the collection's files are absent; searches against it
// degrade to empty results.
type Collections interface {
	Get(ctx context.Context, name string) (Collection, bool)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// registryCollections bridges the concrete registry to the Collections contract.
type registryCollections struct {
	r *registry.Registry
}

// NewRegistryCollections wraps a registry as a Collections source.
func NewRegistryCollections(r *registry.Registry) Collections {
	return &registryCollections{r: r}
}

func (rc *registryCollections) Get(ctx context.Context, name string) (Collection, bool) {
	col, ok := rc.r.Get(ctx, name)
	if !ok {
		return nil, false
	}
	return col, true
}
