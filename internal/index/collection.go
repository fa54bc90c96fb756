package index

import (
	"fmt"

	"github.com/civic-ai/lawdex/internal/domain"
)

// IndexedCollection couples a vector index with its parallel document list.
// The ordinal alignment (index row i describes Docs[i]) is enforced at
// construction so it cannot silently drift at query time.
type IndexedCollection struct {
	index *Flat
	docs  []domain.Document
}

// NewIndexedCollection constructs a collection from raw vectors and their
// documents. Rejects mismatched lengths; callers that tolerate desynced
// inputs must align them before constructing.
func NewIndexedCollection(vectors [][]float32, docs []domain.Document) (*IndexedCollection, error) {
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("vector count %d does not match document count %d",
			len(vectors), len(docs))
	}

	idx, err := NewFlat(vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	return &IndexedCollection{index: idx, docs: docs}, nil
}

// Size returns the number of documents in the collection.
func (c *IndexedCollection) Size() int { return len(c.docs) }

// Dim returns the embedding dimension of the underlying index.
func (c *IndexedCollection) Dim() int { return c.index.Dim() }

// Search runs a top-k query against the underlying index.
func (c *IndexedCollection) Search(query []float32, k int) ([]Match, error) {
	return c.index.Search(query, k)
}

// Doc returns the document at the given ordinal. ok is false when the ordinal
// is out of range.
func (c *IndexedCollection) Doc(ordinal int) (domain.Document, bool) {
	if ordinal < 0 || ordinal >= len(c.docs) {
		return domain.Document{}, false
	}
	return c.docs[ordinal], true
}
