// Package index implements a flat inner-product vector index. Vectors are
// L2-normalized at construction and queries are normalized before scoring, so
// the inner product behaves like cosine similarity.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/civic-ai/lawdex/internal/domain"
)

// Match pairs a similarity score with the ordinal of the matched vector.
type Match struct {
	Score   float32
	Ordinal int
}

// Flat is a brute-force inner-product index over normalized vectors.
// Read-only after construction; safe for unbounded concurrent readers.
type Flat struct {
	vectors [][]float32
	dim     int
}

// NewFlat builds an index over the given vectors, normalizing each row.
// All rows must share the same dimension.
func NewFlat(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return &Flat{}, nil
	}

	dim := len(vectors[0])
	rows := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d: %w",
				i, len(v), dim, domain.ErrVectorDimMismatch)
		}
		rows[i] = Normalize(v)
	}

	return &Flat{vectors: rows, dim: dim}, nil
}

// Size returns the number of indexed vectors.
func (f *Flat) Size() int { return len(f.vectors) }

// Dim returns the vector dimension, or 0 for an empty index.
func (f *Flat) Dim() int { return f.dim }

// Search returns up to k matches ordered by descending score, ties broken by
// ascending ordinal. If k exceeds the index size, all matches are returned.
func (f *Flat) Search(query []float32, k int) ([]Match, error) {
	if len(f.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d: %w",
			len(query), f.dim, domain.ErrVectorDimMismatch)
	}

	q := Normalize(query)

	matches := make([]Match, len(f.vectors))
	for i, v := range f.vectors {
		matches[i] = Match{Score: dot(q, v), Ordinal: i}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Ordinal < matches[j].Ordinal
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Normalize returns an L2-normalized copy of v. Zero vectors are returned
// as-is (their similarity to anything is 0).
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
