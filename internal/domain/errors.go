package domain

import "errors"

// Sentinel errors shared across layers.
var (
	// ErrCollectionNotLoaded signals a collection whose files are absent on disk.
	ErrCollectionNotLoaded = errors.New("collection not loaded")
	// ErrVectorDimMismatch signals a vector dimension mismatch between query and index.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a text-completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrCompletionUnavailable signals that answer synthesis failed after
	// retrieval succeeded; references are still usable.
	ErrCompletionUnavailable = errors.New("answer generation unavailable")
)
