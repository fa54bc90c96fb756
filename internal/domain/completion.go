package domain

import "context"

// Completer is the text-completion contract used for question classification,
// sub-query generation, and answer synthesis.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}
