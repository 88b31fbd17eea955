package port

import "context"

// EmbeddingProvider abstracts text embedding generation.
type EmbeddingProvider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension reports the vector size produced by this provider.
	Dimension() int
}
