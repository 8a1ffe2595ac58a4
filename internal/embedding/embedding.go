// Package embedding provides text embedders used by the skill matcher.
package embedding

import "context"

// Embedder turns texts into vectors, one per text, in the same order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
