package domain

import "context"

// EmbeddingResult is a vector plus the token usage that produced it.
// A cache hit reports zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by embedders that can verify provider
// availability without consuming tokens.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
