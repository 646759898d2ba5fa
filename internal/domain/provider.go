package domain

import "context"

// Embedder turns texts into unit-norm vectors dimension-consistent with the
// catalog's stored event vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// Reranker scores (query, document) pairs with a cross-encoder. Scores are
// probability-like relevance values, higher is better, aligned positionally
// with documents. A nil Reranker is a supported degraded mode: the matcher
// then runs on cosine similarity alone.
type Reranker interface {
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
	ModelName() string
}
