package engine

import (
	"context"

	"github.com/wardesk/faqdex/internal/domain"
)

// Embedder produces query vectors.
type Embedder interface {
	Embed(ctx context.Context, text string, intent domain.Intent) ([]float32, error)
}

// VectorSearcher is the slice of the vector store the engine needs.
type VectorSearcher interface {
	Query(ctx context.Context, vector []float32, limit int, filter *domain.Filter) ([]domain.ScoredMatch, error)
	GetAll(ctx context.Context) ([]domain.StoredDoc, error)
}
