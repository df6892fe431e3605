package docstore

import (
	"context"

	"github.com/wardesk/faqdex/internal/domain"
)

// Embedder produces document vectors for indexing.
type Embedder interface {
	Embed(ctx context.Context, text string, intent domain.Intent) ([]float32, error)
}

// VectorStore is the slice of the vector store the document store needs.
type VectorStore interface {
	GetByID(ctx context.Context, id string) (*domain.StoredDoc, error)
	GetAll(ctx context.Context) ([]domain.StoredDoc, error)
	Upsert(ctx context.Context, id string, vector []float32, embedText string, doc domain.Document) error
	Delete(ctx context.Context, id string) (bool, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// AssetRemover cascades image deletion when a document is removed.
type AssetRemover interface {
	RemoveAssets(ctx context.Context, refs string) error
}
