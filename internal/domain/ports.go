package domain

import "context"

// Intent tells the embedding provider what the vector will be used for.
// Providers may produce different vectors per intent.
type Intent string

const (
	ForIndexing Intent = "indexing"
	ForQuery    Intent = "query"
)

// Embedder converts text into a fixed-length vector.
// A failure must surface as an error, never as a silently empty vector.
type Embedder interface {
	Embed(ctx context.Context, text string, intent Intent) ([]float32, error)
}

// Filter restricts a vector query to matching metadata.
// A nil *Filter means no restriction.
type Filter struct {
	Category string
}

// VectorStore is a content-addressed index of (id → vector, text, metadata).
// Implementations must apply their own timeouts and may not block indefinitely.
type VectorStore interface {
	// Query returns up to limit nearest neighbors ordered by ascending distance.
	Query(ctx context.Context, vector []float32, limit int, filter *Filter) ([]ScoredMatch, error)
	// GetByID returns the stored document, or ErrDocumentNotFound.
	GetByID(ctx context.Context, id string) (*StoredDoc, error)
	// GetAll enumerates every stored document.
	GetAll(ctx context.Context) ([]StoredDoc, error)
	// Upsert inserts or replaces a document under id.
	Upsert(ctx context.Context, id string, vector []float32, embedText string, doc Document) error
	// Delete removes a document. Returns false (not an error) when id is absent.
	Delete(ctx context.Context, id string) (bool, error)
	// ListIDs returns every stored id without metadata. Used for id assignment.
	ListIDs(ctx context.Context) ([]string, error)
}

// ChatGrader produces structured LLM output. Implementations derive a JSON
// schema from out's type, enforce it on the model response, and unmarshal the
// validated response into out. Malformed output is the implementation's
// problem: retry internally or fail outright.
type ChatGrader interface {
	GenerateStructured(ctx context.Context, prompt, systemPrompt string, out any) error
}

// AssetRemover deletes binary assets referenced by a document.
// The document delete cascade calls it before removing the vector entry.
type AssetRemover interface {
	RemoveAssets(ctx context.Context, refs string) error
}
