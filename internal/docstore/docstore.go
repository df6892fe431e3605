// Package docstore manages the FAQ document lifecycle: id assignment,
// embedding-text construction, writes to the vector store and the image
// cleanup cascade on delete.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/content"
	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/logger"
)

// AutoID requests server-side id assignment on upsert.
const AutoID = "auto"

// Store coordinates document writes across the embedder, the vector store
// and the asset manager.
type Store struct {
	embedder   Embedder
	vectors    VectorStore
	assets     AssetRemover
	categories *domain.CategoryRegistry
}

// New creates a document store.
func New(
	embedder Embedder,
	vectors VectorStore,
	assets AssetRemover,
	categories *domain.CategoryRegistry,
) *Store {
	return &Store{
		embedder:   embedder,
		vectors:    vectors,
		assets:     assets,
		categories: categories,
	}
}

// NextID returns one past the highest numeric id, or "1" for an empty corpus.
// Non-numeric ids are ignored. Two concurrent writers can both observe the
// same next id; the second upsert then overwrites the first.
func (s *Store) NextID(ctx context.Context) (string, error) {
	ids, err := s.vectors.ListIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("list ids: %w", err)
	}

	max := 0
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return "1", nil
	}
	return strconv.Itoa(max + 1), nil
}

// Upsert creates or replaces a document and returns its id. An empty or
// "auto" id gets the next auto-increment id. The embedding is mandatory: a
// provider failure or empty vector aborts the write, since an unsearchable
// document would be invisible to every retrieval path.
func (s *Store) Upsert(ctx context.Context, doc domain.Document) (string, error) {
	log := logger.FromContext(ctx)

	if doc.Title == "" {
		return "", fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if doc.AnswerBody == "" {
		return "", fmt.Errorf("answer body is required: %w", domain.ErrInvalidInput)
	}

	id := doc.ID
	if id == "" || id == AutoID {
		var err error
		id, err = s.NextID(ctx)
		if err != nil {
			return "", err
		}
	}
	doc.ID = id

	if doc.ImageRefs == "" {
		doc.ImageRefs = content.NoImages
	}

	embedText := s.buildEmbedText(doc)
	vector, err := s.embedder.Embed(ctx, embedText, domain.ForIndexing)
	if err != nil {
		return "", fmt.Errorf("embed document %s: %w", id, err)
	}
	if len(vector) == 0 {
		return "", fmt.Errorf("embed document %s: %w", id, domain.ErrEmptyEmbedding)
	}

	if err := s.vectors.Upsert(ctx, id, vector, embedText, doc); err != nil {
		return "", err
	}

	log.Info("document stored",
		zap.String("id", id),
		zap.String("category", doc.Category),
		zap.String("title", doc.Title),
	)
	return id, nil
}

// Delete removes a document and its image assets. Missing documents return
// (false, nil): deleting what is already gone is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx)

	doc, err := s.vectors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return false, nil
		}
		return false, err
	}

	if refs := doc.ImageRefs; refs != "" && !strings.EqualFold(refs, content.NoImages) {
		if err := s.assets.RemoveAssets(ctx, refs); err != nil {
			// The document delete still proceeds; an orphaned image is
			// recoverable, a half-deleted document is confusing.
			log.Warn("image cleanup failed", zap.String("id", id), zap.Error(err))
		}
	}

	deleted, err := s.vectors.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	log.Info("document deleted", zap.String("id", id), zap.Bool("existed", deleted))
	return deleted, nil
}

// GetByID returns a stored document or domain.ErrDocumentNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.StoredDoc, error) {
	return s.vectors.GetByID(ctx, id)
}

// GetAll enumerates every stored document.
func (s *Store) GetAll(ctx context.Context) ([]domain.StoredDoc, error) {
	return s.vectors.GetAll(ctx)
}

// buildEmbedText renders the retrieval text: category context, title, the
// operator-curated question variations and the answer stripped of image
// markers. Field labels are in Bahasa Indonesia to match the corpus.
func (s *Store) buildEmbedText(doc domain.Document) string {
	domainStr := doc.Category
	if desc := s.categories.Description(doc.Category); desc != "" {
		domainStr = fmt.Sprintf("%s (%s)", doc.Category, desc)
	}

	return fmt.Sprintf("DOMAIN: %s\nDOKUMEN: %s\nVARIASI PERTANYAAN USER: %s\nISI KONTEN: %s",
		domainStr, doc.Title, doc.Keywords, content.StripImageMarkers(doc.AnswerBody))
}
