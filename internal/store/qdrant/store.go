// Package qdrant implements the vector store on a Qdrant instance over gRPC.
// Qdrant reports cosine *similarity* (1 = identical); this adapter converts
// to the cosine distance the engine expects (distance = 1 − score) so the
// scoring formula stays uniform across backends.
package qdrant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/wardesk/faqdex/internal/domain"
)

// Payload keys mirror the redis hash field names.
const (
	payloadCategory  = "category"
	payloadTitle     = "title"
	payloadAnswer    = "answer_body"
	payloadKeywords  = "keywords"
	payloadImageRefs = "image_refs"
	payloadSourceURL = "source_url"
	payloadEmbedText = "embed_text"
)

// scrollPageSize bounds enumeration. The corpus is a curated FAQ set, far
// below this.
const scrollPageSize = 10000

// Config holds connection parameters for a Qdrant store.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	// Dimensions is the embedding vector size, required to create the collection.
	Dimensions int
}

// Store implements domain.VectorStore backed by Qdrant.
type Store struct {
	client     *qdrant.Client
	collection string
}

var _ domain.VectorStore = (*Store)(nil)

// NewStore creates a Qdrant store, ensuring the target collection exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: dimensions is required")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: create client: %w", err)
	}

	s := &Store{client: client, collection: cfg.Collection}
	if err := s.ensureCollection(ctx, cfg.Dimensions); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ensureCollection(ctx context.Context, dimensions int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant: check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %q: %w", s.collection, err)
	}
	return nil
}

// Query performs a KNN search, optionally pre-filtered on category.
func (s *Store) Query(
	ctx context.Context, vector []float32, limit int, filter *domain.Filter,
) ([]domain.ScoredMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("qdrant: query vector is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("qdrant: limit must be positive")
	}

	lim := uint64(limit)
	req := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &lim,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter != nil && filter.Category != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(payloadCategory, filter.Category)},
		}
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant: knn search: %w", err)
	}

	matches := make([]domain.ScoredMatch, 0, len(points))
	for _, p := range points {
		matches = append(matches, domain.ScoredMatch{
			StoredDoc: docFromPayload(pointIDString(p.Id), p.Payload),
			// similarity → distance, keeping the engine's formula valid
			Distance: 1 - float64(p.Score),
		})
	}
	return matches, nil
}

// GetByID returns a stored document or domain.ErrDocumentNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.StoredDoc, error) {
	pid, err := pointID(id)
	if err != nil {
		return nil, fmt.Errorf("qdrant: id %s: %w", id, domain.ErrDocumentNotFound)
	}

	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{pid},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: get %s: %w", id, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("qdrant: id %s: %w", id, domain.ErrDocumentNotFound)
	}

	doc := docFromPayload(id, points[0].Payload)
	return &doc, nil
}

// GetAll enumerates the collection via a single scroll page.
func (s *Store) GetAll(ctx context.Context) ([]domain.StoredDoc, error) {
	limit := uint32(scrollPageSize)
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: scroll: %w", err)
	}

	docs := make([]domain.StoredDoc, 0, len(points))
	for _, p := range points {
		docs = append(docs, docFromPayload(pointIDString(p.Id), p.Payload))
	}
	return docs, nil
}

// Upsert stores the document as one point. IDs are numeric strings and map
// directly to Qdrant numeric point ids.
func (s *Store) Upsert(
	ctx context.Context, id string, vector []float32, embedText string, doc domain.Document,
) error {
	if len(vector) == 0 {
		return fmt.Errorf("qdrant: upsert %s: %w", id, domain.ErrEmptyEmbedding)
	}
	pid, err := pointID(id)
	if err != nil {
		return fmt.Errorf("qdrant: upsert: %w", err)
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points: []*qdrant.PointStruct{{
			Id:      pid,
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadCategory:  doc.Category,
				payloadTitle:     doc.Title,
				payloadAnswer:    doc.AnswerBody,
				payloadKeywords:  doc.Keywords,
				payloadImageRefs: doc.ImageRefs,
				payloadSourceURL: doc.SourceURL,
				payloadEmbedText: embedText,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %s: %w", id, err)
	}
	return nil
}

// Delete removes a point. Absent ids return (false, nil).
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	pid, err := pointID(id)
	if err != nil {
		return false, nil
	}

	// Qdrant's delete result does not report whether the point existed.
	existing, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{pid},
	})
	if err != nil {
		return false, fmt.Errorf("qdrant: delete %s: %w", id, err)
	}
	if len(existing) == 0 {
		return false, nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(pid),
	})
	if err != nil {
		return false, fmt.Errorf("qdrant: delete %s: %w", id, err)
	}
	return true, nil
}

// ListIDs enumerates point ids without payloads.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	limit := uint32(scrollPageSize)
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: scroll ids: %w", err)
	}

	ids := make([]string, 0, len(points))
	for _, p := range points {
		ids = append(ids, pointIDString(p.Id))
	}
	return ids, nil
}

func pointID(id string) (*qdrant.PointId, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("non-numeric id %q: %w", id, domain.ErrInvalidInput)
	}
	return qdrant.NewIDNum(n), nil
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func docFromPayload(id string, payload map[string]*qdrant.Value) domain.StoredDoc {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	return domain.StoredDoc{
		Document: domain.Document{
			ID:         id,
			Category:   get(payloadCategory),
			Title:      get(payloadTitle),
			AnswerBody: get(payloadAnswer),
			Keywords:   get(payloadKeywords),
			ImageRefs:  get(payloadImageRefs),
			SourceURL:  get(payloadSourceURL),
		},
		EmbedText: get(payloadEmbedText),
	}
}
