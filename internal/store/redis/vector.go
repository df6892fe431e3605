package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/redis/rueidis"

	"github.com/wardesk/faqdex/internal/domain"
)

// Hash field names. vector holds the float32 LE blob the index scans.
const (
	fieldCategory  = "category"
	fieldTitle     = "title"
	fieldAnswer    = "answer_body"
	fieldKeywords  = "keywords"
	fieldImageRefs = "image_refs"
	fieldSourceURL = "source_url"
	fieldEmbedText = "embed_text"
	fieldVector    = "vector"
)

// Upsert stores the document as a hash under <prefix>doc:<id>.
func (s *Store) Upsert(
	ctx context.Context, id string, vector []float32, embedText string, doc domain.Document,
) error {
	if len(vector) == 0 {
		return fmt.Errorf("redis: upsert %s: %w", id, domain.ErrEmptyEmbedding)
	}

	cmd := s.b().Hset().Key(s.docKey(id)).FieldValue().
		FieldValue(fieldCategory, doc.Category).
		FieldValue(fieldTitle, doc.Title).
		FieldValue(fieldAnswer, doc.AnswerBody).
		FieldValue(fieldKeywords, doc.Keywords).
		FieldValue(fieldImageRefs, doc.ImageRefs).
		FieldValue(fieldSourceURL, doc.SourceURL).
		FieldValue(fieldEmbedText, embedText).
		FieldValue(fieldVector, vectorToBytes(vector)).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis: upsert %s: %w", id, err)
	}
	return nil
}

// GetByID returns a stored document or domain.ErrDocumentNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.StoredDoc, error) {
	cmd := s.b().Hgetall().Key(s.docKey(id)).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", id, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("redis: id %s: %w", id, domain.ErrDocumentNotFound)
	}
	doc := docFromFields(id, m)
	return &doc, nil
}

// GetAll scans every document key and fetches the hashes in one round trip.
func (s *Store) GetAll(ctx context.Context) ([]domain.StoredDoc, error) {
	ids, err := s.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		cmds[i] = s.b().Hgetall().Key(s.docKey(id)).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	docs := make([]domain.StoredDoc, 0, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("redis: get all %s: %w", ids[i], err)
		}
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		docs = append(docs, docFromFields(ids[i], m))
	}
	return docs, nil
}

// Delete removes a document. Absent ids return (false, nil).
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	cmd := s.b().Del().Key(s.docKey(id)).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("redis: delete %s: %w", id, err)
	}
	return n > 0, nil
}

// ListIDs scans keys under the document prefix and strips it off.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	prefix := s.docKey("")
	var ids []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(prefix + "*").Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("redis: scan ids: %w", err)
		}
		for _, key := range res.Elements {
			ids = append(ids, strings.TrimPrefix(key, prefix))
		}
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return ids, nil
}

func docFromFields(id string, m map[string]string) domain.StoredDoc {
	return domain.StoredDoc{
		Document: domain.Document{
			ID:         id,
			Category:   m[fieldCategory],
			Title:      m[fieldTitle],
			AnswerBody: m[fieldAnswer],
			Keywords:   m[fieldKeywords],
			ImageRefs:  m[fieldImageRefs],
			SourceURL:  m[fieldSourceURL],
		},
		EmbedText: m[fieldEmbedText],
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
