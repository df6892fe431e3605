package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/wardesk/faqdex/internal/domain"
)

const docColumns = "id, category, title, answer_body, keywords, image_refs, source_url, embed_text, vector"

// Query brute-force scans the table, computing cosine distance in Go.
// The corpus is small (a curated FAQ set), so a linear scan beats the
// complexity of an ANN index here.
func (s *Store) Query(
	ctx context.Context, vector []float32, limit int, filter *domain.Filter,
) ([]domain.ScoredMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("sqlite: query vector is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("sqlite: limit must be positive")
	}

	return withRetry(ctx, s, func() ([]domain.ScoredMatch, error) {
		q := "SELECT " + docColumns + " FROM documents"
		var args []any
		if filter != nil && filter.Category != "" {
			q += " WHERE category = ?"
			args = append(args, filter.Category)
		}

		rows, err := s.db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: query documents: %w", err)
		}
		defer rows.Close()

		var matches []domain.ScoredMatch
		for rows.Next() {
			doc, vec, err := scanDoc(rows)
			if err != nil {
				return nil, err
			}
			matches = append(matches, domain.ScoredMatch{
				StoredDoc: doc,
				Distance:  cosineDistance(vector, vec),
			})
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: iterate documents: %w", err)
		}

		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Distance < matches[j].Distance
		})
		if len(matches) > limit {
			matches = matches[:limit]
		}
		return matches, nil
	})
}

// GetByID returns a stored document or domain.ErrDocumentNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.StoredDoc, error) {
	return withRetry(ctx, s, func() (*domain.StoredDoc, error) {
		row := s.db.QueryRowContext(ctx,
			"SELECT "+docColumns+" FROM documents WHERE id = ?", id)
		doc, _, err := scanDoc(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite: id %s: %w", id, domain.ErrDocumentNotFound)
		}
		if err != nil {
			return nil, err
		}
		return &doc, nil
	})
}

// GetAll enumerates every stored document.
func (s *Store) GetAll(ctx context.Context) ([]domain.StoredDoc, error) {
	return withRetry(ctx, s, func() ([]domain.StoredDoc, error) {
		rows, err := s.db.QueryContext(ctx, "SELECT "+docColumns+" FROM documents")
		if err != nil {
			return nil, fmt.Errorf("sqlite: list documents: %w", err)
		}
		defer rows.Close()

		var docs []domain.StoredDoc
		for rows.Next() {
			doc, _, err := scanDoc(rows)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: iterate documents: %w", err)
		}
		return docs, nil
	})
}

// Upsert inserts or replaces a document under id.
func (s *Store) Upsert(
	ctx context.Context, id string, vector []float32, embedText string, doc domain.Document,
) error {
	if len(vector) == 0 {
		return fmt.Errorf("sqlite: upsert %s: %w", id, domain.ErrEmptyEmbedding)
	}

	_, err := withRetry(ctx, s, func() (struct{}, error) {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO documents (id, category, title, answer_body, keywords, image_refs, source_url, embed_text, vector)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	category = excluded.category,
	title = excluded.title,
	answer_body = excluded.answer_body,
	keywords = excluded.keywords,
	image_refs = excluded.image_refs,
	source_url = excluded.source_url,
	embed_text = excluded.embed_text,
	vector = excluded.vector`,
			id, doc.Category, doc.Title, doc.AnswerBody, doc.Keywords,
			doc.ImageRefs, doc.SourceURL, embedText, vectorToBytes(vector),
		)
		if err != nil {
			return struct{}{}, fmt.Errorf("sqlite: upsert %s: %w", id, err)
		}
		return struct{}{}, nil
	})
	return err
}

// Delete removes a document. Absent ids return (false, nil).
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	return withRetry(ctx, s, func() (bool, error) {
		res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
		if err != nil {
			return false, fmt.Errorf("sqlite: delete %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("sqlite: delete %s: %w", id, err)
		}
		return n > 0, nil
	})
}

// ListIDs returns all document ids.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	return withRetry(ctx, s, func() ([]string, error) {
		rows, err := s.db.QueryContext(ctx, "SELECT id FROM documents")
		if err != nil {
			return nil, fmt.Errorf("sqlite: list ids: %w", err)
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("sqlite: scan id: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: iterate ids: %w", err)
		}
		return ids, nil
	})
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDoc(sc scanner) (domain.StoredDoc, []float32, error) {
	var doc domain.StoredDoc
	var blob []byte
	err := sc.Scan(
		&doc.ID, &doc.Category, &doc.Title, &doc.AnswerBody, &doc.Keywords,
		&doc.ImageRefs, &doc.SourceURL, &doc.EmbedText, &blob,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredDoc{}, nil, err
		}
		return domain.StoredDoc{}, nil, fmt.Errorf("sqlite: scan document: %w", err)
	}
	return doc, bytesToVector(blob), nil
}
