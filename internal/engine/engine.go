// Package engine turns vector store distances into scored, classified
// candidates.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/logger"
	"github.com/wardesk/faqdex/internal/metrics"
)

// Engine performs semantic retrieval over the document corpus.
type Engine struct {
	embedder   Embedder
	store      VectorSearcher
	categories *domain.CategoryRegistry
	thresholds domain.Thresholds
}

// New creates a retrieval engine.
func New(
	embedder Embedder,
	store VectorSearcher,
	categories *domain.CategoryRegistry,
	thresholds domain.Thresholds,
) *Engine {
	return &Engine{
		embedder:   embedder,
		store:      store,
		categories: categories,
		thresholds: thresholds,
	}
}

// Thresholds exposes the engine's scoring configuration.
func (e *Engine) Thresholds() domain.Thresholds {
	return e.thresholds
}

// Categories lists the known category codes.
func (e *Engine) Categories() []domain.Category {
	codes := e.categories.Codes()
	out := make([]domain.Category, 0, len(codes))
	for _, code := range codes {
		out = append(out, domain.Category{
			Code:        code,
			Description: e.categories.Description(code),
			BadgeColor:  e.categories.Badge(code),
		})
	}
	return out
}

// Search embeds the query and returns candidates scoring strictly above
// minScore, sorted by score descending. Embedding failures degrade to an
// empty result instead of an error: a flaky provider should read as "nothing
// found", not break the caller.
func (e *Engine) Search(
	ctx context.Context, query string, limit int, category string, minScore float64,
) ([]domain.Candidate, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	vector, err := e.embedder.Embed(ctx, query, domain.ForQuery)
	if err != nil {
		log.Warn("query embedding failed, returning no results", zap.Error(err))
		metrics.SearchRequestsTotal.WithLabelValues("embed_error").Inc()
		return nil, nil
	}
	if len(vector) == 0 {
		log.Warn("query embedding is empty, returning no results")
		metrics.SearchRequestsTotal.WithLabelValues("embed_error").Inc()
		return nil, nil
	}

	matches, err := e.store.Query(ctx, vector, limit, categoryFilter(category))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("vector search: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(matches))
	for _, m := range matches {
		score := distanceToScore(m.Distance)
		if score <= minScore {
			continue
		}
		candidates = append(candidates, e.candidate(m.Document, score))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	metrics.SearchResultsReturned.Observe(float64(len(candidates)))

	log.Debug("search complete",
		zap.Int("matches", len(matches)),
		zap.Int("candidates", len(candidates)),
		zap.Float64("min_score", minScore),
	)
	return candidates, nil
}

// SearchForBrowse lists documents for catalogue views without touching the
// embedding provider. Results are sorted by numeric id, newest (highest)
// first; malformed ids sort as 0.
func (e *Engine) SearchForBrowse(ctx context.Context, category string) ([]domain.Candidate, error) {
	docs, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	filtered := docs[:0:0]
	for _, d := range docs {
		if category != "" && category != domain.AllCategories && d.Category != category {
			continue
		}
		filtered = append(filtered, d)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return numericID(filtered[i].ID) > numericID(filtered[j].ID)
	})

	candidates := make([]domain.Candidate, 0, len(filtered))
	for _, d := range filtered {
		candidates = append(candidates, e.candidate(d.Document, 0))
	}
	return candidates, nil
}

func (e *Engine) candidate(doc domain.Document, score float64) domain.Candidate {
	return domain.Candidate{
		Document:      doc,
		Score:         score,
		ScoreClass:    domain.ClassifyScore(score, e.thresholds.HighCutoff, e.thresholds.MediumCutoff),
		CategoryBadge: e.categories.Badge(doc.Category),
	}
}

// distanceToScore maps cosine distance to a 0..100 relevance score.
// Distances above 1 (opposed vectors) clamp to 0.
func distanceToScore(distance float64) float64 {
	score := (1 - distance) * 100
	if score < 0 {
		return 0
	}
	return score
}

// categoryFilter maps the "all" sentinel and empty string to no filter.
func categoryFilter(category string) *domain.Filter {
	if category == "" || category == domain.AllCategories {
		return nil
	}
	return &domain.Filter{Category: category}
}

func numericID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}
