// Package selector resolves a user question to at most one answer.
// "No match" is an ordinary outcome, returned as a nil candidate with a nil
// error; errors are reserved for infrastructure failures.
package selector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/logger"
	"github.com/wardesk/faqdex/internal/metrics"
)

// Selector picks the single best answer for a query.
type Selector struct {
	searcher   Searcher
	grader     domain.ChatGrader
	proGrader  domain.ChatGrader
	settings   SettingsSource
	thresholds domain.Thresholds
}

// New creates a selector. proGrader may equal grader when no separate pro
// model is configured.
func New(
	searcher Searcher,
	grader, proGrader domain.ChatGrader,
	settings SettingsSource,
	thresholds domain.Thresholds,
) *Selector {
	return &Selector{
		searcher:   searcher,
		grader:     grader,
		proGrader:  proGrader,
		settings:   settings,
		thresholds: thresholds,
	}
}

// Resolve answers a query in the given mode. An empty mode falls back to the
// operator-configured default. allowedCategories whitelists candidate
// categories; nil or a list containing "all" disables the filter.
func (s *Selector) Resolve(
	ctx context.Context, query string, mode domain.SelectionMode, allowedCategories []string,
) (*domain.Candidate, error) {
	if mode == "" {
		mode = s.settings.Load().SearchMode
	}

	switch mode {
	case domain.ModeImmediate:
		return s.resolveImmediate(ctx, query, allowedCategories)
	case domain.ModeAgent:
		return s.resolveAgent(ctx, query, allowedCategories, s.grader, mode)
	case domain.ModeAgentPro:
		return s.resolveAgent(ctx, query, allowedCategories, s.proGrader, mode)
	default:
		return nil, fmt.Errorf("unknown selection mode %q: %w", mode, domain.ErrInvalidInput)
	}
}

// resolveImmediate returns the top vector hit over the relevance threshold,
// no LLM involved.
func (s *Selector) resolveImmediate(
	ctx context.Context, query string, allowedCategories []string,
) (*domain.Candidate, error) {
	candidates, err := s.searcher.Search(ctx, query,
		s.thresholds.BotResultCount, "", s.thresholds.MinRelevance)
	if err != nil {
		return nil, err
	}

	candidates = filterByCategories(candidates, allowedCategories)
	if len(candidates) == 0 {
		metrics.SelectionOutcomesTotal.WithLabelValues(string(domain.ModeImmediate), "no_match").Inc()
		return nil, nil
	}

	metrics.SelectionOutcomesTotal.WithLabelValues(string(domain.ModeImmediate), "answered").Inc()
	return &candidates[0], nil
}

// resolveAgent retrieves a wide candidate pool at a low threshold, then asks
// the grading model for the single best document.
func (s *Selector) resolveAgent(
	ctx context.Context, query string, allowedCategories []string,
	grader domain.ChatGrader, mode domain.SelectionMode,
) (*domain.Candidate, error) {
	log := logger.FromContext(ctx)

	candidates, err := s.searcher.Search(ctx, query,
		s.thresholds.AgentPoolSize, "", s.thresholds.AgentMinScore)
	if err != nil {
		return nil, err
	}

	candidates = filterByCategories(candidates, allowedCategories)
	if len(candidates) == 0 {
		log.Info("agent: no candidates found")
		metrics.SelectionOutcomesTotal.WithLabelValues(string(mode), "no_match").Inc()
		return nil, nil
	}

	// A lone candidate needs no grading.
	if len(candidates) == 1 {
		log.Info("agent: single candidate, returning directly",
			zap.String("id", candidates[0].ID))
		metrics.SelectionOutcomesTotal.WithLabelValues(string(mode), "answered").Inc()
		return &candidates[0], nil
	}

	var outcome domain.GradingOutcome
	err = grader.GenerateStructured(ctx, buildGraderPrompt(query, candidates), graderSystemPrompt, &outcome)
	if err != nil {
		// Grading is best-effort: fall back to the top vector hit.
		log.Warn("agent: grading failed, falling back to top vector result", zap.Error(err))
		metrics.SelectionOutcomesTotal.WithLabelValues(string(mode), "fallback").Inc()
		return &candidates[0], nil
	}

	log.Info("agent: graded",
		zap.String("best_id", outcome.BestCandidateID),
		zap.Float64("confidence", outcome.Confidence),
	)
	if outcome.Reasoning != "" {
		log.Debug("agent: reasoning", zap.String("reasoning", outcome.Reasoning))
	}

	if outcome.NoMatch() {
		log.Info("agent: grader says no relevant document")
		metrics.SelectionOutcomesTotal.WithLabelValues(string(mode), "no_match").Inc()
		return nil, nil
	}

	floor := s.settings.Load().AgentConfidenceThreshold
	if outcome.Confidence < floor {
		log.Info("agent: confidence below floor",
			zap.Float64("confidence", outcome.Confidence),
			zap.Float64("floor", floor),
		)
		metrics.SelectionOutcomesTotal.WithLabelValues(string(mode), "no_match").Inc()
		return nil, nil
	}

	for i := range candidates {
		if candidates[i].ID == outcome.BestCandidateID {
			metrics.SelectionOutcomesTotal.WithLabelValues(string(mode), "answered").Inc()
			return &candidates[i], nil
		}
	}

	// The grader named an id outside the pool. Treat it like a grading
	// failure and return the top vector hit.
	log.Warn("agent: graded id not in candidate pool, using top result",
		zap.String("best_id", outcome.BestCandidateID))
	metrics.SelectionOutcomesTotal.WithLabelValues(string(mode), "fallback").Inc()
	return &candidates[0], nil
}

// filterByCategories keeps candidates whose category is whitelisted.
// nil and the "all" sentinel disable filtering.
func filterByCategories(candidates []domain.Candidate, allowed []string) []domain.Candidate {
	if len(allowed) == 0 {
		return candidates
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		if a == domain.AllCategories {
			return candidates
		}
		set[a] = struct{}{}
	}

	kept := candidates[:0:0]
	for _, c := range candidates {
		if _, ok := set[c.Category]; ok {
			kept = append(kept, c)
		}
	}
	return kept
}
