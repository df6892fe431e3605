package selector

import (
	"context"

	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/settings"
)

// Searcher retrieves scored candidates for a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, category string, minScore float64) ([]domain.Candidate, error)
}

// SettingsSource provides the current runtime settings.
type SettingsSource interface {
	Load() settings.Settings
}
