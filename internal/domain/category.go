package domain

import (
	"sort"
	"sync"
)

// AllCategories is the filter sentinel meaning "no category restriction".
const AllCategories = "all"

// DefaultBadgeColor is used for categories missing from the registry.
const DefaultBadgeColor = "#808080"

// Category describes a knowledge-base section: a short code plus the
// human-readable description that enriches the embedding text.
type Category struct {
	Code        string
	Description string
	BadgeColor  string
}

// CategoryRegistry maps category codes to descriptions and badge colors.
// Safe for concurrent use.
type CategoryRegistry struct {
	mu   sync.RWMutex
	byID map[string]Category
}

// NewCategoryRegistry creates a registry seeded with the given categories.
func NewCategoryRegistry(seed []Category) *CategoryRegistry {
	r := &CategoryRegistry{byID: make(map[string]Category, len(seed))}
	for _, c := range seed {
		r.byID[c.Code] = c
	}
	return r
}

// DefaultCategories returns the seed set shipped with the service.
func DefaultCategories() []Category {
	return []Category{
		{Code: "ED", Description: "IGD, Emergency, Triage, Ambulans", BadgeColor: "#FF4B4B"},
		{Code: "OPD", Description: "Rawat Jalan, Poli, Dokter Spesialis", BadgeColor: "#2ECC71"},
		{Code: "IPD", Description: "Rawat Inap, Bangsal, Bed, Visite", BadgeColor: "#3498DB"},
		{Code: "Umum", Description: "General Info, IT Support", BadgeColor: "#808080"},
	}
}

// Set adds or replaces a category.
func (r *CategoryRegistry) Set(c Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.Code] = c
}

// Description returns the category description, or "" when unknown.
func (r *CategoryRegistry) Description(code string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[code].Description
}

// Badge returns the category badge color, falling back to DefaultBadgeColor.
func (r *CategoryRegistry) Badge(code string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byID[code]; ok && c.BadgeColor != "" {
		return c.BadgeColor
	}
	return DefaultBadgeColor
}

// Codes returns all registered category codes, sorted.
func (r *CategoryRegistry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.byID))
	for code := range r.byID {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
