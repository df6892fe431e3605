package domain

// ScoreClass buckets a relevance score for display purposes.
type ScoreClass string

const (
	ScoreHigh   ScoreClass = "high"
	ScoreMedium ScoreClass = "medium"
	ScoreLow    ScoreClass = "low"
)

// Candidate is a scored, ephemeral search hit. Never persisted.
type Candidate struct {
	Document
	Score         float64 // 0.0–100.0
	ScoreClass    ScoreClass
	CategoryBadge string // hex badge color derived from the category registry
}

// ClassifyScore derives a score class from the configured cutoffs.
// Both comparisons are strict, matching the relevance filter.
func ClassifyScore(score, highCutoff, mediumCutoff float64) ScoreClass {
	switch {
	case score > highCutoff:
		return ScoreHigh
	case score > mediumCutoff:
		return ScoreMedium
	default:
		return ScoreLow
	}
}
