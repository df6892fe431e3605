package domain

// NoRelevantCandidateID is the sentinel the grader returns when no candidate
// answers the question.
const NoRelevantCandidateID = "0"

// GradingOutcome is the structured result of one LLM grading call.
type GradingOutcome struct {
	// BestCandidateID is the id of the selected candidate, or "0" for none.
	BestCandidateID string `json:"best_id"`
	// Confidence is the grader's certainty in [0.0, 1.0].
	Confidence float64 `json:"confidence"`
	// Reasoning is diagnostic only and never shown to end users.
	Reasoning string `json:"reasoning"`
}

// NoMatch reports whether the grader explicitly found nothing relevant.
func (g GradingOutcome) NoMatch() bool {
	return g.BestCandidateID == NoRelevantCandidateID
}
