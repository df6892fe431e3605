package domain

// SelectionMode picks the answer-selection strategy.
type SelectionMode string

const (
	// ModeImmediate accepts the top vector hit above the fixed threshold.
	ModeImmediate SelectionMode = "immediate"
	// ModeAgent grades a candidate pool with the LLM before accepting.
	ModeAgent SelectionMode = "agent"
	// ModeAgentPro is agent mode on the stronger (slower) grading model.
	ModeAgentPro SelectionMode = "agent_pro"
)

// Valid reports whether m is a known selection mode.
func (m SelectionMode) Valid() bool {
	switch m {
	case ModeImmediate, ModeAgent, ModeAgentPro:
		return true
	}
	return false
}

// Thresholds are the calibrated relevance and grading limits, fixed at
// startup. The agent confidence floor can additionally be overridden at
// runtime through the settings store.
type Thresholds struct {
	// MinRelevance is the fixed floor for immediate mode (strict: score must exceed it).
	MinRelevance float64
	// HighCutoff and MediumCutoff bucket scores into classes.
	HighCutoff   float64
	MediumCutoff float64
	// BotResultCount is the candidate limit for immediate mode.
	BotResultCount int
	// AgentPoolSize and AgentMinScore shape the looser agent-mode retrieval.
	AgentPoolSize int
	AgentMinScore float64
	// ConfidenceFloor rejects graded matches the LLM is unsure about.
	ConfidenceFloor float64
}

// DefaultThresholds returns the calibrated defaults for a cosine-distance backend.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinRelevance:    41,
		HighCutoff:      80,
		MediumCutoff:    50,
		BotResultCount:  5,
		AgentPoolSize:   20,
		AgentMinScore:   20,
		ConfidenceFloor: 0.3,
	}
}
