package domain

import "testing"

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  ScoreClass
	}{
		{"well above high cutoff", 95, ScoreHigh},
		{"just above high cutoff", 80.1, ScoreHigh},
		{"exactly high cutoff is medium", 80, ScoreMedium},
		{"between cutoffs", 65, ScoreMedium},
		{"exactly medium cutoff is low", 50, ScoreLow},
		{"below medium cutoff", 42, ScoreLow},
		{"zero", 0, ScoreLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyScore(tt.score, 80, 50)
			if got != tt.want {
				t.Errorf("ClassifyScore(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestSelectionModeValid(t *testing.T) {
	valid := []SelectionMode{ModeImmediate, ModeAgent, ModeAgentPro}
	for _, m := range valid {
		if !m.Valid() {
			t.Errorf("mode %q should be valid", m)
		}
	}

	invalid := []SelectionMode{"", "turbo", "AGENT"}
	for _, m := range invalid {
		if m.Valid() {
			t.Errorf("mode %q should be invalid", m)
		}
	}
}

func TestGradingOutcomeNoMatch(t *testing.T) {
	if !(GradingOutcome{BestCandidateID: NoRelevantCandidateID}).NoMatch() {
		t.Error("best id \"0\" should report no match")
	}
	if (GradingOutcome{BestCandidateID: "7", Confidence: 0.9}).NoMatch() {
		t.Error("a real id should not report no match")
	}
}

func TestCategoryRegistry(t *testing.T) {
	reg := NewCategoryRegistry(DefaultCategories())

	if got := reg.Badge("ED"); got == DefaultBadgeColor {
		t.Errorf("ED should have a dedicated badge color, got default %q", got)
	}
	if got := reg.Badge("unknown"); got != DefaultBadgeColor {
		t.Errorf("unknown category badge = %q, want default %q", got, DefaultBadgeColor)
	}
	if desc := reg.Description("OPD"); desc == "" {
		t.Error("OPD should have a description")
	}

	reg.Set(Category{Code: "LAB", Description: "Laboratorium", BadgeColor: "#123456"})
	if got := reg.Badge("LAB"); got != "#123456" {
		t.Errorf("after Set, badge = %q, want #123456", got)
	}

	codes := reg.Codes()
	found := false
	for _, c := range codes {
		if c == "LAB" {
			found = true
		}
	}
	if !found {
		t.Errorf("Codes() = %v, missing LAB", codes)
	}
}
