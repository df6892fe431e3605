package selector

import (
	"fmt"
	"strings"

	"github.com/wardesk/faqdex/internal/domain"
)

// Prompts are in English for token efficiency; users write in Bahasa
// Indonesia and the grader matches intent, not wording.

const graderSystemPrompt = `You are a document relevance grader for a hospital EMR FAQ system.
Your task is to select the SINGLE BEST document that answers the user's question.

CONTEXT:
- This is a FAQ system for hospital staff using Electronic Medical Records (EMR).
- Users are nurses, doctors, or admin staff asking about hospital procedures, EMR workflows, and IT issues.
- Each document has a Category (e.g. ED=Emergency, OPD=Outpatient, IPD=Inpatient), Title, Content, and optional "User Variations" listing alternative ways users ask about this topic.

RULES:
1. Read the FULL content of each candidate — the answer may be in the details, not just the title.
2. The "User Variations" field shows common user phrasings for that FAQ. Use it to match informal/slang queries.
3. If NO document is relevant, set best_id to "0". Do NOT force-pick an irrelevant document.
4. A document about a DIFFERENT procedure/category is NOT relevant even if it shares some words.
5. Think step-by-step in your reasoning before making your final decision.
6. If a document only PARTIALLY answers the question, it IS still relevant — select it.
7. The user writes in Bahasa Indonesia (often informal/slang/typos). Match intent, not exact words.
8. A document that answers a SIMILAR but DIFFERENT question is NOT relevant.

CONFIDENCE SCORING:
- 0.0-0.3: Low (weak match, partial relevance)
- 0.4-0.6: Medium (good match, answers most of the question)
- 0.7-1.0: High (excellent match, directly answers the question)`

const answerPreviewLimit = 300

// buildGraderPrompt enumerates the candidates for the grading model.
func buildGraderPrompt(query string, candidates []domain.Candidate) string {
	var lines []string
	for _, c := range candidates {
		preview := c.AnswerBody
		if len(preview) > answerPreviewLimit {
			preview = preview[:answerPreviewLimit] + "..."
		}

		var b strings.Builder
		fmt.Fprintf(&b, "[ID: %s]\n", c.ID)
		fmt.Fprintf(&b, "  Category: %s\n", c.Category)
		fmt.Fprintf(&b, "  Title: %s\n", c.Title)
		fmt.Fprintf(&b, "  Vector Score: %.1f%%\n", c.Score)
		if c.Keywords != "" {
			fmt.Fprintf(&b, "  User Variations: %s\n", c.Keywords)
		}
		fmt.Fprintf(&b, "  Content: %s\n", preview)
		lines = append(lines, b.String())
	}

	return fmt.Sprintf(`USER QUESTION:
%q

CANDIDATE DOCUMENTS (%d):
%s

Analyze each candidate, explain your reasoning, then select the BEST document ID or "0" if none are relevant.`,
		query, len(candidates), strings.Join(lines, "\n"))
}
