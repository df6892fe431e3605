package http

import "github.com/wardesk/faqdex/internal/domain"

type searchRequest struct {
	Query    string   `json:"query"`
	Limit    int      `json:"limit,omitempty"`
	Category string   `json:"category,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
}

type askRequest struct {
	Query             string   `json:"query"`
	Mode              string   `json:"mode,omitempty"`
	AllowedCategories []string `json:"allowed_categories,omitempty"`
}

type faqRequest struct {
	ID        string `json:"id,omitempty"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Answer    string `json:"answer"`
	Keywords  string `json:"keywords,omitempty"`
	ImageRefs string `json:"image_refs,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

type faqResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Answer    string `json:"answer"`
	Keywords  string `json:"keywords,omitempty"`
	ImageRefs string `json:"image_refs,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

type candidateResponse struct {
	faqResponse
	Score      float64 `json:"score"`
	ScoreClass string  `json:"score_class,omitempty"`
	BadgeColor string  `json:"badge_color,omitempty"`
}

type searchResponse struct {
	Items []candidateResponse `json:"items"`
	Total int                 `json:"total"`
}

type askResponse struct {
	Found   bool               `json:"found"`
	Answer  *candidateResponse `json:"answer,omitempty"`
	Message string             `json:"message,omitempty"`
}

type categoryResponse struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	BadgeColor  string `json:"badge_color,omitempty"`
}

type settingsResponse struct {
	SearchMode               string  `json:"search_mode"`
	AgentConfidenceThreshold float64 `json:"agent_confidence_threshold"`
}

type settingsRequest struct {
	SearchMode               *string  `json:"search_mode,omitempty"`
	AgentConfidenceThreshold *float64 `json:"agent_confidence_threshold,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func faqToResponse(doc domain.Document) faqResponse {
	return faqResponse{
		ID:        doc.ID,
		Category:  doc.Category,
		Title:     doc.Title,
		Answer:    doc.AnswerBody,
		Keywords:  doc.Keywords,
		ImageRefs: doc.ImageRefs,
		SourceURL: doc.SourceURL,
	}
}

func candidateToResponse(c domain.Candidate) candidateResponse {
	return candidateResponse{
		faqResponse: faqToResponse(c.Document),
		Score:       c.Score,
		ScoreClass:  string(c.ScoreClass),
		BadgeColor:  c.CategoryBadge,
	}
}
