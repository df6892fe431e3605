package domain

// Document is a knowledge-base entry. Display fields are stored verbatim in
// the vector store metadata; only the embedding text is derived from them.
type Document struct {
	ID         string
	Category   string
	Title      string
	AnswerBody string
	Keywords   string
	ImageRefs  string // semicolon-joined references, owned by the asset manager
	SourceURL  string
}

// StoredDoc is a Document together with the canonical embedding text it was
// indexed under.
type StoredDoc struct {
	Document
	EmbedText string
}

// ScoredMatch is a single nearest-neighbor hit from a vector store.
// Distance is non-negative; smaller means more similar. Every backend adapter
// reports a cosine-style distance in [0, 2] — backends with a different
// native metric rescale inside the adapter, never in the engine.
type ScoredMatch struct {
	StoredDoc
	Distance float64
}
