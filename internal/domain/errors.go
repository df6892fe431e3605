package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrStoreBusy signals that the vector store stayed contended after the
	// busy-retry budget was exhausted. Transient; callers may retry later.
	ErrStoreBusy = errors.New("store busy, try again")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmptyEmbedding signals a zero-length vector where one is required.
	// The write path treats this as hard failure; search treats it as "no results".
	ErrEmptyEmbedding = errors.New("empty embedding")
	// ErrLLMProviderError signals an LLM provider or structured-output failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrInvalidInput signals a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
