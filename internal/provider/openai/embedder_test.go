package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/domain"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *Embedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewEmbedder(&EmbedderConfig{
		APIKey:              "test-key",
		BaseURL:             srv.URL,
		Model:               "text-embedding-3-small",
		Dimensions:          2,
		DocumentInstruction: "Represent the document for retrieval:",
		QueryInstruction:    "Represent the question for retrieval:",
		Logger:              zap.NewNop(),
	})
}

func TestEmbedAppliesIntentInstruction(t *testing.T) {
	var gotInput string
	var gotDimensions int

	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s, want /embeddings", r.URL.Path)
		}
		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Input) != 1 {
			t.Fatalf("input len = %d, want 1", len(req.Input))
		}
		gotInput = req.Input[0]
		gotDimensions = req.Dimensions

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [{"object": "embedding", "embedding": [0.25, -0.5], "index": 0}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	})

	vector, err := e.Embed(context.Background(), "cara reset password", domain.ForQuery)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vector) != 2 || vector[0] != 0.25 || vector[1] != -0.5 {
		t.Errorf("vector = %v, want [0.25 -0.5]", vector)
	}
	if want := "Represent the question for retrieval:\ncara reset password"; gotInput != want {
		t.Errorf("input = %q, want %q", gotInput, want)
	}
	if gotDimensions != 2 {
		t.Errorf("dimensions = %d, want 2", gotDimensions)
	}
}

func TestEmbedUsesDocumentInstructionForIndexing(t *testing.T) {
	var gotInput string
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotInput = req.Input[0]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [{"object": "embedding", "embedding": [1], "index": 0}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 1, "total_tokens": 1}
		}`))
	})

	if _, err := e.Embed(context.Background(), "isi dokumen", domain.ForIndexing); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !strings.HasPrefix(gotInput, "Represent the document for retrieval:\n") {
		t.Errorf("input = %q, want document instruction prefix", gotInput)
	}
}

func TestEmbedWrapsAPIErrors(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`))
	})

	_, err := e.Embed(context.Background(), "q", domain.ForQuery)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("error = %v, want ErrEmbeddingProviderError", err)
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error %q should carry the API message", err)
	}
}

func TestEmbedRejectsEmptyResponse(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": [], "model": "text-embedding-3-small", "usage": {}}`))
	})

	_, err := e.Embed(context.Background(), "q", domain.ForQuery)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("error = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestInstructOmittedWhenUnset(t *testing.T) {
	e := &Embedder{}
	if got := e.instruct("plain text", domain.ForQuery); got != "plain text" {
		t.Errorf("instruct = %q, want text unchanged", got)
	}
}
