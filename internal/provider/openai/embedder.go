// Package openai adapts OpenAI-compatible APIs (embeddings and chat
// completions) to the domain provider ports.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/metrics"
)

// Embedder is an embedding provider using an OpenAI-compatible API.
// The instruction prefix differs by intent: documents and queries get
// asymmetric prompts so the model embeds them into comparable spaces.
type Embedder struct {
	client              *openai.Client
	model               openai.EmbeddingModel
	dimensions          int
	documentInstruction string
	queryInstruction    string
	timeout             time.Duration
	logger              *zap.Logger
}

// EmbedderConfig holds the embedding provider settings.
type EmbedderConfig struct {
	APIKey              string
	BaseURL             string
	Model               string
	Dimensions          int
	DocumentInstruction string
	QueryInstruction    string
	Timeout             time.Duration
	Logger              *zap.Logger
}

var _ domain.Embedder = (*Embedder)(nil)

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *EmbedderConfig) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Embedder{
		client:              openai.NewClientWithConfig(clientCfg),
		model:               openai.EmbeddingModel(cfg.Model),
		dimensions:          cfg.Dimensions,
		documentInstruction: cfg.DocumentInstruction,
		queryInstruction:    cfg.QueryInstruction,
		timeout:             cfg.Timeout,
		logger:              cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string, intent domain.Intent) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req := openai.EmbeddingRequest{
		Input:          []string{e.instruct(text, intent)},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), string(intent), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(string(e.model), "api_error").Inc()
		parsed := parseEmbeddingError(err)
		e.logger.Debug("embedding request failed",
			zap.String("model", string(e.model)),
			zap.String("intent", string(intent)),
			zap.Error(parsed),
		)
		return nil, parsed
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), string(intent), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(string(e.model), "empty_response").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), string(intent), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(string(e.model), string(intent)).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(string(e.model), "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(string(e.model), "total").Add(float64(resp.Usage.TotalTokens))
	}

	e.logger.Debug("embedding created",
		zap.String("model", string(e.model)),
		zap.String("intent", string(intent)),
		zap.Int("dimensions", len(resp.Data[0].Embedding)),
		zap.Duration("duration", duration),
	)
	return resp.Data[0].Embedding, nil
}

// instruct prefixes the text with the intent-specific instruction, if any.
func (e *Embedder) instruct(text string, intent domain.Intent) string {
	var instruction string
	switch intent {
	case domain.ForIndexing:
		instruction = e.documentInstruction
	case domain.ForQuery:
		instruction = e.queryInstruction
	}
	if instruction == "" {
		return text
	}
	return instruction + "\n" + text
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseEmbeddingError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError for correct 502 mapping.
func parseEmbeddingError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
