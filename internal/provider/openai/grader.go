package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/metrics"
)

// Grader asks a chat model for structured JSON output. The response format
// is a JSON schema derived from the output type, so the model cannot return
// free-form text.
type Grader struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// GraderConfig holds the chat completion settings for one grading model.
type GraderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

var _ domain.ChatGrader = (*Grader)(nil)

// NewGrader creates an OpenAI-compatible structured-output grader.
func NewGrader(cfg *GraderConfig) *Grader {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Grader{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// GenerateStructured implements domain.ChatGrader. The schema is generated
// from out's type and the model reply is unmarshalled into out.
func (g *Grader) GenerateStructured(ctx context.Context, prompt, systemPrompt string, out any) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	schema, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return fmt.Errorf("generate response schema: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "grading_result",
				Schema: schema,
				Strict: true,
			},
		},
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GradingRequestsTotal.WithLabelValues(g.model, "error").Inc()
		parsed := parseGradingError(err)
		g.logger.Debug("grading request failed", zap.String("model", g.model), zap.Error(parsed))
		return parsed
	}

	if len(resp.Choices) == 0 {
		metrics.GradingRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return fmt.Errorf("empty chat completion response: %w", domain.ErrLLMProviderError)
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		metrics.GradingRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return fmt.Errorf("parse structured response: %v: %w", err, domain.ErrLLMProviderError)
	}

	metrics.GradingRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GradingRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.GradingTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.GradingTokensTotal.WithLabelValues(g.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	g.logger.Debug("grading complete",
		zap.String("model", g.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)
	return nil
}

// parseGradingError wraps chat API failures with domain.ErrLLMProviderError.
func parseGradingError(err error) error {
	wrap := domain.ErrLLMProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w", wrap)
}
