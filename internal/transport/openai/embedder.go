// Package openai implements the embedding and chat completion contracts
// on the OpenAI API via the sashabaranov client.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	"github.com/kailas-cloud/ragquery/internal/logger"
	"github.com/kailas-cloud/ragquery/internal/retry"
)

var _ domain.Embedder = (*Embedder)(nil)

// Embedder is an embedding provider using the OpenAI API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	retry      retry.Policy
}

// Config holds the OpenAI provider settings shared by the embedder and
// the completer.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Policy
}

// newClient builds the underlying API client from shared settings.
func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewEmbedder creates an OpenAI embedding provider.
func NewEmbedder(cfg *Config, model string, dimensions int) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		retry:      cfg.Retry,
	}
}

// Embed implements domain.Embedder. Returns the first (only) embedding
// in the response along with token usage.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	var resp openai.EmbeddingResponse
	err := e.retry.Do(ctx, "embed", func(ctx context.Context) error {
		var callErr error
		resp, callErr = e.client.CreateEmbeddings(ctx, req)
		if callErr != nil {
			return parseAPIError(callErr, domain.ErrEmbeddingProvider)
		}
		return nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	if len(resp.Data) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProvider)
	}

	logger.FromContext(ctx).Debug("embedding created",
		zap.String("model", string(e.model)),
		zap.Int("dimensions", len(resp.Data[0].Embedding)),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// parseAPIError extracts a human-readable error from the API response,
// wraps it with the given sentinel, and marks non-retryable statuses as
// permanent. Rate limits and server errors stay retryable.
func parseAPIError(err error, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrapped := fmt.Errorf("API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
		if transientStatus(reqErr.HTTPStatusCode) {
			return wrapped
		}
		return retry.Permanent(wrapped)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		wrapped := fmt.Errorf("API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
		if transientStatus(apiErr.HTTPStatusCode) {
			return wrapped
		}
		return retry.Permanent(wrapped)
	}

	// Transport-level failure, worth retrying.
	return fmt.Errorf("request failed: %v: %w", err, wrap)
}

func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
