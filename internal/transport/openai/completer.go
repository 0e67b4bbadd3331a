package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	"github.com/kailas-cloud/ragquery/internal/logger"
	"github.com/kailas-cloud/ragquery/internal/retry"
)

var _ domain.ChatCompleter = (*Completer)(nil)

// Completer is a chat completion provider using the OpenAI API.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	retry       retry.Policy
}

// NewCompleter creates an OpenAI chat completion provider.
func NewCompleter(cfg *Config, model string, temperature float32) *Completer {
	return &Completer{
		client:      newClient(cfg),
		model:       model,
		temperature: temperature,
		retry:       cfg.Retry,
	}
}

// Complete implements domain.ChatCompleter. Sends a two-message exchange
// and returns the first choice's content verbatim.
func (c *Completer) Complete(ctx context.Context, system, user string) (domain.ChatResult, error) {
	temperature := c.temperature
	if temperature == 0 {
		// The client omits a zero temperature from the request body, which
		// would fall back to the server default of 1. The smallest nonzero
		// float is the closest representable stand-in.
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	}

	start := time.Now()

	var resp openai.ChatCompletionResponse
	err := c.retry.Do(ctx, "complete", func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, req)
		if callErr != nil {
			return parseAPIError(callErr, domain.ErrChatProvider)
		}
		return nil
	})
	if err != nil {
		return domain.ChatResult{}, err
	}

	if len(resp.Choices) == 0 {
		return domain.ChatResult{}, fmt.Errorf("empty completion response: %w", domain.ErrChatProvider)
	}

	logger.FromContext(ctx).Debug("completion created",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return domain.ChatResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}
