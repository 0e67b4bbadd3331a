package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/config"
	"github.com/kailas-cloud/ragquery/internal/logger"
	"github.com/kailas-cloud/ragquery/internal/render"
	"github.com/kailas-cloud/ragquery/internal/retry"
	"github.com/kailas-cloud/ragquery/internal/transport/astra"
	openaitr "github.com/kailas-cloud/ragquery/internal/transport/openai"
	"github.com/kailas-cloud/ragquery/internal/usecase/ask"
)

// runAsk wires the providers from cfg and executes one question/answer
// round: prompt, embed, retrieve, answer, render.
func runAsk(ctx context.Context, cfg config.Config, log *zap.Logger, in io.Reader, out io.Writer) error {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Settings.RequestTimeoutSec) * time.Second,
	}
	policy := retry.Policy{
		Attempts:  cfg.Settings.RetryAttempts,
		BaseDelay: time.Duration(cfg.Settings.RetryBaseDelayMS) * time.Millisecond,
	}

	openaiCfg := &openaitr.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		HTTPClient: httpClient,
		Retry:      policy,
	}
	embedder := openaitr.NewEmbedder(openaiCfg, cfg.Settings.EmbeddingModel, cfg.Settings.EmbeddingDimensions)
	completer := openaitr.NewCompleter(openaiCfg, cfg.Settings.ChatModel, cfg.Settings.Temperature)

	collection := astra.NewClient(&astra.Config{
		Token:      cfg.Astra.Token,
		Endpoint:   cfg.Astra.Endpoint,
		Namespace:  cfg.Astra.Namespace,
		Collection: cfg.Astra.Collection,
		HTTPClient: httpClient,
		Retry:      policy,
	})

	fmt.Fprintf(out, "Collection: %s\n\n", collection.FullName())

	question, err := readQuestion(in, out)
	if err != nil {
		return err
	}

	svc := ask.New(embedder, collection, completer, cfg.Settings.TopK)

	ctx = logger.ContextWithLogger(ctx, log)
	result, err := svc.Ask(ctx, question)
	if err != nil {
		return err
	}

	render.Report(out, result.Answer, result.Documents, cfg.Settings.WrapWidth)
	return nil
}

// readQuestion prompts the operator and reads one line of free text.
// EOF before a newline still yields whatever was typed.
func readQuestion(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "What would you like to know? ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read question: %w", err)
	}
	return strings.TrimSpace(line), nil
}
