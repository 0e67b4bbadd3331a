// Package ask runs the retrieval-augmented answer pipeline: embed the
// question, retrieve the nearest documents, generate the answer.
package ask

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	"github.com/kailas-cloud/ragquery/internal/logger"
)

// Service sequences the three pipeline stages.
type Service struct {
	embed    Embedder
	retrieve Retriever
	complete Completer
	topK     int
}

// New creates an ask service retrieving topK documents per question.
func New(embed Embedder, retrieve Retriever, complete Completer, topK int) *Service {
	return &Service{embed: embed, retrieve: retrieve, complete: complete, topK: topK}
}

// Result carries the generated answer and the documents used as context.
type Result struct {
	Answer    string
	Documents []domain.Document
}

// Ask answers one question. Each stage either passes its output to the
// next or fails the whole run; there is no partial result.
func (s *Service) Ask(ctx context.Context, question string) (Result, error) {
	log := logger.FromContext(ctx)

	embRes, err := s.embed.Embed(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("embed question: %w", err)
	}
	log.Debug("question embedded", zap.Int("dimensions", len(embRes.Embedding)))

	docs, err := s.retrieve.Find(ctx, embRes.Embedding, s.topK)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve documents: %w", err)
	}
	log.Debug("context retrieved", zap.Int("documents", len(docs)))

	chatRes, err := s.complete.Complete(ctx, systemPrompt, buildUserPrompt(question, docs))
	if err != nil {
		return Result{}, fmt.Errorf("generate answer: %w", err)
	}
	log.Debug("answer generated",
		zap.Int("prompt_tokens", chatRes.PromptTokens),
		zap.Int("completion_tokens", chatRes.CompletionTokens),
	)

	return Result{Answer: chatRes.Content, Documents: docs}, nil
}
