package ask

import (
	"context"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

// Embedder vectorizes the question into a query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever finds the documents nearest to a query vector.
type Retriever interface {
	Find(ctx context.Context, vector []float32, limit int) ([]domain.Document, error)
}

// Completer produces the chat completion used for the final answer.
type Completer interface {
	Complete(ctx context.Context, system, user string) (domain.ChatResult, error)
}
