// Package domain holds the shared contracts between the transport and
// use case layers: text vectorization, nearest-document retrieval, and
// chat completion.
package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// DocumentFinder retrieves the documents nearest to a query vector,
// in the store's similarity-ranked order.
type DocumentFinder interface {
	Find(ctx context.Context, vector []float32, limit int) ([]Document, error)
}

// ChatCompleter produces a free-text completion for a two-message
// (system + user) chat exchange.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (ChatResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ChatResult carries the completion text and token usage.
type ChatResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Document is a text payload read from the vector store. The store's
// schema is external; the only field this program relies on is Content.
type Document struct {
	ID      string
	Content string
}
